package auth

import "github.com/gin-gonic/gin"

const (
	operatorKey = "operator"
	roleKey     = "role"
)

// GetOperator returns the authenticated operator or empty string.
func GetOperator(c *gin.Context) string {
	return c.GetString(operatorKey)
}

// GetRole returns the role carried by the token or empty string.
func GetRole(c *gin.Context) string {
	return c.GetString(roleKey)
}
