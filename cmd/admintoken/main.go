// Command admintoken mints a signed admin JWT for operators.
//
//	go run ./cmd/admintoken -operator ops@example.com
package main

import (
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/camp-booking-backend/internal/auth"
	"github.com/nekogravitycat/camp-booking-backend/internal/config"
)

func main() {
	operator := flag.String("operator", "", "name or email of the operator the token is issued to")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to JWT_ACCESS_TOKEN_TTL")
	flag.Parse()

	if *operator == "" {
		logrus.Fatal("-operator is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if *ttl <= 0 {
		*ttl = cfg.JWTAccessTokenTTL
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, *ttl).GenerateAccessToken(*operator, auth.RoleAdmin)
	if err != nil {
		logrus.Fatalf("failed to sign token: %v", err)
	}

	logrus.WithFields(logrus.Fields{"operator": *operator, "ttl": ttl.String()}).Info("admin token issued")
	fmt.Println(token)
}
