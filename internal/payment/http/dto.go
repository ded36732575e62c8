package http

type CheckoutBody struct {
	BookingID string `json:"bookingId" binding:"required,uuid"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
