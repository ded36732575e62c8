package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used for notifications.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a booking summary to the admin chat.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
}

func NewTelegramNotifier(bot Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// NewTelegramBot connects to the Bot API with token. Every Bot API call is
// bounded by SendTimeout.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: SendTimeout})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init failed: %w", err)
	}
	return bot, nil
}

// BookingConfirmed returns when the message is sent or ctx is done, whichever
// comes first. Send itself takes no context.
func (t *TelegramNotifier) BookingConfirmed(ctx context.Context, e Event) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatAdminMessage(e))
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram send failed: %w", ctx.Err())
	}
}

// FormatAdminMessage renders the plain-text admin summary of a confirmed booking.
func FormatAdminMessage(e Event) string {
	var b strings.Builder
	b.WriteString("New paid booking\n\n")
	fmt.Fprintf(&b, "Booking: %s\n", e.BookingID)
	fmt.Fprintf(&b, "Customer: %s\n", e.CustomerName)
	fmt.Fprintf(&b, "Email: %s\n", e.CustomerEmail)
	fmt.Fprintf(&b, "Phone: %s\n", e.CustomerPhone)
	fmt.Fprintf(&b, "Date: %s\n", e.BookingDate)
	fmt.Fprintf(&b, "Location: %s\n", e.Location)
	fmt.Fprintf(&b, "Tents: %d\n", e.Tents)
	fmt.Fprintf(&b, "Guests: %d adults, %d children\n", e.Adults, e.Children)
	fmt.Fprintf(&b, "Total: AED %.2f", e.Total)
	return b.String()
}
