package mailer

import (
	"fmt"
	"time"

	"github.com/hoteler/hotel-bookings/pkg/config"
)

// Service sends guest-facing booking emails. Delivery is best-effort; a
// failed send must never roll back the state change that triggered it.
type Service interface {
	SendBookingConfirmation(toEmail, roomNumber string, checkIn, checkOut time.Time, totalCents int64) error
	SendBookingExpired(toEmail string, bookingID int64) error
}

// New picks the mailer implementation from config: dev mode logs emails,
// a MailerSend key selects the API client, otherwise plain SMTP.
func New(cfg config.EmailConfig) Service {
	if cfg.DevMode {
		return NewDevMailer()
	}
	if cfg.MailerSendKey != "" {
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
