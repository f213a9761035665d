package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendBookingConfirmation(toEmail, roomNumber string, checkIn, checkOut time.Time, totalCents int64) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Booking Confirmation"
	html := fmt.Sprintf(`
		<h1>Booking Confirmed!</h1>
		<p>Room: %s</p>
		<p>Check-in: %s</p>
		<p>Check-out: %s</p>
		<p>Total Paid: %s</p>
	`, roomNumber, checkIn.Format("Mon Jan 2 2006"), checkOut.Format("Mon Jan 2 2006"), dollars(totalCents))

	text := fmt.Sprintf("Your booking is confirmed. Room: %s, check-in %s, check-out %s, total paid %s.",
		roomNumber, checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"), dollars(totalCents))

	return m.sendEmail(toEmail, subject, text, html)
}

func (m *MailerSendClient) SendBookingExpired(toEmail string, bookingID int64) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Hoteler booking"
	html := fmt.Sprintf(`
		<h2>Booking Expired</h2>
		<p>Your booking %d was not paid within the reservation hold window and has been cancelled.</p>
	`, bookingID)
	text := fmt.Sprintf("Your booking %d has expired and is now cancelled.", bookingID)

	return m.sendEmail(toEmail, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
