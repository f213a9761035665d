package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

type SMTPMailer struct {
	Host   string
	Port   int
	From   string
	User   string
	Pass   string
	UseTLS bool
}

func NewSMTPMailer(host string, port int, from, user, pass string, useTLS bool) *SMTPMailer {
	return &SMTPMailer{
		Host:   strings.TrimSpace(host),
		Port:   port,
		From:   strings.TrimSpace(from),
		User:   strings.TrimSpace(user),
		Pass:   strings.TrimSpace(pass),
		UseTLS: useTLS,
	}
}

func (s *SMTPMailer) SendBookingConfirmation(toEmail, roomNumber string, checkIn, checkOut time.Time, totalCents int64) error {
	subject := "Booking Confirmation"
	text := fmt.Sprintf("Your booking is confirmed.\n\nRoom: %s\nCheck-in: %s\nCheck-out: %s\nTotal Paid: %s",
		roomNumber, checkIn.Format("Mon Jan 2 2006"), checkOut.Format("Mon Jan 2 2006"), dollars(totalCents))
	html := fmt.Sprintf(`
		<h1>Booking Confirmed!</h1>
		<p>Room: %s</p>
		<p>Check-in: %s</p>
		<p>Check-out: %s</p>
		<p>Total Paid: %s</p>
	`, roomNumber, checkIn.Format("Mon Jan 2 2006"), checkOut.Format("Mon Jan 2 2006"), dollars(totalCents))

	return s.sendEmail(toEmail, subject, text, html)
}

func (s *SMTPMailer) SendBookingExpired(toEmail string, bookingID int64) error {
	subject := "Hoteler booking"
	text := fmt.Sprintf("Your booking %d has expired and is now cancelled.", bookingID)
	html := fmt.Sprintf(`
		<h2>Booking Expired</h2>
		<p>Your booking %d was not paid within the reservation hold window and has been cancelled.</p>
		<p>The room is available again if you would like to rebook.</p>
	`, bookingID)

	return s.sendEmail(toEmail, subject, text, html)
}

func (s *SMTPMailer) sendEmail(toEmail, subject, text, html string) error {
	var buf bytes.Buffer
	boundary := "hoteler-alt-boundary"

	fmt.Fprintf(&buf, "From: %s\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, text)
	fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, html)
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	// Mailpit or development SMTP (no auth, no TLS)
	if !s.UseTLS && s.User == "" {
		return smtp.SendMail(addr, nil, s.From, []string{toEmail}, buf.Bytes())
	}

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	return smtp.SendMail(addr, auth, s.From, []string{toEmail}, buf.Bytes())
}
