package mailer

import (
	"time"

	"github.com/hoteler/hotel-bookings/pkg/logger"
)

// DevMailer prints emails to the logs instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingConfirmation(toEmail, roomNumber string, checkIn, checkOut time.Time, totalCents int64) error {
	logger.Info("[DEV MAIL] Booking confirmation",
		"to", toEmail,
		"room", roomNumber,
		"check_in", checkIn.Format("2006-01-02"),
		"check_out", checkOut.Format("2006-01-02"),
		"total", dollars(totalCents),
	)
	return nil
}

func (d *DevMailer) SendBookingExpired(toEmail string, bookingID int64) error {
	logger.Info("[DEV MAIL] Booking expired",
		"to", toEmail,
		"booking_id", bookingID,
	)
	return nil
}
