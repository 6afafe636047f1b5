package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/tourvia/booking-service/logger"
	"github.com/tourvia/booking-service/models/pricing_models"
	"github.com/tourvia/booking-service/models/reservation_models"
)

const confirmationTemplate = `
<h2>Booking confirmed</h2>
<p>Hi {{.FirstName}},</p>
<p>Your booking for {{.Date}} is confirmed. We have received your
deposit of {{printf "%.2f" .Deposit}}; the remaining balance of
{{printf "%.2f" .Remaining}} (total {{printf "%.2f" .Total}}) is due
on site.</p>
<p>Your booking reference is <strong>{{.Reference}}</strong>.</p>
`

// Mailer sends booking confirmation emails over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	tpl    *template.Template
}

// NewMailerFromEnv builds a Mailer from SMTP_* environment variables.
// Returns an error when SMTP is not configured; the caller proceeds
// without confirmation emails.
func NewMailerFromEnv() (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port: %w", err)
	}
	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		return nil, fmt.Errorf("FROM_EMAIL not set")
	}

	tpl, err := template.New("confirmation").Parse(confirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation template: %w", err)
	}

	return &Mailer{
		dialer: gomail.NewDialer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD")),
		from:   from,
		tpl:    tpl,
	}, nil
}

// SendBookingConfirmation emails the money breakdown for a paid
// reservation. Amounts are rounded to 2 decimals here, at transmission
// time only.
func (m *Mailer) SendBookingConfirmation(r *reservation_models.Reservation) error {
	deposit := pricing_models.RoundCurrency(r.DepositAmount)
	total := pricing_models.RoundCurrency(r.TotalPrice)

	var body bytes.Buffer
	err := m.tpl.Execute(&body, map[string]interface{}{
		"FirstName": r.FirstName,
		"Date":      r.Date.Format("2006-01-02"),
		"Deposit":   deposit,
		"Total":     total,
		"Remaining": pricing_models.RoundCurrency(total - deposit),
		"Reference": r.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", r.Email)
	msg.SetHeader("Subject", "Your booking is confirmed")
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	logger.InfoLogger.Infof("Confirmation email sent to %s for reservation %s", r.Email, r.ID)
	return nil
}
