package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"
)

// Sender delivers a plain-text email. Controllers depend on this interface
// so tests can swap in a fake.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends over authenticated SMTP with STARTTLS (port 587).
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
}

func NewFromEnv() *SMTPMailer {
	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	return &SMTPMailer{
		Host: get("SMTP_HOST", "smtp.gmail.com"),
		Port: get("SMTP_PORT", "587"),
		User: os.Getenv("EMAIL_USER"),
		Pass: os.Getenv("EMAIL_PASS"),
	}
}

const maxRetries = 3

// Send delivers the message, retrying transient failures with a short
// backoff. The last error is returned so callers never treat a failed
// delivery as success.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := []byte("Subject: " + subject + "\r\n\r\n" + body)
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	addr := m.Host + ":" + m.Port

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = smtp.SendMail(addr, auth, m.User, []string{to}, msg)
		if lastErr == nil {
			return nil
		}
		log.Printf("send mail to %s failed (attempt %d/%d): %v", to, attempt, maxRetries, lastErr)
		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	return fmt.Errorf("send mail: %w", lastErr)
}

// VerificationBody is the account-verification message.
func VerificationBody(code string) string {
	return fmt.Sprintf(`Dear User,

We received a request to verify your account for the Laboratory Equipment Borrowing System.

Your verification code is: %s

Please enter this code in the verification field to proceed.
For your security, do not share this code with anyone.

LEBS Support Team`, code)
}

// SlipBody is the borrow-slip reference sent to the borrower.
func SlipBody(transactionNumber, itemName string, qty int) string {
	return fmt.Sprintf(`Dear User,

Your borrow slip %s has been issued for %d x %s.
Present this reference when returning the equipment.

LEBS Support Team`, transactionNumber, qty, itemName)
}

// OTPBody is the login one-time-password message.
func OTPBody(code string) string {
	return fmt.Sprintf(`Dear User,

Your login one-time password is: %s

It expires in 10 minutes. If you did not request it, ignore this message.

LEBS Support Team`, code)
}
