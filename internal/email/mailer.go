// Package email sends the one-time admin login links over plain SMTP.
package email

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"strconv"
	"strings"
)

// ErrNotConfigured is returned when the SMTP environment variables are
// missing.  The login handler surfaces this as a configuration error
// rather than pretending the email was sent.
var ErrNotConfigured = errors.New("smtp not configured")

// SendLoginLink emails a one-time login link to an allow-listed admin.
// SMTP settings come from SMTP_HOST, SMTP_PORT (default 587),
// SMTP_USER, SMTP_PASS and SMTP_FROM.  The link embeds the token and
// points at the verify endpoint under baseURL.
func SendLoginLink(to, token, baseURL string) error {
	host := os.Getenv("SMTP_HOST")
	portStr := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	if host == "" || user == "" || pass == "" {
		return ErrNotConfigured
	}
	if portStr == "" {
		portStr = "587"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return ErrNotConfigured
	}

	baseURL = strings.TrimRight(baseURL, "/")
	loginURL := fmt.Sprintf("%s/v1/auth/verify?token=%s", baseURL, token)

	subject := "Login to Gift List Admin"
	body := fmt.Sprintf("Click the link below to log in to the gift list admin panel:\n\n%s\n\nThis link will expire in 15 minutes.\n\nIf you didn't request this login, please ignore this email.", loginURL)

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", host, port)
	auth := smtp.PlainAuth("", user, pass, host)
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}
