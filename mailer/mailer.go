// Package mailer sends transactional mail (OTP codes, password resets).
// The transport is built once in main and injected where needed.
package mailer

import (
	"fmt"
	"strconv"

	"github.com/LinkMeOrg/LinkMe-api/config"
	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"
)

type Mailer interface {
	SendOTP(to, otp string) error
	SendPasswordReset(to, resetURL string) error
}

// New returns an SMTP mailer, or a no-op one when SMTP is not configured
// (local development): messages are logged instead of sent.
func New(cfg *config.Config, log *logrus.Logger) Mailer {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP not configured, mail will be logged instead of sent")
		return &logMailer{log: log}
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *smtpMailer) SendOTP(to, otp string) error {
	return m.send(to, "Your OTP for email verification",
		fmt.Sprintf("Your OTP code is: %s", otp))
}

func (m *smtpMailer) SendPasswordReset(to, resetURL string) error {
	return m.send(to, "Password Reset",
		fmt.Sprintf("Reset your password here: %s", resetURL))
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

type logMailer struct {
	log *logrus.Logger
}

func (m *logMailer) SendOTP(to, otp string) error {
	m.log.WithFields(logrus.Fields{"to": to, "otp": otp}).Info("OTP mail (not sent)")
	return nil
}

func (m *logMailer) SendPasswordReset(to, resetURL string) error {
	m.log.WithFields(logrus.Fields{"to": to, "url": resetURL}).Info("Password reset mail (not sent)")
	return nil
}
