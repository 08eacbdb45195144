package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Service delivers outbound mail. The reminder dispatcher is the only
// in-process consumer; push channels hang off the message broker instead.
type Service interface {
	SendReminder(ctx context.Context, to, medicationName, scheduledTime string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendReminder(ctx context.Context, to, medicationName, scheduledTime string) error {
	subject := fmt.Sprintf("Medication reminder: %s", medicationName)
	body := fmt.Sprintf("It's time to take %s (scheduled for %s).", medicationName, scheduledTime)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
