package email

import (
	"context"
	"errors"
)

// Sender delivers insight alert emails.
type Sender interface {
	SendInsightAlert(ctx context.Context, toEmail, title, body string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendInsightAlert(_ context.Context, _ string, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
