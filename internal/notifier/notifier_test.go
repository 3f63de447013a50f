package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMTPSender_Message(t *testing.T) {
	tests := []struct {
		name         string
		cfg          SMTPConfig
		expectedFrom string
	}{
		{
			name:         "explicit from",
			cfg:          SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "bot", From: "noreply@example.com"},
			expectedFrom: "noreply@example.com",
		},
		{
			name:         "from defaults to username",
			cfg:          SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "bot@example.com"},
			expectedFrom: "bot@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewSMTPSender(tt.cfg)
			m := sender.message("asha@example.com", "EMI Payment Reminder - Car", "Dear User")

			assert.Equal(t, []string{tt.expectedFrom}, m.GetHeader("From"))
			assert.Equal(t, []string{"asha@example.com"}, m.GetHeader("To"))
			assert.Equal(t, []string{"EMI Payment Reminder - Car"}, m.GetHeader("Subject"))
		})
	}
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.invalid", Port: 587})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, "asha@example.com", "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sender.Send(context.Background(), "asha@example.com", "EMI Payment Reminder - Car", "Dear User")
	assert.ErrorIs(t, err, ErrDeliveryDisabled)
	assert.Contains(t, buf.String(), "to=asha@example.com")
	assert.Contains(t, buf.String(), "EMI Payment Reminder - Car")
}
