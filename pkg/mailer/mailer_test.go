package mailer

import (
	"context"
	"net/smtp"
	"testing"

	"mentorship-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSelectsSender(t *testing.T) {
	assert.IsType(t, &LogSender{}, New(config.MailConfig{}, zap.NewNop()))

	s := New(config.MailConfig{Host: "smtp.test", Port: "587", User: "bot@test", Password: "x"}, zap.NewNop())
	require.IsType(t, &SMTPSender{}, s)
	assert.Equal(t, "bot@test", s.(*SMTPSender).from)
	assert.Equal(t, "smtp.test:587", s.(*SMTPSender).addr)
}

func TestSMTPSenderSend(t *testing.T) {
	var gotTo []string
	var gotMsg string
	s := &SMTPSender{
		addr: "smtp.test:587",
		from: "noreply@test",
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotTo = to
			gotMsg = string(msg)
			return nil
		},
	}

	require.NoError(t, s.Send(context.Background(), "user@test", "Hello", "Body"))
	assert.Equal(t, []string{"user@test"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Hello\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nBody\r\n")

	assert.Error(t, s.Send(context.Background(), "user@test\r\nBcc: x@test", "Hello", "Body"))
}
