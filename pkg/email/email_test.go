package email

import (
	"context"
	"errors"
	"net/http"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsBackend(t *testing.T) {
	m, err := New(Settings{Backend: "console"})
	require.NoError(t, err)
	assert.IsType(t, &ConsoleMailer{}, m)

	_, err = New(Settings{Backend: "smtp"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(Settings{Backend: "sendgrid"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	m, err = New(Settings{Backend: "SendGrid", SendGridAPIKey: "key", From: "noreply@example.com"})
	require.NoError(t, err)
	assert.IsType(t, &SendGridMailer{}, m)

	_, err = New(Settings{Backend: "pigeon"})
	assert.Error(t, err)
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: 2525, Sender: "hr@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", Body: "Your OTP is: 123456"})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Nil(t, gotAuth)
	assert.Equal(t, "hr@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	raw := string(gotMsg)
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nYour OTP is: 123456"))
}

func TestSMTPMailerWrapsTransportError(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: 25, Username: "u", Password: "p", Sender: "hr@example.com"})
	boom := errors.New("connection refused")
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.Send(context.Background(), Message{To: "a@example.com"})
	assert.ErrorIs(t, err, boom)
}

func TestSendGridMailerReportsRejection(t *testing.T) {
	m := NewSendGridMailer("key", "noreply@example.com")

	var gotReq rest.Request
	m.api = func(req rest.Request) (*rest.Response, error) {
		gotReq = req
		return &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}, nil
	}

	err := m.Send(context.Background(), Message{To: "a@example.com", Subject: "S", Body: "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, rest.Method(http.MethodPost), gotReq.Method)
	assert.Contains(t, string(gotReq.Body), "a@example.com")

	m.api = func(req rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: http.StatusAccepted}, nil
	}
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@example.com"}))
}

func TestSMTPMailerLive(t *testing.T) {
	// 从环境变量读取测试配置
	recipient := os.Getenv("TEST_RECIPIENT_EMAIL")
	if recipient == "" {
		t.Skip("Skipping email sending test: TEST_RECIPIENT_EMAIL environment variable not set.")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	require.NoError(t, err, "SMTP_PORT must be numeric")

	m := NewSMTPMailer(SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		Sender:   os.Getenv("SMTP_SENDER_EMAIL"),
	})
	err = m.Send(context.Background(), Message{To: recipient, Subject: "Attendance mailer test", Body: "It works."})
	assert.NoError(t, err)
}
