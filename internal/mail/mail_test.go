package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"twii/internal/config"
)

type fakeSender struct {
	sent []*gomail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		SMTPUser:     "noreply@twii.dev",
		MailFromName: "Twii",
		FrontendURL:  "http://localhost:3000",
	}
}

func TestVerificationLink(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/verify-email?token=abc123", VerificationLink("http://localhost:3000", "abc123"))
	assert.Equal(t, "http://x/verify-email?token=a%2Bb", VerificationLink("http://x", "a+b"))
}

func TestRenderVerification_EscapesName(t *testing.T) {
	body, err := renderVerification("<b>Ana</b>", "http://x/verify-email?token=t")
	require.NoError(t, err)
	assert.NotContains(t, body, "<b>Ana</b>")
	assert.Contains(t, body, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.Contains(t, body, "token=t")
}

func TestSMTPMailer_SendVerificationEmail(t *testing.T) {
	fake := &fakeSender{}
	m := newSMTPMailer(fake, testConfig())

	require.NoError(t, m.SendVerificationEmail(context.Background(), "ana@x.com", "Ana", "tok"))
	require.Len(t, fake.sent, 1)

	var buf bytes.Buffer
	_, err := fake.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "ana@x.com")
	assert.Contains(t, raw, "noreply@twii.dev")
	assert.True(t, strings.Contains(raw, verificationSubject))
}

func TestSMTPMailer_SendFailure(t *testing.T) {
	m := newSMTPMailer(&fakeSender{err: errors.New("dial tcp: refused")}, testConfig())
	err := m.SendVerificationEmail(context.Background(), "ana@x.com", "Ana", "tok")
	assert.Error(t, err)
}

func TestSMTPMailer_InvalidRecipient(t *testing.T) {
	fake := &fakeSender{}
	m := newSMTPMailer(fake, testConfig())
	err := m.SendVerificationEmail(context.Background(), "not an address", "Ana", "tok")
	assert.Error(t, err)
	assert.Empty(t, fake.sent)
}

func TestNew_FallsBackToLogMailer(t *testing.T) {
	m, err := New(testConfig())
	require.NoError(t, err)
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.SendVerificationEmail(context.Background(), "a@b.co", "A", "t"))
}
