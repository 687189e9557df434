package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"eventcalendar/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestTemplateRenderer_welcome(t *testing.T) {
	r := NewTemplateRenderer()
	subject, html, text, err := r.Render("welcome", &domain.WelcomeMessageEmailData{
		Email:    "alice@example.com",
		Username: "<alice>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the event calendar, <alice>", subject)
	assert.Contains(t, html, "Welcome, &lt;alice&gt;!", "html body is escaped")
	assert.Contains(t, text, "Welcome, <alice>!")
	assert.Contains(t, text, "alice@example.com")
}

func TestTemplateRenderer_unknown(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("missing", nil)
	require.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "no-reply@example.com", "Events", testLogger)

	require.NoError(t, m.Send(context.Background(), "alice@example.com", "Hi", "<p>hi</p>", ""))
	require.NotNil(t, client.input)
	assert.Equal(t, "Events <no-reply@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"alice@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(client.input.Message.Subject.Data))
	require.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)

	client.err = errors.New("throttled")
	require.Error(t, m.Send(context.Background(), "alice@example.com", "Hi", "", "hi"))
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), "a@example.com", "s", "", ""))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, testLogger)
	require.Error(t, err, "ses needs a region")

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "a@example.com", SES: SESConfig{Region: "eu-west-1"}}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
