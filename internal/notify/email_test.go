package notify

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medpet-whatsapp-bot/pkg/logging"
)

func TestNewSendGridSender(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "citas@medpet.mx"}, nil))

	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "citas@medpet.mx"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "MedPet <citas@medpet.mx>", sender.from.address())

	sender = NewSendGridSender(SendGridConfig{APIKey: "key", FromName: " Recepción "}, nil)
	assert.Equal(t, "Recepción", sender.from.name)
}

type stubSendGrid struct {
	sent   *mail.SGMailV3
	status int
	err    error
}

func (s *stubSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.sent = email
	if s.err != nil {
		return nil, s.err
	}
	return &rest.Response{StatusCode: s.status}, nil
}

func TestSendGridSender_Send(t *testing.T) {
	api := &stubSendGrid{status: http.StatusAccepted}
	sender := newSendGridSender(api, newSender("citas@medpet.mx", ""), logging.Default())
	msg := EmailMessage{
		To:       "vet@medpet.mx",
		ReplyTo:  "recepcion@medpet.mx",
		Subject:  "Nueva cita",
		Text:     "texto",
		HTML:     "<p>texto</p>",
		Category: "appointment",
	}

	require.NoError(t, sender.Send(context.Background(), msg))
	require.NotNil(t, api.sent)
	assert.Equal(t, "Nueva cita", api.sent.Subject)
	assert.Equal(t, "citas@medpet.mx", api.sent.From.Address)
	require.Len(t, api.sent.Personalizations, 1)
	assert.Equal(t, "vet@medpet.mx", api.sent.Personalizations[0].To[0].Address)
	require.Len(t, api.sent.Content, 2)
	assert.Equal(t, "text/plain", api.sent.Content[0].Type)
	assert.Equal(t, "text/html", api.sent.Content[1].Type)
	assert.Equal(t, "recepcion@medpet.mx", api.sent.ReplyTo.Address)
	assert.Equal(t, []string{"appointment"}, api.sent.Categories)

	api.status = http.StatusUnauthorized
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "vet@medpet.mx", Text: "x"}))

	api.err = errors.New("timeout")
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "vet@medpet.mx", Text: "x"}))
}

func TestSendGridSender_RejectsInvalidMessage(t *testing.T) {
	api := &stubSendGrid{status: http.StatusAccepted}
	sender := newSendGridSender(api, newSender("citas@medpet.mx", ""), nil)

	assert.Error(t, sender.Send(context.Background(), EmailMessage{Text: "sin destinatario"}))
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "vet@medpet.mx"}))
	assert.Nil(t, api.sent)
}

func TestSendGridSender_SendNilClient(t *testing.T) {
	sender := &SendGridSender{}
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "vet@medpet.mx", Text: "x"}))
}

type stubSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (s *stubSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	api := &stubSES{}
	sender := newSESSender(api, SESConfig{FromEmail: "citas@medpet.mx"}, nil)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{
		To:       "vet@medpet.mx",
		ReplyTo:  "recepcion@medpet.mx",
		Subject:  "Nueva cita",
		Text:     "texto",
		HTML:     "<p>texto</p>",
		Category: "new appointment",
	}))
	assert.Equal(t, "MedPet <citas@medpet.mx>", aws.ToString(api.input.FromEmailAddress))
	assert.Equal(t, []string{"vet@medpet.mx"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "texto", aws.ToString(api.input.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>texto</p>", aws.ToString(api.input.Content.Simple.Body.Html.Data))
	assert.Equal(t, []string{"recepcion@medpet.mx"}, api.input.ReplyToAddresses)
	require.Len(t, api.input.EmailTags, 1)
	assert.Equal(t, "new_appointment", aws.ToString(api.input.EmailTags[0].Value))

	api.err = errors.New("throttled")
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "vet@medpet.mx", Text: "x"}))

	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

func TestStubEmailSender(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "vet@medpet.mx", Text: "x"}))
	assert.Error(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{Text: "x"}))
}
