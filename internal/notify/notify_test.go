package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockEmailClient struct {
	mock.Mock
}

func (m *mockEmailClient) SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if out := args.Get(0); out != nil {
		return out.(*sesv2.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRender_KnownEventTypes(t *testing.T) {
	cases := []struct {
		eventType   string
		data        map[string]string
		wantSubject string
	}{
		{
			eventType:   events.EventRequestSubmitted,
			data:        map[string]string{"title": "Use of Force Reports", "status": "ack"},
			wantSubject: `Your request "Use of Force Reports" was submitted`,
		},
		{
			eventType:   events.EventRequestUpdated,
			data:        map[string]string{"title": "Use of Force Reports", "action": "received a response"},
			wantSubject: `Your request "Use of Force Reports" was updated`,
		},
		{
			eventType:   events.EventAgencyStale,
			data:        map[string]string{"name": "Springfield Police Department"},
			wantSubject: `Agency "Springfield Police Department" appears to have gone quiet`,
		},
		{
			eventType:   events.EventCrowdfundLaunched,
			data:        map[string]string{"name": "Fee for Use of Force Reports"},
			wantSubject: "Crowdfund launched: Fee for Use of Force Reports",
		},
		{
			eventType:   events.EventCrowdfundClosed,
			data:        map[string]string{"name": "Fee for Use of Force Reports"},
			wantSubject: "Crowdfund complete: Fee for Use of Force Reports",
		},
		{
			eventType:   events.EventProjectReviewed,
			data:        map[string]string{"title": "Police Accountability", "action": "approved"},
			wantSubject: `Your project "Police Accountability" was approved`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.eventType, func(t *testing.T) {
			subject, body, ok := Render(events.EventPayload{Type: tc.eventType, Data: tc.data})
			assert.True(t, ok)
			assert.Equal(t, tc.wantSubject, subject)
			assert.NotEmpty(t, body)
		})
	}
}

func TestRender_UnknownEventType(t *testing.T) {
	subject, body, ok := Render(events.EventPayload{Type: "request.deleted"})
	assert.False(t, ok)
	assert.Empty(t, subject)
	assert.Empty(t, body)
}

func TestMailerSend(t *testing.T) {
	client := new(mockEmailClient)
	mailer := &Mailer{Client: client, Sender: "no-reply@requests.example.com"}

	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(input *sesv2.SendEmailInput) bool {
		return *input.FromEmailAddress == "no-reply@requests.example.com" &&
			len(input.Destination.ToAddresses) == 1 &&
			input.Destination.ToAddresses[0] == "alice@example.com" &&
			*input.Content.Simple.Subject.Data == "Test subject"
	})).Return(&sesv2.SendEmailOutput{}, nil)

	err := mailer.Send(context.Background(), "alice@example.com", "Test subject", "Test body")
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestMailerSend_ClientError(t *testing.T) {
	client := new(mockEmailClient)
	mailer := &Mailer{Client: client, Sender: "no-reply@requests.example.com"}

	client.On("SendEmail", mock.Anything, mock.Anything).
		Return(nil, errors.New("ses unavailable"))

	err := mailer.Send(context.Background(), "alice@example.com", "Test subject", "Test body")
	assert.ErrorContains(t, err, "error sending email to alice@example.com")
}
