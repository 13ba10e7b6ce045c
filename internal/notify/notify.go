package notify

import (
	"context"
	"fmt"

	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailClient is the slice of the SESv2 API the mailer uses.
type EmailClient interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Mailer sends notification emails through SES.
type Mailer struct {
	Client EmailClient
	Sender string
}

// Send delivers a plain text email to a single recipient.
func (m *Mailer) Send(ctx context.Context, recipient, subject, body string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.Sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}

	if _, err := m.Client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("error sending email to %s: %w", recipient, err)
	}
	return nil
}

// Render turns an event into an email subject and body. The second
// return is false for event types that carry no notification.
func Render(event events.EventPayload) (string, string, bool) {
	switch event.Type {
	case events.EventRequestSubmitted:
		return fmt.Sprintf("Your request %q was submitted", event.Data["title"]),
			fmt.Sprintf("Your public records request %q has been submitted.\n\nCurrent status: %s\n",
				event.Data["title"], event.Data["status"]),
			true
	case events.EventRequestUpdated:
		return fmt.Sprintf("Your request %q was updated", event.Data["title"]),
			fmt.Sprintf("Your public records request %q %s.\n",
				event.Data["title"], event.Data["action"]),
			true
	case events.EventAgencyStale:
		return fmt.Sprintf("Agency %q appears to have gone quiet", event.Data["name"]),
			fmt.Sprintf("The agency %q has not responded to any open requests recently and has been flagged for review.\n",
				event.Data["name"]),
			true
	case events.EventCrowdfundLaunched:
		return fmt.Sprintf("Crowdfund launched: %s", event.Data["name"]),
			fmt.Sprintf("A crowdfunding campaign %q has been launched.\n", event.Data["name"]),
			true
	case events.EventCrowdfundClosed:
		return fmt.Sprintf("Crowdfund complete: %s", event.Data["name"]),
			fmt.Sprintf("The crowdfunding campaign %q has reached its goal and is now closed.\n",
				event.Data["name"]),
			true
	case events.EventProjectReviewed:
		return fmt.Sprintf("Your project %q was %s", event.Data["title"], event.Data["action"]),
			fmt.Sprintf("Your project %q has been reviewed and %s by our staff.\n",
				event.Data["title"], event.Data["action"]),
			true
	}
	return "", "", false
}
