package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
)

// webhookPoster matches slackapi.PostWebhookContext.
type webhookPoster func(ctx context.Context, url string, msg *slackapi.WebhookMessage) error

// Slack posts summaries to a Slack incoming webhook.
type Slack struct {
	url  string
	post webhookPoster
}

// NewSlack returns a Slack notifier for the incoming webhook url.
func NewSlack(url string) *Slack {
	return &Slack{url: url, post: slackapi.PostWebhookContext}
}

// NotifyImport implements Notifier.
func (s *Slack) NotifyImport(ctx context.Context, run models.ImportRun) error {
	if err := s.post(ctx, s.url, slackMessage(Summarize(run))); err != nil {
		return fmt.Errorf("notify: slack webhook: %w", err)
	}
	return nil
}

func slackMessage(sum Summary) *slackapi.WebhookMessage {
	att := slackapi.Attachment{
		Color:    sum.Color,
		Title:    sum.Title,
		Text:     sum.Body,
		Fallback: sum.Title,
	}
	for _, f := range sum.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{Title: f.Name, Value: f.Value, Short: true})
	}
	return &slackapi.WebhookMessage{
		Text:        sum.Title,
		Attachments: []slackapi.Attachment{att},
	}
}
