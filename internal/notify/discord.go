package notify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
)

// webhookExecutor abstracts the discordgo.Session method we use, enabling test mocks.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts summaries to a Discord channel webhook.
type Discord struct {
	id    string
	token string
	sess  webhookExecutor
}

// NewDiscord returns a Discord notifier for a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>.
func NewDiscord(webhookURL string) (*Discord, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhook execution needs no bot token.
	sess, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &Discord{id: id, token: token, sess: sess}, nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("notify: parse discord webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("notify: discord webhook url %q has no webhooks/<id>/<token> path", raw)
}

// NotifyImport implements Notifier.
func (d *Discord) NotifyImport(ctx context.Context, run models.ImportRun) error {
	_, err := d.sess.WebhookExecute(d.id, d.token, false, discordParams(Summarize(run)), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("notify: discord webhook: %w", err)
	}
	return nil
}

func discordParams(sum Summary) *discordgo.WebhookParams {
	embed := &discordgo.MessageEmbed{
		Title:       sum.Title,
		Description: sum.Body,
		Color:       parseHexColor(sum.Color),
	}
	for _, f := range sum.Fields {
		if f.Value == "" {
			continue // discord rejects empty field values
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: true})
	}
	return &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
}

// parseHexColor converts a hex color string (e.g. "#36a64f") to an int.
func parseHexColor(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
