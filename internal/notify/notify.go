// Package notify posts import summaries to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/importer"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
)

// Color constants for run outcomes.
const (
	ColorSuccess = "#36a64f"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Notifier receives the audit record of a finished import.
type Notifier interface {
	NotifyImport(ctx context.Context, run models.ImportRun) error
}

// Field is one labelled value of a Summary.
type Field struct {
	Name  string
	Value string
}

// Summary is the chat-neutral rendering of an import run.
type Summary struct {
	Title  string
	Body   string
	Color  string
	Fields []Field
}

// Summarize renders run for posting. Body is the last line of the run log,
// which holds the totals on success and the reason otherwise.
func Summarize(run models.ImportRun) Summary {
	s := Summary{Body: lastLine(run.Log)}
	switch importer.State(run.State) {
	case importer.StateCompleted:
		s.Title = "Import completed: " + run.FileName
		s.Color = ColorSuccess
	case importer.StateAborted:
		s.Title = "Import aborted: " + run.FileName
		s.Color = ColorWarning
	default:
		s.Title = "Import failed: " + run.FileName
		s.Color = ColorError
	}
	s.Fields = []Field{
		{Name: "Documents", Value: fmt.Sprint(run.Documents)},
		{Name: "Sheets", Value: fmt.Sprint(run.Sheets)},
		{Name: "Agencies", Value: fmt.Sprint(run.AgenciesCreated)},
		{Name: "Trigger", Value: run.Trigger},
	}
	if run.FinishedAt != nil && !run.StartedAt.IsZero() {
		s.Fields = append(s.Fields, Field{Name: "Duration", Value: run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()})
	}
	return s
}

func lastLine(log string) string {
	lines := strings.Split(strings.TrimRight(log, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// Multi fans a run out to every notifier and joins their errors.
type Multi []Notifier

// NotifyImport implements Notifier.
func (m Multi) NotifyImport(ctx context.Context, run models.ImportRun) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyImport(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds a notifier for every configured webhook. The result is
// empty when none is configured.
func FromConfig(cfg config.NotifyConfig) (Multi, error) {
	var m Multi
	if cfg.SlackWebhookURL != "" {
		m = append(m, NewSlack(cfg.SlackWebhookURL))
	}
	if cfg.DiscordWebhookURL != "" {
		d, err := NewDiscord(cfg.DiscordWebhookURL)
		if err != nil {
			return nil, err
		}
		m = append(m, d)
	}
	return m, nil
}
