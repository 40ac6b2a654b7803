package email

import (
	"context"
	"strings"

	"contentops/internal/config"
	"contentops/internal/models"
)

// Notifier sends email notifications for suggestion events. It satisfies the
// workflow engine's notifier contract: calls return immediately and delivery
// happens in the background.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
	}
}

// SuggestionCreated notifies the editorial inbox that a new suggestion is
// awaiting review.
func (n *Notifier) SuggestionCreated(_ context.Context, s *models.Suggestion) {
	if !n.service.IsEnabled() || !n.cfg.EmailNotifyOnSuggestion {
		return
	}

	recipients := splitEmails(n.cfg.NotificationEmail)
	if len(recipients) == 0 {
		return
	}

	subject, htmlBody, textBody := n.templates.SuggestionCreated(s)
	n.service.SendAsync(recipients, subject, htmlBody, textBody)
}

func splitEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
