package email

import (
	"fmt"
	"html"

	"contentops/internal/config"
	"contentops/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .button:hover { background: #1d4ed8; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .value { color: #6b7280; }
        code { background: #e5e7eb; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// SuggestionCreated generates the email sent to editors when a new
// suggestion is awaiting review.
func (t *Templates) SuggestionCreated(s *models.Suggestion) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] New suggestion pending review on article %s", t.cfg.SiteTitle, s.ArticleID)

	content := fmt.Sprintf(`
        <p>A new edit suggestion has been submitted and requires your review.</p>

        <div class="info-box">
            <p><span class="label">Article:</span> <code>%s</code></p>
            <p><span class="label">Changes:</span> %s</p>
            <p><span class="label">Submitted by:</span> %s (%s)</p>
        </div>

        <p style="text-align: center;">
            <a href="%s/articles/%s/suggestions" class="button">Review in Dashboard</a>
        </p>
    `,
		html.EscapeString(s.ArticleID),
		html.EscapeString(s.Diff.Summary()),
		html.EscapeString(s.Author.Name),
		html.EscapeString(s.Author.Email),
		t.cfg.BaseURL,
		html.EscapeString(s.ArticleID),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`New suggestion pending review

Article: %s
Changes: %s
Submitted by: %s (%s)

Review at: %s/articles/%s/suggestions

--
%s
%s`,
		s.ArticleID,
		s.Diff.Summary(),
		s.Author.Name,
		s.Author.Email,
		t.cfg.BaseURL,
		s.ArticleID,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}
