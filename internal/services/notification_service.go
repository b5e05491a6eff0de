package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"rescuetrack/internal/config"

	"go.uber.org/zap"
)

type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// InviteNotification is everything the invite e-mail needs, captured when the invite is created.
type InviteNotification struct {
	InviteID         string    `json:"invite_id"`
	Email            string    `json:"email"`
	OrganizationName string    `json:"organization_name"`
	Role             string    `json:"role"`
	Code             string    `json:"code"`
	SignupURL        string    `json:"signup_url"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// InviteNotifier delivers invite e-mails, normally by enqueueing a background task.
type InviteNotifier interface {
	NotifyInvite(ctx context.Context, n InviteNotification) error
}

// NewEmailSender returns an HTTP sender when an API key is configured and a logging sender otherwise.
func NewEmailSender(cfg config.EmailConfig, logger *zap.Logger) EmailSender {
	if cfg.APIKey == "" {
		logger.Warn("no email api key configured, emails will be logged only")
		return &logEmailSender{logger: logger}
	}
	return &httpEmailSender{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type httpEmailSender struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

func (s *httpEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	payload, err := json.Marshal(map[string]interface{}{
		"from":    s.from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

type logEmailSender struct {
	logger *zap.Logger
}

func (s *logEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("email not sent, logging instead", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

var inviteEmailTemplate = template.Must(template.New("invite").Parse(`<h1>You've been invited to join {{.OrganizationName}}</h1>
<p>You have been invited to join {{.OrganizationName}} as a {{.Role}}.</p>
<p><a href="{{.SignupURL}}">Accept Invitation</a></p>
<p>Or use invite code <strong>{{.Code}}</strong> when signing up.</p>
<p>This invitation expires on {{.ExpiresAt.Format "January 2, 2006"}}.</p>`))

// RenderInviteEmail builds the invitation message.
func RenderInviteEmail(n InviteNotification) (EmailMessage, error) {
	var buf bytes.Buffer
	if err := inviteEmailTemplate.Execute(&buf, n); err != nil {
		return EmailMessage{}, err
	}
	text := fmt.Sprintf("You have been invited to join %s as a %s.\nSign up at %s or use invite code %s.\nThis invitation expires on %s.",
		n.OrganizationName, n.Role, n.SignupURL, n.Code, n.ExpiresAt.Format("January 2, 2006"))
	return EmailMessage{
		To:      n.Email,
		Subject: "Invitation to join " + n.OrganizationName,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}
