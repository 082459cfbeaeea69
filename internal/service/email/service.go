package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/infrastructure/circuitbreaker"
	"github.com/chargehub/chargehub-api/pkg/config"
)

// Provider defines the interface for email providers
type Provider interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// LogProvider writes emails to the log instead of sending them. It is used
// when no SendGrid key is configured.
type LogProvider struct {
	log *zap.Logger
}

func (p LogProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	p.log.Info("Email not sent, no provider configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}

// Service renders templated emails and sends them through the provider behind
// a circuit breaker.
type Service struct {
	provider  Provider
	breaker   *circuitbreaker.Breaker
	templates map[string]*template.Template
	appName   string
	baseURL   string
	log       *zap.Logger
}

// NewService creates an email service backed by SendGrid, or by LogProvider
// when cfg carries no API key.
func NewService(cfg config.EmailConfig, breaker *circuitbreaker.Breaker, log *zap.Logger) (*Service, error) {
	var provider Provider = LogProvider{log: log}
	if cfg.SendGridAPIKey != "" {
		if cfg.From == "" {
			return nil, fmt.Errorf("email.from is required with SendGrid")
		}
		provider = NewSendGridProvider(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	} else {
		log.Warn("SendGrid API key not set, emails will only be logged")
	}
	return newService(provider, breaker, cfg.FromName, cfg.BaseURL, log)
}

func newService(provider Provider, breaker *circuitbreaker.Breaker, appName, baseURL string, log *zap.Logger) (*Service, error) {
	if appName == "" {
		appName = "ChargeHub"
	}
	s := &Service{
		provider:  provider,
		breaker:   breaker,
		templates: make(map[string]*template.Template),
		appName:   appName,
		baseURL:   baseURL,
		log:       log,
	}
	if err := s.loadTemplates(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) loadTemplates() error {
	for name, content := range map[string]string{
		"welcome":      welcomeTemplate,
		"notification": notificationTemplate,
	} {
		tmpl, err := template.New(name).Parse(layoutTemplate)
		if err != nil {
			return fmt.Errorf("failed to parse layout: %w", err)
		}
		if _, err := tmpl.Parse(content); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		s.templates[name] = tmpl
	}
	return nil
}

// SendHTML sends an HTML email
func (s *Service) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	send := func(ctx context.Context) error {
		return s.provider.Send(ctx, to, subject, htmlBody, true)
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(ctx, send)
	} else {
		err = send(ctx)
	}
	if err != nil {
		s.log.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Debug("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// SendTemplate renders templateName with data and sends it
func (s *Service) SendTemplate(ctx context.Context, to, subject, templateName string, data map[string]interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	data["AppName"] = s.appName
	data["BaseURL"] = s.baseURL

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.SendHTML(ctx, to, subject, buf.String())
}

// SendWelcome greets a newly registered user
func (s *Service) SendWelcome(ctx context.Context, user *domain.User) error {
	return s.SendTemplate(ctx, user.Email, "Welcome to "+s.appName, "welcome", map[string]interface{}{
		"UserName":       user.Name,
		"IsStationOwner": user.Role == domain.UserRoleStationOwner,
	})
}

// SendNotification mirrors an in-app notification by email
func (s *Service) SendNotification(ctx context.Context, user *domain.User, title, body string) error {
	return s.SendTemplate(ctx, user.Email, title, "notification", map[string]interface{}{
		"UserName": user.Name,
		"Title":    title,
		"Body":     body,
	})
}
