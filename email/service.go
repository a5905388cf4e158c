package email

import (
	"bitwise74/leads-api/metrics"
	"bitwise74/leads-api/priority"
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	dateFormat     = "Jan 2, 2006"
	dateTimeFormat = "Jan 2, 2006 15:04 MST"
)

type Config struct {
	AdminEmail string
	SiteName   string
	// Link to the database dashboard, shown in admin emails when set
	DashboardURL string
}

// Service sends every notification of the resource request flow. None of
// its methods return errors, failures are logged and reported as false.
type Service struct {
	sender Sender
	tpl    *Templates
	cfg    Config
	now    func() time.Time
}

func NewService(sender Sender, tpl *Templates, cfg Config) (*Service, error) {
	if cfg.AdminEmail == "" {
		return nil, ErrNoAdminAddress
	}

	return &Service{
		sender: sender,
		tpl:    tpl,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

// NewFromConfig builds the service and its provider from viper. A missing
// API key is a hard failure.
func NewFromConfig() (*Service, error) {
	var (
		sender Sender
		err    error
	)

	switch viper.GetString("email.provider") {
	case "smtp":
		sender, err = NewSMTPSender(
			viper.GetString("smtp.host"),
			viper.GetInt("smtp.port"),
			viper.GetString("smtp.username"),
			viper.GetString("smtp.password"),
			viper.GetString("sendgrid.from_email"),
			viper.GetString("sendgrid.from_name"),
		)
	default:
		sender, err = NewSendGridSender(
			viper.GetString("sendgrid.api_key"),
			viper.GetString("sendgrid.host"),
			viper.GetString("sendgrid.from_email"),
			viper.GetString("sendgrid.from_name"),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email provider, %w", err)
	}

	return NewService(sender, NewTemplates(viper.GetString("email.templates_dir")), Config{
		AdminEmail:   viper.GetString("admin.email"),
		SiteName:     viper.GetString("app.site_name"),
		DashboardURL: viper.GetString("supabase.url"),
	})
}

// SendResourceRequest notifies the admin about a new lead
func (s *Service) SendResourceRequest(ctx context.Context, d ResourceRequestEmail) bool {
	subject := fmt.Sprintf("[P%d] New resource request: %s", d.Priority, d.ResourceURL)
	return s.send(ctx, "resource_request", TemplateResourceRequest, s.cfg.AdminEmail, subject, s.requestVars(d))
}

// SendAuditAlert tells the admin a resource reached high demand
func (s *Service) SendAuditAlert(ctx context.Context, d AuditAlertEmail) bool {
	vars := s.requestVars(d.ResourceRequestEmail)

	factors := make([]map[string]any, 0, len(d.Factors))
	for _, f := range d.Factors {
		factors = append(factors, map[string]any{
			"name":   f.Name,
			"weight": f.Weight,
			"detail": f.Detail,
		})
	}
	vars["factors"] = factors

	subject := fmt.Sprintf("[Audit] High demand for %s (priority %d, %d requests)", d.ResourceURL, d.Priority, d.RequestCount)
	return s.send(ctx, "audit_alert", TemplateAuditAlert, s.cfg.AdminEmail, subject, vars)
}

// SendAutoResponse confirms the request to the lead
func (s *Service) SendAutoResponse(ctx context.Context, d AutoResponseEmail) bool {
	vars := s.baseVars()
	vars["userEmail"] = d.UserEmail
	vars["resourceUrl"] = d.ResourceURL
	vars["requestId"] = d.RequestID

	subject := fmt.Sprintf("We received your request - %s", s.cfg.SiteName)
	return s.send(ctx, "auto_response", TemplateAutoResponse, d.UserEmail, subject, vars)
}

// SendWeeklyReport sends the digest to the admin
func (s *Service) SendWeeklyReport(ctx context.Context, d WeeklyReportEmail) bool {
	vars := s.baseVars()
	vars["periodStart"] = d.PeriodStart.Format(dateFormat)
	vars["periodEnd"] = d.PeriodEnd.Format(dateFormat)
	vars["newRequests"] = d.NewRequests
	vars["completed"] = d.Completed
	vars["rejected"] = d.Rejected
	vars["pendingTotal"] = d.PendingTotal
	vars["highPriority"] = d.HighPriority
	vars["uniqueResources"] = d.UniqueResources

	top := make([]map[string]any, 0, len(d.TopResources))
	for i, r := range d.TopResources {
		top = append(top, map[string]any{
			"rank":        i + 1,
			"resourceUrl": r.ResourceURL,
			"requests":    r.Requests,
			"priority":    r.Priority,
		})
	}
	vars["topResources"] = top

	pending := make([]map[string]any, 0, len(d.OldestPending))
	for _, r := range d.OldestPending {
		pending = append(pending, map[string]any{
			"id":          r.ID,
			"userEmail":   r.UserEmail,
			"resourceUrl": r.ResourceURL,
			"priority":    r.Priority,
			"createdAt":   r.CreatedAt.Format(dateTimeFormat),
		})
	}
	vars["oldestPending"] = pending

	subject := fmt.Sprintf("Weekly resource request report (%s - %s)", vars["periodStart"], vars["periodEnd"])
	return s.send(ctx, "weekly_report", TemplateWeeklyReport, s.cfg.AdminEmail, subject, vars)
}

// TestConfiguration sends a test email to the admin address
func (s *Service) TestConfiguration(ctx context.Context) bool {
	vars := s.baseVars()
	vars["sentAt"] = s.now().UTC().Format(dateTimeFormat)

	subject := fmt.Sprintf("Email configuration test - %s", s.cfg.SiteName)
	return s.send(ctx, "test", TemplateTestEmail, s.cfg.AdminEmail, subject, vars)
}

func (s *Service) send(ctx context.Context, kind, template, to, subject string, vars map[string]any) bool {
	html, text, err := s.tpl.Render(template, vars)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "failed").Inc()
		zap.L().Error("Failed to render email", zap.String("kind", kind), zap.Error(err))
		return false
	}

	err = s.sender.Send(ctx, &Message{
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "failed").Inc()
		zap.L().Error("Failed to send email", zap.String("kind", kind), zap.String("to", to), zap.Error(err))
		return false
	}

	metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	zap.L().Debug("Email sent", zap.String("kind", kind), zap.String("to", to))
	return true
}

func (s *Service) baseVars() map[string]any {
	return map[string]any{
		"siteName":     s.cfg.SiteName,
		"dashboardUrl": s.cfg.DashboardURL,
		"year":         s.now().Year(),
	}
}

func (s *Service) requestVars(d ResourceRequestEmail) map[string]any {
	vars := s.baseVars()
	vars["requestId"] = d.RequestID
	vars["userEmail"] = d.UserEmail
	vars["resourceUrl"] = d.ResourceURL
	vars["sourceUrl"] = d.SourceURL
	vars["message"] = d.Message
	vars["priority"] = d.Priority
	vars["requestCount"] = d.RequestCount
	vars["isHighPriority"] = d.Priority >= priority.HighLevel
	vars["createdAt"] = d.CreatedAt.UTC().Format(dateTimeFormat)
	return vars
}
