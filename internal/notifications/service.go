// Package notifications composes and delivers the workflow emails.
package notifications

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/internal/custody"
	"github.com/jviciana84/dealerops-backend/pkg/config"
	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
	"github.com/jviciana84/dealerops-backend/pkg/mailer"
	"github.com/jviciana84/dealerops-backend/pkg/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Service composes and sends the three workflow emails. The email_config
// row in the database can switch all sends off without a deploy.
type Service interface {
	IncentiveCreated(ctx context.Context, incentive *models.Incentive) error
	CustodyMovementCreated(ctx context.Context, movement *custody.Movement) error
	ExtornoConfirmationRequested(ctx context.Context, extorno *models.Extorno, token uuid.UUID) error
}

type service struct {
	repo        Repository
	sender      mailer.Sender
	mail        *metrics.MailMetrics
	baseURL     string
	backoffice  string
	payments    string
	sendTimeout time.Duration
	logg        *logger.Logger
	templates   *template.Template
}

// NewService builds the notifications service.
func NewService(repo Repository, sender mailer.Sender, mail *metrics.MailMetrics, app config.AppConfig, incentives config.IncentivesConfig, smtp config.SMTPConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing email templates: %w", err)
	}

	timeout := smtp.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &service{
		repo:        repo,
		sender:      sender,
		mail:        mail,
		baseURL:     app.BaseURL,
		backoffice:  incentives.BackofficeCC,
		payments:    incentives.PaymentsEmail,
		sendTimeout: timeout,
		logg:        logg,
		templates:   templates,
	}, nil
}

// IncentiveCreated tells the back office a new row is waiting for costs.
func (s *service) IncentiveCreated(ctx context.Context, incentive *models.Incentive) error {
	if incentive == nil {
		return fmt.Errorf("incentive required")
	}
	if s.backoffice == "" {
		s.skip(ctx, enums.EmailKindIncentiveCreated, "no backoffice address configured")
		return nil
	}

	data := map[string]string{
		"Matricula": incentive.Matricula,
		"Modelo":    incentive.Modelo,
		"Asesor":    incentive.Asesor,
		"OR":        incentive.OR,
	}
	if incentive.FechaEntrega != nil {
		data["FechaEntrega"] = incentive.FechaEntrega.Format("02/01/2006")
	}

	html, err := s.render("incentive_created.html", data)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, enums.EmailKindIncentiveCreated, mailer.Message{
		To:      []string{s.backoffice},
		Subject: fmt.Sprintf("Nuevo incentivo: %s (%s)", incentive.Matricula, incentive.Modelo),
		HTML:    html,
	})
}

// CustodyMovementCreated asks the receiver to confirm a custody transfer.
func (s *service) CustodyMovementCreated(ctx context.Context, movement *custody.Movement) error {
	if movement == nil || movement.ToUserID == nil {
		return fmt.Errorf("movement with a receiver required")
	}

	profile, err := s.repo.FindProfile(ctx, *movement.ToUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("receiver profile %s not found", movement.ToUserID)
		}
		return fmt.Errorf("loading receiver profile: %w", err)
	}

	data := map[string]string{
		"ReceiverName": profile.FullName,
		"Item":         itemLabel(movement),
		"Matricula":    movement.Matricula,
		"Reason":       movement.Reason,
	}
	if movement.Deadline != nil {
		data["Deadline"] = movement.Deadline.Format("02/01/2006 15:04")
	}

	html, err := s.render("custody_confirmation.html", data)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, enums.EmailKindCustodyConfirmation, mailer.Message{
		To:      []string{profile.Email},
		Subject: fmt.Sprintf("Confirma la recepción: %s de %s", itemLabel(movement), movement.Matricula),
		HTML:    html,
	})
}

// ExtornoConfirmationRequested sends the payments responsible the
// single-use confirmation link for a processed refund.
func (s *service) ExtornoConfirmationRequested(ctx context.Context, extorno *models.Extorno, token uuid.UUID) error {
	if extorno == nil {
		return fmt.Errorf("extorno required")
	}
	if token == uuid.Nil {
		return fmt.Errorf("confirmation token required")
	}
	if s.payments == "" {
		return fmt.Errorf("no payments address configured")
	}

	confirmURL := fmt.Sprintf("%s/api/v1/extornos/confirm?token=%s", s.baseURL, url.QueryEscape(token.String()))
	data := map[string]string{
		"Matricula":    extorno.Matricula,
		"Cliente":      extorno.Cliente,
		"NumeroCuenta": extorno.NumeroCuenta,
		"Concepto":     extorno.Concepto,
		"Importe":      extorno.Importe.StringFixed(2),
		"ConfirmURL":   confirmURL,
	}

	html, err := s.render("extorno_confirmation.html", data)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, enums.EmailKindExtornoConfirmation, mailer.Message{
		To:      []string{s.payments},
		Subject: fmt.Sprintf("Extorno listo para pagar: %s (%s €)", extorno.Matricula, extorno.Importe.StringFixed(2)),
		HTML:    html,
	})
}

// dispatch applies the database gate and the extra CC list, then sends
// within the configured timeout.
func (s *service) dispatch(ctx context.Context, kind enums.EmailKind, msg mailer.Message) error {
	gate, err := s.repo.GetEmailConfig(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.mail.IncFailure(kind.String())
		return fmt.Errorf("loading email gate: %w", err)
	}
	if gate != nil {
		if !gate.Enabled {
			s.skip(ctx, kind, "email sending disabled in email_config")
			return nil
		}
		msg.CC = append(msg.CC, gate.CC...)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.sender.Send(sendCtx, msg); err != nil {
		s.mail.IncFailure(kind.String())
		return err
	}
	s.mail.IncSent(kind.String())
	s.logg.Info(s.logg.WithField(ctx, "email_kind", kind.String()), "workflow email sent")
	return nil
}

func (s *service) skip(ctx context.Context, kind enums.EmailKind, reason string) {
	s.mail.IncSkipped(kind.String())
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"email_kind": kind.String(),
		"reason":     reason,
	}), "workflow email skipped")
}

func (s *service) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

func itemLabel(movement *custody.Movement) string {
	labels := map[string]string{
		"first_key":          "la primera llave",
		"second_key":         "la segunda llave",
		"card_key":           "la card key",
		"technical_sheet":    "la ficha técnica",
		"circulation_permit": "el permiso de circulación",
	}
	if label, ok := labels[movement.ItemType]; ok {
		return label
	}
	return movement.ItemType
}
