package extornos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/internal/vehicles"
	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
)

type notifier interface {
	ExtornoConfirmationRequested(ctx context.Context, extorno *models.Extorno, token uuid.UUID) error
}

// Result pairs the stored row with the email side effect outcome.
type Result struct {
	Extorno      *models.Extorno `json:"extorno"`
	EmailWarning string          `json:"-"`
}

// Service drives the refund state machine:
// pendiente -> tramitado -> realizado, with rechazado reachable from the
// first two states.
type Service interface {
	Create(ctx context.Context, requesterID uuid.UUID, req CreateRequest) (*models.Extorno, error)
	Tramitar(ctx context.Context, id uuid.UUID) (*Result, error)
	ConfirmPayment(ctx context.Context, token uuid.UUID) (*models.Extorno, error)
	Reject(ctx context.Context, id uuid.UUID, req RejectRequest) (*models.Extorno, error)
}

type service struct {
	repo   Repository
	notify notifier
	logg   *logger.Logger
	nowFn  func() time.Time
}

// NewService builds the extornos service.
func NewService(repo Repository, notify notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("extornos repository required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		notify: notify,
		logg:   logg,
		nowFn:  time.Now,
	}, nil
}

// Create opens a refund request in pendiente.
func (s *service) Create(ctx context.Context, requesterID uuid.UUID, req CreateRequest) (*models.Extorno, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !req.Importe.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "importe must be positive")
	}

	extorno := &models.Extorno{
		Matricula:     vehicles.NormalizePlate(req.Matricula),
		Cliente:       strings.TrimSpace(req.Cliente),
		NumeroCuenta:  strings.TrimSpace(req.NumeroCuenta),
		Concepto:      strings.TrimSpace(req.Concepto),
		Importe:       req.Importe,
		Estado:        enums.ExtornoStatusPendiente,
		SolicitadoPor: requesterID,
	}
	created, err := s.repo.Create(ctx, extorno)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create extorno")
	}
	return created, nil
}

// Tramitar moves a pendiente request to tramitado, mints the single-use
// confirmation token and emails the payments responsible a confirm link.
func (s *service) Tramitar(ctx context.Context, id uuid.UUID) (*Result, error) {
	extorno, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if extorno.Estado != enums.ExtornoStatusPendiente {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("extorno is %s, only pendiente can be processed", extorno.Estado))
	}

	token := uuid.New()
	now := s.nowFn().UTC()
	updated, err := s.repo.MarkTramitado(ctx, id, token, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "process extorno")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "extorno was already processed")
	}

	extorno, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &Result{Extorno: extorno}
	if err := s.notify.ExtornoConfirmationRequested(ctx, extorno, token); err != nil {
		s.logg.Error(ctx, "extorno confirmation email failed", err)
		result.EmailWarning = "extorno processed but the confirmation email could not be sent"
	}
	return result, nil
}

// ConfirmPayment redeems a confirmation token. The token is cleared in the
// same conditional update that flips the state, so replays see NotFound.
func (s *service) ConfirmPayment(ctx context.Context, token uuid.UUID) (*models.Extorno, error) {
	if token == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirmation token required")
	}

	extorno, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown or already used confirmation token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up confirmation token")
	}

	updated, err := s.repo.MarkRealizado(ctx, extorno.ID, token, s.nowFn().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm extorno payment")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown or already used confirmation token")
	}
	return s.find(ctx, extorno.ID)
}

// Reject closes a pendiente or tramitado request with a reason.
func (s *service) Reject(ctx context.Context, id uuid.UUID, req RejectRequest) (*models.Extorno, error) {
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "motivo is required")
	}

	extorno, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if extorno.Estado.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("extorno is already %s", extorno.Estado))
	}

	updated, err := s.repo.MarkRechazado(ctx, id, motivo, s.nowFn().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject extorno")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "extorno was already closed")
	}
	return s.find(ctx, id)
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Extorno, error) {
	extorno, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "extorno not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load extorno")
	}
	return extorno, nil
}
