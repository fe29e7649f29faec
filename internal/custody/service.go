package custody

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/internal/vehicles"
	"github.com/jviciana84/dealerops-backend/pkg/config"
	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
	"github.com/jviciana84/dealerops-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type salesRepository interface {
	FindByPlate(ctx context.Context, plate string) (*models.SalesVehicle, error)
}

type notifier interface {
	CustodyMovementCreated(ctx context.Context, movement *Movement) error
}

// Service exposes the custody movement workflow.
type Service interface {
	Create(ctx context.Context, req CreateMovementRequest) (*Movement, error)
	Confirm(ctx context.Context, actorID, movementID uuid.UUID) (*Movement, error)
	Reject(ctx context.Context, actorID, movementID uuid.UUID, req RejectRequest) (*Movement, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]Movement, error)
	History(ctx context.Context, params HistoryParams) (*HistoryResult, error)
}

type service struct {
	repo   Repository
	sales  salesRepository
	notify notifier
	tx     txRunner
	window time.Duration
	logg   *logger.Logger
	nowFn  func() time.Time
}

// NewService builds the custody service.
func NewService(repo Repository, sales salesRepository, notify notifier, tx txRunner, cfg config.CustodyConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("custody repository required")
	}
	if sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.ConfirmationWindow <= 0 {
		return nil, fmt.Errorf("confirmation window must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		sales:  sales,
		notify: notify,
		tx:     tx,
		window: cfg.ConfirmationWindow,
		logg:   logg,
		nowFn:  time.Now,
	}, nil
}

// Create registers a custody transfer and moves the holder snapshot in the
// same transaction. The outgoing holder is read from the snapshot, so a nil
// from_user means the item left dealership stock. The receiver gets a
// confirmation request email; a send failure downgrades to a warning on
// the response.
func (s *service) Create(ctx context.Context, req CreateMovementRequest) (*Movement, error) {
	plate := vehicles.NormalizePlate(req.Matricula)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matricula is required")
	}
	ctx = s.logg.WithPlate(ctx, plate)

	vehicle, err := s.sales.FindByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no vehicle registered for this matricula")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up vehicle")
	}

	now := s.nowFn().UTC()
	deadline := now.Add(s.window)
	var movement *Movement

	switch req.Kind {
	case KindKey:
		keyType, err := enums.ParseKeyType(req.KeyType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid key_type")
		}
		fromUserID, err := s.repo.GetKeyHolder(ctx, plate, keyType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load key holder")
		}
		row := &models.KeyMovement{
			VehicleID:            vehicle.ID,
			KeyType:              keyType,
			FromUserID:           fromUserID,
			ToUserID:             req.ToUserID,
			Reason:               strings.TrimSpace(req.Reason),
			ConfirmationDeadline: &deadline,
		}
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if _, err := repo.CreateKeyMovement(ctx, row); err != nil {
				return err
			}
			return repo.UpsertKeyHolder(ctx, plate, keyType, req.ToUserID)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create key movement")
		}
		converted := keyMovementToDTO(*row, now)
		movement = &converted
	case KindDocument:
		documentType, err := enums.ParseDocumentType(req.DocumentType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid document_type")
		}
		fromUserID, err := s.repo.GetDocumentHolder(ctx, plate, documentType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load document holder")
		}
		row := &models.DocumentMovement{
			VehicleID:            vehicle.ID,
			DocumentType:         documentType,
			FromUserID:           fromUserID,
			ToUserID:             req.ToUserID,
			Reason:               strings.TrimSpace(req.Reason),
			ConfirmationDeadline: &deadline,
		}
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if _, err := repo.CreateDocumentMovement(ctx, row); err != nil {
				return err
			}
			return repo.UpsertDocumentHolder(ctx, plate, documentType, req.ToUserID)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document movement")
		}
		converted := documentMovementToDTO(*row, now)
		movement = &converted
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kind must be key or document")
	}

	movement.Matricula = plate
	if movement.ToUserID != nil {
		if err := s.notify.CustodyMovementCreated(ctx, movement); err != nil {
			s.logg.Error(ctx, "custody confirmation email failed", err)
			movement.EmailWarning = "movement registered but the confirmation email could not be sent"
		}
	}
	return movement, nil
}

// Confirm marks a pending movement as accepted by its receiver.
func (s *service) Confirm(ctx context.Context, actorID, movementID uuid.UUID) (*Movement, error) {
	return s.resolve(ctx, actorID, movementID, Resolution{Confirmed: true})
}

// Reject marks a pending movement as refused, keeping the optional reason.
func (s *service) Reject(ctx context.Context, actorID, movementID uuid.UUID, req RejectRequest) (*Movement, error) {
	res := Resolution{Rejected: true}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		res.Notes = &reason
	}
	return s.resolve(ctx, actorID, movementID, res)
}

func (s *service) resolve(ctx context.Context, actorID, movementID uuid.UUID, res Resolution) (*Movement, error) {
	now := s.nowFn().UTC()
	res.At = now

	kind, key, document, err := s.findMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}

	var toUserID *uuid.UUID
	var status enums.MovementStatus
	if kind == KindKey {
		toUserID = key.ToUserID
		status = DeriveStatus(key.Confirmed, key.Rejected, key.ConfirmationDeadline, now)
	} else {
		toUserID = document.ToUserID
		status = DeriveStatus(document.Confirmed, document.Rejected, document.ConfirmationDeadline, now)
	}

	if toUserID == nil || *toUserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the receiver can answer this movement")
	}
	if status != enums.MovementStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "movement is already resolved")
	}

	var updated bool
	if kind == KindKey {
		updated, err = s.repo.ResolveKeyMovement(ctx, movementID, res)
	} else {
		updated, err = s.repo.ResolveDocumentMovement(ctx, movementID, res)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve movement")
	}
	if !updated {
		// Lost the race against a concurrent confirm/reject.
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "movement is already resolved")
	}

	kind, key, document, err = s.findMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	var movement Movement
	if kind == KindKey {
		movement = keyMovementToDTO(*key, now)
	} else {
		movement = documentMovementToDTO(*document, now)
	}
	return &movement, nil
}

func (s *service) findMovement(ctx context.Context, id uuid.UUID) (Kind, *models.KeyMovement, *models.DocumentMovement, error) {
	key, err := s.repo.FindKeyMovement(ctx, id)
	if err == nil {
		return KindKey, key, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load movement")
	}

	document, err := s.repo.FindDocumentMovement(ctx, id)
	if err == nil {
		return KindDocument, nil, document, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
	}
	return "", nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load movement")
}

// ListPending returns unresolved movements addressed to the user, both
// kinds merged, newest first.
func (s *service) ListPending(ctx context.Context, userID uuid.UUID) ([]Movement, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	now := s.nowFn().UTC()

	keys, err := s.repo.ListPendingKeyMovements(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending key movements")
	}
	documents, err := s.repo.ListPendingDocumentMovements(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending document movements")
	}

	movements := make([]Movement, 0, len(keys)+len(documents))
	for _, key := range keys {
		movements = append(movements, keyMovementToDTO(key, now))
	}
	for _, document := range documents {
		movements = append(movements, documentMovementToDTO(document, now))
	}
	sortMovements(movements)
	return movements, nil
}

// History pages through every custody movement of one vehicle.
func (s *service) History(ctx context.Context, params HistoryParams) (*HistoryResult, error) {
	plate := vehicles.NormalizePlate(params.Matricula)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matricula is required")
	}

	vehicle, err := s.sales.FindByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no vehicle registered for this matricula")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up vehicle")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	fetch := pagination.LimitWithBuffer(params.Limit)
	now := s.nowFn().UTC()

	keys, err := s.repo.ListKeyMovementsByVehicle(ctx, vehicle.ID, fetch, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list key movements")
	}
	documents, err := s.repo.ListDocumentMovementsByVehicle(ctx, vehicle.ID, fetch, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list document movements")
	}

	movements := make([]Movement, 0, len(keys)+len(documents))
	for _, key := range keys {
		movements = append(movements, keyMovementToDTO(key, now))
	}
	for _, document := range documents {
		movements = append(movements, documentMovementToDTO(document, now))
	}
	sortMovements(movements)

	result := &HistoryResult{}
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[len(movements)-1]
		result.Cursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID.String(),
		})
	}
	for i := range movements {
		movements[i].Matricula = plate
	}
	result.Movements = movements
	return result, nil
}

func sortMovements(movements []Movement) {
	sort.Slice(movements, func(i, j int) bool {
		if !movements[i].CreatedAt.Equal(movements[j].CreatedAt) {
			return movements[i].CreatedAt.After(movements[j].CreatedAt)
		}
		return movements[i].ID.String() > movements[j].ID.String()
	})
}

func keyMovementToDTO(row models.KeyMovement, now time.Time) Movement {
	return Movement{
		ID:          row.ID,
		Kind:        KindKey,
		VehicleID:   row.VehicleID,
		ItemType:    row.KeyType.String(),
		FromUserID:  row.FromUserID,
		ToUserID:    row.ToUserID,
		Reason:      row.Reason,
		Status:      DeriveStatus(row.Confirmed, row.Rejected, row.ConfirmationDeadline, now),
		Deadline:    row.ConfirmationDeadline,
		ConfirmedAt: row.ConfirmedAt,
		RejectedAt:  row.RejectedAt,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
	}
}

func documentMovementToDTO(row models.DocumentMovement, now time.Time) Movement {
	return Movement{
		ID:          row.ID,
		Kind:        KindDocument,
		VehicleID:   row.VehicleID,
		ItemType:    row.DocumentType.String(),
		FromUserID:  row.FromUserID,
		ToUserID:    row.ToUserID,
		Reason:      row.Reason,
		Status:      DeriveStatus(row.Confirmed, row.Rejected, row.ConfirmationDeadline, now),
		Deadline:    row.ConfirmationDeadline,
		ConfirmedAt: row.ConfirmedAt,
		RejectedAt:  row.RejectedAt,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
	}
}
