package custody

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/pkg/config"
	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
	"github.com/jviciana84/dealerops-backend/pkg/pagination"
)

type holderKey struct {
	plate string
	item  string
}

type fakeRepo struct {
	keyMovements      map[uuid.UUID]*models.KeyMovement
	documentMovements map[uuid.UUID]*models.DocumentMovement
	holders           map[holderKey]*uuid.UUID
	resolveUpdated    *bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		keyMovements:      map[uuid.UUID]*models.KeyMovement{},
		documentMovements: map[uuid.UUID]*models.DocumentMovement{},
		holders:           map[holderKey]*uuid.UUID{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateKeyMovement(ctx context.Context, movement *models.KeyMovement) (*models.KeyMovement, error) {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	f.keyMovements[movement.ID] = movement
	return movement, nil
}

func (f *fakeRepo) CreateDocumentMovement(ctx context.Context, movement *models.DocumentMovement) (*models.DocumentMovement, error) {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	f.documentMovements[movement.ID] = movement
	return movement, nil
}

func (f *fakeRepo) FindKeyMovement(ctx context.Context, id uuid.UUID) (*models.KeyMovement, error) {
	movement, ok := f.keyMovements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *movement
	return &copied, nil
}

func (f *fakeRepo) FindDocumentMovement(ctx context.Context, id uuid.UUID) (*models.DocumentMovement, error) {
	movement, ok := f.documentMovements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *movement
	return &copied, nil
}

func (f *fakeRepo) ResolveKeyMovement(ctx context.Context, id uuid.UUID, res Resolution) (bool, error) {
	if f.resolveUpdated != nil {
		return *f.resolveUpdated, nil
	}
	movement, ok := f.keyMovements[id]
	if !ok || movement.Confirmed || movement.Rejected {
		return false, nil
	}
	movement.Confirmed = res.Confirmed
	movement.Rejected = res.Rejected
	if res.Confirmed {
		movement.ConfirmedAt = &res.At
	}
	if res.Rejected {
		movement.RejectedAt = &res.At
	}
	movement.Notes = res.Notes
	return true, nil
}

func (f *fakeRepo) ResolveDocumentMovement(ctx context.Context, id uuid.UUID, res Resolution) (bool, error) {
	if f.resolveUpdated != nil {
		return *f.resolveUpdated, nil
	}
	movement, ok := f.documentMovements[id]
	if !ok || movement.Confirmed || movement.Rejected {
		return false, nil
	}
	movement.Confirmed = res.Confirmed
	movement.Rejected = res.Rejected
	if res.Confirmed {
		movement.ConfirmedAt = &res.At
	}
	if res.Rejected {
		movement.RejectedAt = &res.At
	}
	movement.Notes = res.Notes
	return true, nil
}

func (f *fakeRepo) ListPendingKeyMovements(ctx context.Context, userID uuid.UUID) ([]models.KeyMovement, error) {
	var out []models.KeyMovement
	for _, movement := range f.keyMovements {
		if movement.ToUserID != nil && *movement.ToUserID == userID && !movement.Confirmed && !movement.Rejected {
			out = append(out, *movement)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPendingDocumentMovements(ctx context.Context, userID uuid.UUID) ([]models.DocumentMovement, error) {
	var out []models.DocumentMovement
	for _, movement := range f.documentMovements {
		if movement.ToUserID != nil && *movement.ToUserID == userID && !movement.Confirmed && !movement.Rejected {
			out = append(out, *movement)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListKeyMovementsByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.KeyMovement, error) {
	var out []models.KeyMovement
	for _, movement := range f.keyMovements {
		if movement.VehicleID == vehicleID {
			out = append(out, *movement)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDocumentMovementsByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.DocumentMovement, error) {
	var out []models.DocumentMovement
	for _, movement := range f.documentMovements {
		if movement.VehicleID == vehicleID {
			out = append(out, *movement)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetKeyHolder(ctx context.Context, plate string, keyType enums.KeyType) (*uuid.UUID, error) {
	return f.holders[holderKey{plate: plate, item: keyType.String()}], nil
}

func (f *fakeRepo) GetDocumentHolder(ctx context.Context, plate string, documentType enums.DocumentType) (*uuid.UUID, error) {
	return f.holders[holderKey{plate: plate, item: documentType.String()}], nil
}

func (f *fakeRepo) UpsertKeyHolder(ctx context.Context, plate string, keyType enums.KeyType, holder *uuid.UUID) error {
	f.holders[holderKey{plate: plate, item: keyType.String()}] = holder
	return nil
}

func (f *fakeRepo) UpsertDocumentHolder(ctx context.Context, plate string, documentType enums.DocumentType, holder *uuid.UUID) error {
	f.holders[holderKey{plate: plate, item: documentType.String()}] = holder
	return nil
}

type fakeSales struct {
	vehicles map[string]*models.SalesVehicle
}

func (f *fakeSales) FindByPlate(ctx context.Context, plate string) (*models.SalesVehicle, error) {
	vehicle, ok := f.vehicles[plate]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vehicle, nil
}

type fakeNotifier struct {
	err  error
	sent []*Movement
}

func (f *fakeNotifier) CustodyMovementCreated(ctx context.Context, movement *Movement) error {
	f.sent = append(f.sent, movement)
	return f.err
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *fakeRepo, sales *fakeSales, notify *fakeNotifier) *service {
	t.Helper()
	svc, err := NewService(repo, sales, notify, fakeTx{}, config.CustodyConfig{ConfirmationWindow: 24 * time.Hour}, testLogger())
	require.NoError(t, err)
	return svc.(*service)
}

func vehicleFor(plate string) (*fakeSales, uuid.UUID) {
	id := uuid.New()
	return &fakeSales{vehicles: map[string]*models.SalesVehicle{
		plate: {ID: id, LicensePlate: plate},
	}}, id
}

func TestCreateKeyMovement(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	notify := &fakeNotifier{}
	svc := newTestService(t, repo, sales, notify)

	now := time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)
	svc.nowFn = func() time.Time { return now }

	previous := uuid.New()
	receiver := uuid.New()
	repo.holders[holderKey{plate: "1234ABC", item: "first_key"}] = &previous

	movement, err := svc.Create(context.Background(), CreateMovementRequest{
		Matricula: "1234-abc",
		Kind:      KindKey,
		KeyType:   "first_key",
		ToUserID:  &receiver,
		Reason:    "delivery to customer",
	})
	require.NoError(t, err)

	assert.Equal(t, vehicleID, movement.VehicleID)
	assert.Equal(t, "1234ABC", movement.Matricula)
	assert.Equal(t, enums.MovementStatusPending, movement.Status)
	require.NotNil(t, movement.Deadline)
	assert.True(t, movement.Deadline.Equal(now.Add(24*time.Hour)))
	require.NotNil(t, movement.FromUserID)
	assert.Equal(t, previous, *movement.FromUserID)

	// Holder snapshot now points at the receiver.
	holder := repo.holders[holderKey{plate: "1234ABC", item: "first_key"}]
	require.NotNil(t, holder)
	assert.Equal(t, receiver, *holder)

	require.Len(t, notify.sent, 1)
	assert.Empty(t, movement.EmailWarning)
}

func TestCreateMovementUnknownVehicle(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeSales{vehicles: map[string]*models.SalesVehicle{}}, &fakeNotifier{})

	receiver := uuid.New()
	_, err := svc.Create(context.Background(), CreateMovementRequest{
		Matricula: "0000XXX",
		Kind:      KindKey,
		KeyType:   "first_key",
		ToUserID:  &receiver,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateMovementToDealershipSkipsEmail(t *testing.T) {
	repo := newFakeRepo()
	sales, _ := vehicleFor("1234ABC")
	notify := &fakeNotifier{}
	svc := newTestService(t, repo, sales, notify)

	movement, err := svc.Create(context.Background(), CreateMovementRequest{
		Matricula:    "1234ABC",
		Kind:         KindDocument,
		DocumentType: "technical_sheet",
	})
	require.NoError(t, err)
	assert.Nil(t, movement.ToUserID)
	assert.Empty(t, notify.sent)
	assert.Nil(t, repo.holders[holderKey{plate: "1234ABC", item: "technical_sheet"}])
}

func TestCreateMovementEmailFailureIsWarningOnly(t *testing.T) {
	repo := newFakeRepo()
	sales, _ := vehicleFor("1234ABC")
	notify := &fakeNotifier{err: assert.AnError}
	svc := newTestService(t, repo, sales, notify)

	receiver := uuid.New()
	movement, err := svc.Create(context.Background(), CreateMovementRequest{
		Matricula: "1234ABC",
		Kind:      KindKey,
		KeyType:   "card_key",
		ToUserID:  &receiver,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, movement.EmailWarning)
}

func TestConfirmByReceiver(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	receiver := uuid.New()
	deadline := time.Now().UTC().Add(time.Hour)
	row, err := repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
		VehicleID:            vehicleID,
		KeyType:              enums.KeyTypeFirstKey,
		ToUserID:             &receiver,
		ConfirmationDeadline: &deadline,
	})
	require.NoError(t, err)

	movement, err := svc.Confirm(context.Background(), receiver, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MovementStatusConfirmed, movement.Status)
	require.NotNil(t, movement.ConfirmedAt)
}

func TestConfirmOwnershipMismatch(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	receiver := uuid.New()
	deadline := time.Now().UTC().Add(time.Hour)
	row, _ := repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
		VehicleID:            vehicleID,
		KeyType:              enums.KeyTypeFirstKey,
		ToUserID:             &receiver,
		ConfirmationDeadline: &deadline,
	})

	_, err := svc.Confirm(context.Background(), uuid.New(), row.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestConfirmAlreadyResolved(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	receiver := uuid.New()
	deadline := time.Now().UTC().Add(time.Hour)
	row, _ := repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
		VehicleID:            vehicleID,
		KeyType:              enums.KeyTypeFirstKey,
		ToUserID:             &receiver,
		ConfirmationDeadline: &deadline,
	})

	_, err := svc.Confirm(context.Background(), receiver, row.ID)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), receiver, row.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	_, err = svc.Reject(context.Background(), receiver, row.ID, RejectRequest{Reason: "wrong key"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestConfirmAfterDeadline(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	receiver := uuid.New()
	deadline := time.Now().UTC().Add(-time.Hour)
	row, _ := repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
		VehicleID:            vehicleID,
		KeyType:              enums.KeyTypeFirstKey,
		ToUserID:             &receiver,
		ConfirmationDeadline: &deadline,
	})

	_, err := svc.Confirm(context.Background(), receiver, row.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	// The row itself was never mutated; auto_accepted is display only.
	stored := repo.keyMovements[row.ID]
	assert.False(t, stored.Confirmed)
	assert.False(t, stored.Rejected)
}

func TestConfirmLosesRace(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	receiver := uuid.New()
	deadline := time.Now().UTC().Add(time.Hour)
	row, _ := repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
		VehicleID:            vehicleID,
		KeyType:              enums.KeyTypeFirstKey,
		ToUserID:             &receiver,
		ConfirmationDeadline: &deadline,
	})

	notUpdated := false
	repo.resolveUpdated = &notUpdated

	_, err := svc.Confirm(context.Background(), receiver, row.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestRejectKeepsReason(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	receiver := uuid.New()
	deadline := time.Now().UTC().Add(time.Hour)
	row, _ := repo.CreateDocumentMovement(context.Background(), &models.DocumentMovement{
		VehicleID:            vehicleID,
		DocumentType:         enums.DocumentTypeCirculationPermit,
		ToUserID:             &receiver,
		ConfirmationDeadline: &deadline,
	})

	movement, err := svc.Reject(context.Background(), receiver, row.ID, RejectRequest{Reason: "  never received it "})
	require.NoError(t, err)
	assert.Equal(t, enums.MovementStatusRejected, movement.Status)
	require.NotNil(t, movement.Notes)
	assert.Equal(t, "never received it", *movement.Notes)
}

func TestListPendingMergesKinds(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	receiver := uuid.New()
	deadline := time.Now().UTC().Add(time.Hour)
	older := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
		VehicleID: vehicleID, KeyType: enums.KeyTypeFirstKey,
		ToUserID: &receiver, ConfirmationDeadline: &deadline, CreatedAt: older,
	})
	repo.CreateDocumentMovement(context.Background(), &models.DocumentMovement{
		VehicleID: vehicleID, DocumentType: enums.DocumentTypeTechnicalSheet,
		ToUserID: &receiver, ConfirmationDeadline: &deadline, CreatedAt: newer,
	})
	// Someone else's movement must not show up.
	other := uuid.New()
	repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
		VehicleID: vehicleID, KeyType: enums.KeyTypeSecondKey,
		ToUserID: &other, ConfirmationDeadline: &deadline, CreatedAt: newer,
	})

	movements, err := svc.ListPending(context.Background(), receiver)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, KindDocument, movements[0].Kind)
	assert.Equal(t, KindKey, movements[1].Kind)
}

func TestHistoryPaginates(t *testing.T) {
	repo := newFakeRepo()
	sales, vehicleID := vehicleFor("1234ABC")
	svc := newTestService(t, repo, sales, &fakeNotifier{})

	base := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		repo.CreateKeyMovement(context.Background(), &models.KeyMovement{
			VehicleID: vehicleID, KeyType: enums.KeyTypeFirstKey, CreatedAt: created,
		})
	}

	result, err := svc.History(context.Background(), HistoryParams{Matricula: "1234ABC", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Movements, 2)
	assert.NotEmpty(t, result.Cursor)
	assert.Equal(t, "1234ABC", result.Movements[0].Matricula)
	assert.True(t, result.Movements[0].CreatedAt.After(result.Movements[1].CreatedAt))
}
