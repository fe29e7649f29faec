package extornos

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
)

type fakeRepo struct {
	rows map[uuid.UUID]*models.Extorno
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]*models.Extorno{}}
}

func (f *fakeRepo) Create(ctx context.Context, extorno *models.Extorno) (*models.Extorno, error) {
	if extorno.ID == uuid.Nil {
		extorno.ID = uuid.New()
	}
	f.rows[extorno.ID] = extorno
	return extorno, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Extorno, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepo) FindByToken(ctx context.Context, token uuid.UUID) (*models.Extorno, error) {
	for _, row := range f.rows {
		if row.ConfirmationToken != nil && *row.ConfirmationToken == token {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) MarkTramitado(ctx context.Context, id uuid.UUID, token uuid.UUID, at time.Time) (bool, error) {
	row, ok := f.rows[id]
	if !ok || row.Estado != enums.ExtornoStatusPendiente {
		return false, nil
	}
	row.Estado = enums.ExtornoStatusTramitado
	row.ConfirmationToken = &token
	row.TramitadoAt = &at
	return true, nil
}

func (f *fakeRepo) MarkRealizado(ctx context.Context, id uuid.UUID, token uuid.UUID, at time.Time) (bool, error) {
	row, ok := f.rows[id]
	if !ok || row.Estado != enums.ExtornoStatusTramitado {
		return false, nil
	}
	if row.ConfirmationToken == nil || *row.ConfirmationToken != token {
		return false, nil
	}
	row.Estado = enums.ExtornoStatusRealizado
	row.ConfirmationToken = nil
	row.RealizadoAt = &at
	return true, nil
}

func (f *fakeRepo) MarkRechazado(ctx context.Context, id uuid.UUID, motivo string, at time.Time) (bool, error) {
	row, ok := f.rows[id]
	if !ok || row.Estado.IsTerminal() {
		return false, nil
	}
	row.Estado = enums.ExtornoStatusRechazado
	row.ConfirmationToken = nil
	row.MotivoRechazo = &motivo
	row.RechazadoAt = &at
	return true, nil
}

type fakeNotifier struct {
	err    error
	tokens []uuid.UUID
}

func (f *fakeNotifier) ExtornoConfirmationRequested(ctx context.Context, extorno *models.Extorno, token uuid.UUID) error {
	f.tokens = append(f.tokens, token)
	return f.err
}

func newTestService(t *testing.T, repo *fakeRepo, notify *fakeNotifier) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, notify, logg)
	require.NoError(t, err)
	return svc
}

func createPending(t *testing.T, svc Service) *models.Extorno {
	t.Helper()
	extorno, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		Matricula:    "1234abc",
		Cliente:      "Maria Gomez",
		NumeroCuenta: "ES9121000418450200051332",
		Concepto:     "double charge on delivery",
		Importe:      decimal.NewFromInt(250),
	})
	require.NoError(t, err)
	return extorno
}

func TestCreateStartsPendiente(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeNotifier{})

	extorno := createPending(t, svc)
	assert.Equal(t, enums.ExtornoStatusPendiente, extorno.Estado)
	assert.Equal(t, "1234ABC", extorno.Matricula)
	assert.Nil(t, extorno.ConfirmationToken)
}

func TestCreateRejectsNonPositiveImporte(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeNotifier{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		Matricula: "1234ABC", Cliente: "x", NumeroCuenta: "ES91", Concepto: "c",
		Importe: decimal.Zero,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestTramitarMintsTokenAndEmails(t *testing.T) {
	repo := newFakeRepo()
	notify := &fakeNotifier{}
	svc := newTestService(t, repo, notify)
	extorno := createPending(t, svc)

	result, err := svc.Tramitar(context.Background(), extorno.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ExtornoStatusTramitado, result.Extorno.Estado)
	require.NotNil(t, result.Extorno.ConfirmationToken)
	require.Len(t, notify.tokens, 1)
	assert.Equal(t, *result.Extorno.ConfirmationToken, notify.tokens[0])
	assert.Empty(t, result.EmailWarning)
}

func TestTramitarTwiceConflicts(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeNotifier{})
	extorno := createPending(t, svc)

	_, err := svc.Tramitar(context.Background(), extorno.ID)
	require.NoError(t, err)

	_, err = svc.Tramitar(context.Background(), extorno.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestTramitarEmailFailureIsWarningOnly(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeNotifier{err: assert.AnError})
	extorno := createPending(t, svc)

	result, err := svc.Tramitar(context.Background(), extorno.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.EmailWarning)
	assert.Equal(t, enums.ExtornoStatusTramitado, result.Extorno.Estado)
}

func TestConfirmPaymentConsumesToken(t *testing.T) {
	notify := &fakeNotifier{}
	svc := newTestService(t, newFakeRepo(), notify)
	extorno := createPending(t, svc)

	_, err := svc.Tramitar(context.Background(), extorno.ID)
	require.NoError(t, err)
	token := notify.tokens[0]

	confirmed, err := svc.ConfirmPayment(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, enums.ExtornoStatusRealizado, confirmed.Estado)
	assert.Nil(t, confirmed.ConfirmationToken)
	require.NotNil(t, confirmed.RealizadoAt)

	// The token is single use.
	_, err = svc.ConfirmPayment(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestConfirmPaymentUnknownToken(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeNotifier{})

	_, err := svc.ConfirmPayment(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRejectFromPendienteAndTramitado(t *testing.T) {
	notify := &fakeNotifier{}
	svc := newTestService(t, newFakeRepo(), notify)

	pending := createPending(t, svc)
	rejected, err := svc.Reject(context.Background(), pending.ID, RejectRequest{Motivo: "duplicate request"})
	require.NoError(t, err)
	assert.Equal(t, enums.ExtornoStatusRechazado, rejected.Estado)
	require.NotNil(t, rejected.MotivoRechazo)
	assert.Equal(t, "duplicate request", *rejected.MotivoRechazo)

	processed := createPending(t, svc)
	_, err = svc.Tramitar(context.Background(), processed.ID)
	require.NoError(t, err)
	rejected, err = svc.Reject(context.Background(), processed.ID, RejectRequest{Motivo: "account mismatch"})
	require.NoError(t, err)
	assert.Equal(t, enums.ExtornoStatusRechazado, rejected.Estado)
	// Rejection voids the outstanding token.
	assert.Nil(t, rejected.ConfirmationToken)
	_, err = svc.ConfirmPayment(context.Background(), notify.tokens[len(notify.tokens)-1])
	require.Error(t, err)
}

func TestRejectTerminalConflicts(t *testing.T) {
	notify := &fakeNotifier{}
	svc := newTestService(t, newFakeRepo(), notify)
	extorno := createPending(t, svc)

	_, err := svc.Tramitar(context.Background(), extorno.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(context.Background(), notify.tokens[0])
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), extorno.ID, RejectRequest{Motivo: "too late"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestRejectRequiresMotivo(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeNotifier{})
	extorno := createPending(t, svc)

	_, err := svc.Reject(context.Background(), extorno.ID, RejectRequest{Motivo: "   "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
