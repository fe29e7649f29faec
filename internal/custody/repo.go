package custody

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
	"github.com/jviciana84/dealerops-backend/pkg/pagination"
)

// Resolution is written by the conditional confirm/reject update.
type Resolution struct {
	Confirmed bool
	Rejected  bool
	At        time.Time
	Notes     *string
}

// Repository persists movements and the per-plate holder snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateKeyMovement(ctx context.Context, movement *models.KeyMovement) (*models.KeyMovement, error)
	CreateDocumentMovement(ctx context.Context, movement *models.DocumentMovement) (*models.DocumentMovement, error)
	FindKeyMovement(ctx context.Context, id uuid.UUID) (*models.KeyMovement, error)
	FindDocumentMovement(ctx context.Context, id uuid.UUID) (*models.DocumentMovement, error)
	ResolveKeyMovement(ctx context.Context, id uuid.UUID, res Resolution) (bool, error)
	ResolveDocumentMovement(ctx context.Context, id uuid.UUID, res Resolution) (bool, error)
	ListPendingKeyMovements(ctx context.Context, userID uuid.UUID) ([]models.KeyMovement, error)
	ListPendingDocumentMovements(ctx context.Context, userID uuid.UUID) ([]models.DocumentMovement, error)
	ListKeyMovementsByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.KeyMovement, error)
	ListDocumentMovementsByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.DocumentMovement, error)
	GetKeyHolder(ctx context.Context, plate string, keyType enums.KeyType) (*uuid.UUID, error)
	GetDocumentHolder(ctx context.Context, plate string, documentType enums.DocumentType) (*uuid.UUID, error)
	UpsertKeyHolder(ctx context.Context, plate string, keyType enums.KeyType, holder *uuid.UUID) error
	UpsertDocumentHolder(ctx context.Context, plate string, documentType enums.DocumentType, holder *uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs the custody repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) CreateKeyMovement(ctx context.Context, movement *models.KeyMovement) (*models.KeyMovement, error) {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *gormRepository) CreateDocumentMovement(ctx context.Context, movement *models.DocumentMovement) (*models.DocumentMovement, error) {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *gormRepository) FindKeyMovement(ctx context.Context, id uuid.UUID) (*models.KeyMovement, error) {
	var movement models.KeyMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *gormRepository) FindDocumentMovement(ctx context.Context, id uuid.UUID) (*models.DocumentMovement, error) {
	var movement models.DocumentMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// ResolveKeyMovement flips exactly one of confirmed/rejected. The WHERE
// clause only matches unresolved rows, so the losing side of a concurrent
// confirm/reject race sees zero affected rows instead of overwriting.
func (r *gormRepository) ResolveKeyMovement(ctx context.Context, id uuid.UUID, res Resolution) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.KeyMovement{}).
		Where("id = ? AND confirmed = ? AND rejected = ?", id, false, false).
		Updates(resolutionValues(res))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *gormRepository) ResolveDocumentMovement(ctx context.Context, id uuid.UUID, res Resolution) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.DocumentMovement{}).
		Where("id = ? AND confirmed = ? AND rejected = ?", id, false, false).
		Updates(resolutionValues(res))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func resolutionValues(res Resolution) map[string]any {
	values := map[string]any{}
	if res.Confirmed {
		values["confirmed"] = true
		values["confirmed_at"] = res.At
	}
	if res.Rejected {
		values["rejected"] = true
		values["rejected_at"] = res.At
	}
	if res.Notes != nil {
		values["notes"] = *res.Notes
	}
	return values
}

func (r *gormRepository) ListPendingKeyMovements(ctx context.Context, userID uuid.UUID) ([]models.KeyMovement, error) {
	var movements []models.KeyMovement
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND confirmed = ? AND rejected = ?", userID, false, false).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *gormRepository) ListPendingDocumentMovements(ctx context.Context, userID uuid.UUID) ([]models.DocumentMovement, error) {
	var movements []models.DocumentMovement
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND confirmed = ? AND rejected = ?", userID, false, false).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

func (r *gormRepository) ListKeyMovementsByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.KeyMovement, error) {
	var movements []models.KeyMovement
	query := r.vehicleQuery(ctx, vehicleID, cursor)
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&movements).Error
	return movements, err
}

func (r *gormRepository) ListDocumentMovementsByVehicle(ctx context.Context, vehicleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.DocumentMovement, error) {
	var movements []models.DocumentMovement
	query := r.vehicleQuery(ctx, vehicleID, cursor)
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&movements).Error
	return movements, err
}

func (r *gormRepository) vehicleQuery(ctx context.Context, vehicleID uuid.UUID, cursor *pagination.Cursor) *gorm.DB {
	query := r.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return query
}

// GetKeyHolder returns who currently holds the key, nil for the dealership
// or when the plate has no snapshot yet.
func (r *gormRepository) GetKeyHolder(ctx context.Context, plate string, keyType enums.KeyType) (*uuid.UUID, error) {
	var row models.VehicleKeys
	err := r.db.WithContext(ctx).First(&row, "license_plate = ?", plate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch keyType {
	case enums.KeyTypeFirstKey:
		return row.FirstKeyHolder, nil
	case enums.KeyTypeSecondKey:
		return row.SecondKeyHolder, nil
	case enums.KeyTypeCardKey:
		return row.CardKeyHolder, nil
	default:
		return nil, errors.New("unknown key type")
	}
}

// GetDocumentHolder mirrors GetKeyHolder for documents.
func (r *gormRepository) GetDocumentHolder(ctx context.Context, plate string, documentType enums.DocumentType) (*uuid.UUID, error) {
	var row models.VehicleDocuments
	err := r.db.WithContext(ctx).First(&row, "license_plate = ?", plate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	switch documentType {
	case enums.DocumentTypeTechnicalSheet:
		return row.TechnicalSheetHolder, nil
	case enums.DocumentTypeCirculationPermit:
		return row.CirculationPermitHolder, nil
	default:
		return nil, errors.New("unknown document type")
	}
}

// UpsertKeyHolder writes the current holder snapshot for one key subtype.
// A nil holder puts the key back at the dealership.
func (r *gormRepository) UpsertKeyHolder(ctx context.Context, plate string, keyType enums.KeyType, holder *uuid.UUID) error {
	statusColumn, holderColumn, err := keyColumns(keyType)
	if err != nil {
		return err
	}

	row := models.VehicleKeys{
		ID:              uuid.New(),
		LicensePlate:    plate,
		FirstKeyStatus:  enums.HolderLocationDealership,
		SecondKeyStatus: enums.HolderLocationDealership,
		CardKeyStatus:   enums.HolderLocationDealership,
	}
	applyHolder(&row, statusColumn, holder)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "license_plate"}},
		DoUpdates: clause.Assignments(map[string]any{
			statusColumn: string(holderStatus(holder)),
			holderColumn: holder,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&row).Error
}

// UpsertDocumentHolder mirrors UpsertKeyHolder for documents.
func (r *gormRepository) UpsertDocumentHolder(ctx context.Context, plate string, documentType enums.DocumentType, holder *uuid.UUID) error {
	statusColumn, holderColumn, err := documentColumns(documentType)
	if err != nil {
		return err
	}

	row := models.VehicleDocuments{
		ID:                      uuid.New(),
		LicensePlate:            plate,
		TechnicalSheetStatus:    enums.HolderLocationDealership,
		CirculationPermitStatus: enums.HolderLocationDealership,
	}
	applyDocumentHolder(&row, statusColumn, holder)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "license_plate"}},
		DoUpdates: clause.Assignments(map[string]any{
			statusColumn: string(holderStatus(holder)),
			holderColumn: holder,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&row).Error
}

func holderStatus(holder *uuid.UUID) enums.HolderLocation {
	if holder == nil {
		return enums.HolderLocationDealership
	}
	return enums.HolderLocationDelivered
}

func keyColumns(keyType enums.KeyType) (string, string, error) {
	switch keyType {
	case enums.KeyTypeFirstKey:
		return "first_key_status", "first_key_holder", nil
	case enums.KeyTypeSecondKey:
		return "second_key_status", "second_key_holder", nil
	case enums.KeyTypeCardKey:
		return "card_key_status", "card_key_holder", nil
	default:
		return "", "", errors.New("unknown key type")
	}
}

func documentColumns(documentType enums.DocumentType) (string, string, error) {
	switch documentType {
	case enums.DocumentTypeTechnicalSheet:
		return "technical_sheet_status", "technical_sheet_holder", nil
	case enums.DocumentTypeCirculationPermit:
		return "circulation_permit_status", "circulation_permit_holder", nil
	default:
		return "", "", errors.New("unknown document type")
	}
}

func applyHolder(row *models.VehicleKeys, statusColumn string, holder *uuid.UUID) {
	status := holderStatus(holder)
	switch statusColumn {
	case "first_key_status":
		row.FirstKeyStatus = status
		row.FirstKeyHolder = holder
	case "second_key_status":
		row.SecondKeyStatus = status
		row.SecondKeyHolder = holder
	case "card_key_status":
		row.CardKeyStatus = status
		row.CardKeyHolder = holder
	}
}

func applyDocumentHolder(row *models.VehicleDocuments, statusColumn string, holder *uuid.UUID) {
	status := holderStatus(holder)
	switch statusColumn {
	case "technical_sheet_status":
		row.TechnicalSheetStatus = status
		row.TechnicalSheetHolder = holder
	case "circulation_permit_status":
		row.CirculationPermitStatus = status
		row.CirculationPermitHolder = holder
	}
}
