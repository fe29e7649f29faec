package incentives

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/pagination"
)

type listQuery struct {
	mode    ListMode
	year    int
	month   time.Month
	advisor string
	limit   int
	cursor  *pagination.Cursor
}

// Repository persists incentive rows and the payout configuration.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, incentive *models.Incentive) (*models.Incentive, error)
	FindByID(ctx context.Context, id int64) (*models.Incentive, error)
	ExistsByPlate(ctx context.Context, plate string) (bool, error)
	Update(ctx context.Context, id int64, values map[string]any) error
	UpdateCostsByPlate(ctx context.Context, row CostRow) (bool, error)
	List(ctx context.Context, opts listQuery) ([]models.Incentive, error)
	DeliveryDates(ctx context.Context) ([]time.Time, error)
	DistinctAdvisors(ctx context.Context) ([]string, error)
	GetConfig(ctx context.Context) (*models.IncentiveConfig, error)
	PutConfig(ctx context.Context, input ConfigInput) (*models.IncentiveConfig, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs the incentives repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// WithTx returns a repository bound to the transaction.
func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) Create(ctx context.Context, incentive *models.Incentive) (*models.Incentive, error) {
	if err := r.db.WithContext(ctx).Create(incentive).Error; err != nil {
		return nil, err
	}
	return incentive, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id int64) (*models.Incentive, error) {
	var row models.Incentive
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *gormRepository) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Incentive{}).
		Where("matricula = ?", plate).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) Update(ctx context.Context, id int64, values map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Incentive{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCostsByPlate writes the imported garantia/gastos_360 values for one
// plate. A nil value keeps the column pending.
func (r *gormRepository) UpdateCostsByPlate(ctx context.Context, row CostRow) (bool, error) {
	values := map[string]any{
		"garantia":   row.Garantia,
		"gastos_360": row.Gastos360,
		"updated_at": time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).Model(&models.Incentive{}).
		Where("matricula = ?", row.Matricula).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List returns incentives for the query ordered newest first.
func (r *gormRepository) List(ctx context.Context, opts listQuery) ([]models.Incentive, error) {
	query := r.db.WithContext(ctx).Model(&models.Incentive{})

	switch opts.mode {
	case ListModePending:
		query = query.Where("garantia IS NULL OR gastos_360 IS NULL")
	case ListModeHistorical:
		query = query.Where("garantia IS NOT NULL AND gastos_360 IS NOT NULL")
	}

	if opts.year > 0 {
		start := time.Date(opts.year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		if opts.month > 0 {
			start = time.Date(opts.year, opts.month, 1, 0, 0, 0, 0, time.UTC)
			end = start.AddDate(0, 1, 0)
		}
		query = query.Where("fecha_entrega >= ? AND fecha_entrega < ?", start, end)
	}

	if opts.advisor != "" {
		query = query.Where("asesor = ?", opts.advisor)
	}

	if opts.cursor != nil {
		cursorID, err := strconv.ParseInt(opts.cursor.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor id: %w", err)
		}
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			opts.cursor.CreatedAt, opts.cursor.CreatedAt, cursorID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Incentive
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeliveryDates returns every known delivery date, newest first. Year and
// month facets are derived in Go so the query works on both postgres and
// the sqlite test driver.
func (r *gormRepository) DeliveryDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&models.Incentive{}).
		Where("fecha_entrega IS NOT NULL").
		Order("fecha_entrega DESC").
		Pluck("fecha_entrega", &dates).Error
	return dates, err
}

// DistinctAdvisors returns the advisor aliases present in the table.
func (r *gormRepository) DistinctAdvisors(ctx context.Context) ([]string, error) {
	var advisors []string
	err := r.db.WithContext(ctx).Model(&models.Incentive{}).
		Distinct("asesor").
		Order("asesor ASC").
		Pluck("asesor", &advisors).Error
	return advisors, err
}

// GetConfig returns the single configuration row.
func (r *gormRepository) GetConfig(ctx context.Context) (*models.IncentiveConfig, error) {
	var cfg models.IncentiveConfig
	if err := r.db.WithContext(ctx).Order("id ASC").First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PutConfig creates or replaces the configuration row.
func (r *gormRepository) PutConfig(ctx context.Context, input ConfigInput) (*models.IncentiveConfig, error) {
	var cfg models.IncentiveConfig
	err := r.db.WithContext(ctx).Order("id ASC").First(&cfg).Error
	switch {
	case err == nil:
		cfg.GastosEstructura = input.GastosEstructura
		cfg.PorcentajeMargen = input.PorcentajeMargen
		cfg.ImporteMinimo = input.ImporteMinimo
		if err := r.db.WithContext(ctx).Save(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		cfg = models.IncentiveConfig{
			GastosEstructura: input.GastosEstructura,
			PorcentajeMargen: input.PorcentajeMargen,
			ImporteMinimo:    input.ImporteMinimo,
		}
		if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	default:
		return nil, err
	}
}
