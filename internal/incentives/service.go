package incentives

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/internal/advisors"
	"github.com/jviciana84/dealerops-backend/internal/vehicles"
	"github.com/jviciana84/dealerops-backend/pkg/db/models"
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
	IncentiveCreated(ctx context.Context, incentive *models.Incentive) error
}

// Actor identifies the authenticated caller for scoping decisions.
type Actor struct {
	UserID     uuid.UUID
	Email      string
	Backoffice bool
}

// Service exposes the incentive payout workflow.
type Service interface {
	CreateFromDelivery(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Item, error)
	List(ctx context.Context, actor Actor, params ListParams) (*ListResult, error)
	Facets(ctx context.Context) (*Facets, error)
	ImportCosts(ctx context.Context, r io.Reader) (*ImportResult, error)
	GetConfig(ctx context.Context) (*models.IncentiveConfig, error)
	PutConfig(ctx context.Context, input ConfigInput) (*models.IncentiveConfig, error)
}

type service struct {
	repo       Repository
	sales      salesRepository
	deliveries vehicles.DeliveryRepository
	resolver   advisors.Resolver
	notify     notifier
	tx         txRunner
	logg       *logger.Logger
}

// NewService builds the incentives service.
func NewService(
	repo Repository,
	sales salesRepository,
	deliveries vehicles.DeliveryRepository,
	resolver advisors.Resolver,
	notify notifier,
	tx txRunner,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("incentives repository required")
	}
	if sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if deliveries == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("advisor resolver required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		sales:      sales,
		deliveries: deliveries,
		resolver:   resolver,
		notify:     notify,
		tx:         tx,
		logg:       logg,
	}, nil
}

// CreateFromDelivery registers a delivered vehicle in the payout ledger. The
// sale record supplies the price, payment method and registration date; the
// configuration row is snapshotted so later config edits never rewrite
// history. The delivery row is flagged in the same transaction.
func (s *service) CreateFromDelivery(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	plate := vehicles.NormalizePlate(req.Matricula)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matricula is required")
	}
	ctx = s.logg.WithPlate(ctx, plate)

	exists, err := s.repo.ExistsByPlate(ctx, plate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing incentive")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an incentive already exists for this matricula")
	}

	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "incentives configuration is missing; create it before registering incentives")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load incentives configuration")
	}

	incentive := &models.Incentive{
		Matricula:        plate,
		Modelo:           strings.TrimSpace(req.Modelo),
		Asesor:           strings.TrimSpace(req.Asesor),
		OR:               strings.TrimSpace(req.OR),
		FechaEntrega:     req.FechaEntrega,
		GastosEstructura: cfg.GastosEstructura,
		ImporteMinimo:    cfg.ImporteMinimo,
		PorcentajeMargen: cfg.PorcentajeMargen,
	}

	vehicle, err := s.sales.FindByPlate(ctx, plate)
	switch {
	case err == nil:
		incentive.PrecioVenta = vehicle.Price
		incentive.FormaPago = vehicle.PaymentMethod
		incentive.Financiado = isFinanced(vehicle.PaymentMethod)
		incentive.Garantia = ClassifyWarranty(req.FechaEntrega, vehicle.RegistrationDate, req.Modelo)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No sale record yet. The row is created without prices and the
		// warranty stays pending until the costs arrive.
		s.logg.Warn(ctx, "no sales_vehicles record for delivered vehicle")
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up sale record")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, incentive); err != nil {
			return err
		}
		return s.deliveries.WithTx(tx).MarkSentToIncentives(ctx, plate)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create incentive")
	}

	result := &CreateResult{Incentive: incentive}
	if err := s.notify.IncentiveCreated(ctx, incentive); err != nil {
		s.logg.Error(ctx, "incentive created email failed", err)
		result.EmailWarning = "incentive registered but the notification email could not be sent"
	}
	return result, nil
}

// Update applies a whitelisted field mutation and returns the row with its
// recomputed breakdown.
func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Item, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid incentive id")
	}
	if req.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}

	values := map[string]any{}
	if req.Garantia != nil {
		values["garantia"] = *req.Garantia
	}
	if req.Gastos360 != nil {
		values["gastos_360"] = *req.Gastos360
	}
	if req.PrecioCompra != nil {
		values["precio_compra"] = *req.PrecioCompra
	}
	if req.Otros != nil {
		values["otros"] = *req.Otros
	}
	if req.OtrosObservaciones != nil {
		values["otros_observaciones"] = *req.OtrosObservaciones
	}
	if req.Antiguedad != nil {
		values["antiguedad"] = *req.Antiguedad
	}
	if req.Financiado != nil {
		values["financiado"] = *req.Financiado
	}
	if req.Tramitado != nil {
		values["tramitado"] = *req.Tramitado
	}

	if err := s.repo.Update(ctx, id, values); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "incentive not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update incentive")
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload incentive")
	}
	item := toItem(*row)
	return &item, nil
}

// List returns incentives with their computed breakdowns. Callers outside
// the back office only ever see rows for their own resolved advisor alias.
func (s *service) List(ctx context.Context, actor Actor, params ListParams) (*ListResult, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	advisor := strings.TrimSpace(params.Advisor)
	if !actor.Backoffice {
		resolution, err := s.resolver.Resolve(ctx, actor.UserID, actor.Email)
		if err != nil {
			if errors.Is(err, advisors.ErrUnmapped) {
				// Advisors without an alias see an empty ledger rather
				// than another advisor's rows.
				return &ListResult{Items: []Item{}}, nil
			}
			return nil, err
		}
		advisor = resolution.Alias
	}

	rows, err := s.repo.List(ctx, listQuery{
		mode:    params.Mode,
		year:    params.Year,
		month:   params.Month,
		advisor: advisor,
		limit:   pagination.LimitWithBuffer(params.Limit),
		cursor:  cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list incentives")
	}

	result := &ListResult{Items: make([]Item, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.Cursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        strconv.FormatInt(last.ID, 10),
		})
	}
	for _, row := range rows {
		result.Items = append(result.Items, toItem(row))
	}
	return result, nil
}

// Facets returns the distinct years, months and advisor aliases the listing
// can filter on.
func (s *service) Facets(ctx context.Context) (*Facets, error) {
	dates, err := s.repo.DeliveryDates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery dates")
	}
	advisorList, err := s.repo.DistinctAdvisors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load advisors")
	}

	facets := &Facets{
		Years:    make([]int, 0, 4),
		Months:   make([]int, 0, 12),
		Advisors: advisorList,
	}
	seenYears := map[int]struct{}{}
	seenMonths := map[int]struct{}{}
	for _, d := range dates {
		d = d.UTC()
		if _, ok := seenYears[d.Year()]; !ok {
			seenYears[d.Year()] = struct{}{}
			facets.Years = append(facets.Years, d.Year())
		}
		month := int(d.Month())
		if _, ok := seenMonths[month]; !ok {
			seenMonths[month] = struct{}{}
			facets.Months = append(facets.Months, month)
		}
	}
	sort.Ints(facets.Months)
	return facets, nil
}

// ImportCosts applies a semicolon-separated costs CSV row by row. Rows for
// unknown plates are reported back instead of failing the whole upload.
func (s *service) ImportCosts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := ParseCostsCSV(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, row := range rows {
		updated, err := s.repo.UpdateCostsByPlate(ctx, row)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply imported costs")
		}
		if !updated {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: no incentive for this matricula", row.Matricula))
			continue
		}
		result.Updated++
	}
	return result, nil
}

// GetConfig returns the payout configuration.
func (s *service) GetConfig(ctx context.Context) (*models.IncentiveConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "incentives configuration not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load incentives configuration")
	}
	return cfg, nil
}

// PutConfig writes the payout configuration. Existing incentives keep the
// values snapshotted at their creation time.
func (s *service) PutConfig(ctx context.Context, input ConfigInput) (*models.IncentiveConfig, error) {
	if input.GastosEstructura.IsNegative() || input.PorcentajeMargen.IsNegative() || input.ImporteMinimo.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "configuration values must not be negative")
	}
	cfg, err := s.repo.PutConfig(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save incentives configuration")
	}
	return cfg, nil
}

func toItem(row models.Incentive) Item {
	return Item{
		Incentive: row,
		Breakdown: Calculate(CalcInputs{
			PrecioVenta:      row.PrecioVenta,
			PrecioCompra:     row.PrecioCompra,
			GastosEstructura: row.GastosEstructura,
			Garantia:         row.Garantia,
			Gastos360:        row.Gastos360,
			PorcentajeMargen: row.PorcentajeMargen,
			ImporteMinimo:    row.ImporteMinimo,
			Financiado:       row.Financiado,
			Antiguedad:       row.Antiguedad,
			Otros:            row.Otros,
		}).Rounded(),
	}
}

func isFinanced(paymentMethod string) bool {
	return strings.Contains(strings.ToLower(paymentMethod), "financ")
}
