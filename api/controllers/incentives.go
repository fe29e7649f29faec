package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jviciana84/dealerops-backend/api/middleware"
	"github.com/jviciana84/dealerops-backend/api/responses"
	"github.com/jviciana84/dealerops-backend/api/validators"
	"github.com/jviciana84/dealerops-backend/internal/incentives"
	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
	"github.com/jviciana84/dealerops-backend/pkg/pagination"
)

const maxImportBody = 1 << 20 // 1 MiB of CSV is far beyond a real upload

func incentiveActor(r *http.Request) (incentives.Actor, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return incentives.Actor{}, false
	}
	return incentives.Actor{
		UserID:     claims.UserID,
		Email:      claims.Email,
		Backoffice: claims.IsBackoffice(),
	}, true
}

// IncentiveCreate registers a delivered vehicle in the payout ledger.
func IncentiveCreate(svc incentives.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req incentives.CreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateFromDelivery(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.EmailWarning != "" {
			responses.WriteSuccessWarning(w, http.StatusCreated, result.Incentive, result.EmailWarning)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Incentive)
	}
}

// IncentiveUpdate applies a whitelisted field mutation.
func IncentiveUpdate(svc incentives.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid incentive id"))
			return
		}

		var req incentives.UpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// IncentiveList serves the pending or historical ledger view.
func IncentiveList(svc incentives.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := incentiveActor(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		params, err := parseIncentiveListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseIncentiveListParams(r *http.Request) (incentives.ListParams, error) {
	params := incentives.ListParams{
		Mode:    incentives.ListModePending,
		Advisor: validators.SanitizeString(r.URL.Query().Get("advisor"), 120),
		Cursor:  r.URL.Query().Get("cursor"),
	}

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", string(incentives.ListModePending):
	case string(incentives.ListModeHistorical):
		params.Mode = incentives.ListModeHistorical
	default:
		return params, pkgerrors.New(pkgerrors.CodeValidation, "mode must be pending or historical")
	}

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return params, err
	}
	params.Limit = limit

	year, err := validators.ParseQueryInt(r, "year", 0, 0, 2200)
	if err != nil {
		return params, err
	}
	params.Year = year

	month, err := validators.ParseQueryInt(r, "month", 0, 0, 12)
	if err != nil {
		return params, err
	}
	params.Month = time.Month(month)
	if params.Month > 0 && params.Year == 0 {
		return params, pkgerrors.New(pkgerrors.CodeValidation, "month filter requires year")
	}
	return params, nil
}

// IncentiveFacets lists the distinct filter values for the ledger views.
func IncentiveFacets(svc incentives.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facets, err := svc.Facets(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, facets)
	}
}

// IncentiveImportCosts ingests the semicolon-separated costs CSV.
func IncentiveImportCosts(svc incentives.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, "text/csv") && !strings.HasPrefix(contentType, "text/plain") {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "expected a text/csv body"))
			return
		}

		body := http.MaxBytesReader(w, r.Body, maxImportBody)
		result, err := svc.ImportCosts(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// IncentiveConfigGet returns the payout configuration.
func IncentiveConfigGet(svc incentives.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.GetConfig(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

// IncentiveConfigPut replaces the payout configuration.
func IncentiveConfigPut(svc incentives.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input incentives.ConfigInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.PutConfig(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}
