package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jviciana84/dealerops-backend/api/responses"
	"github.com/jviciana84/dealerops-backend/api/validators"
	"github.com/jviciana84/dealerops-backend/internal/extornos"
	pkgerrors "github.com/jviciana84/dealerops-backend/pkg/errors"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
)

// ExtornoCreate opens a refund request.
func ExtornoCreate(svc extornos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req extornos.CreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		extorno, err := svc.Create(r.Context(), requesterID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, extorno)
	}
}

// ExtornoTramitar processes a pending refund and emails the confirm link.
func ExtornoTramitar(svc extornos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid extorno id"))
			return
		}

		result, err := svc.Tramitar(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.EmailWarning != "" {
			responses.WriteSuccessWarning(w, http.StatusOK, result.Extorno, result.EmailWarning)
			return
		}
		responses.WriteSuccess(w, result.Extorno)
	}
}

// ExtornoConfirm redeems the emailed single-use token. The link is opened
// from a mail client, so this endpoint sits outside the JWT middleware.
func ExtornoConfirm(svc extornos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := uuid.Parse(r.URL.Query().Get("token"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "confirmation token required"))
			return
		}

		extorno, err := svc.ConfirmPayment(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, extorno)
	}
}

// ExtornoReject closes a refund request with a reason.
func ExtornoReject(svc extornos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid extorno id"))
			return
		}

		var req extornos.RejectRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		extorno, err := svc.Reject(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, extorno)
	}
}
