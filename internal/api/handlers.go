/**
 * @description
 * This file contains the HTTP handlers for the disbursement-service's API
 * endpoints. Handlers parse incoming requests, call the application service, and
 * write the JSON response. They act as the bridge between the web layer and the
 * business logic layer.
 *
 * Status mapping: refusals surface as 400/404/422; a compliance HOLD is a 409
 * with a machine-readable reason so the dashboard can offer the override flow;
 * anything unexpected is a 500.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mchkit/disbursement-service/internal/app"
	"github.com/mchkit/disbursement-service/internal/domain"
	"github.com/mchkit/disbursement-service/internal/orchestrator"
	"github.com/mchkit/disbursement-service/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

// quoteRequest is the body for POST /api/transfers/quote.
type quoteRequest struct {
	BeneficiaryID string `json:"beneficiary_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Override      bool   `json:"override"`
}

// initiateTransferRequest is the body for POST /api/transfers.
type initiateTransferRequest struct {
	BeneficiaryID string `json:"beneficiary_id"`
	ConnectorID   string `json:"connector_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Purpose       string `json:"purpose"`
	Override      bool   `json:"override"`
}

// reorderRequest is the body for PUT /api/connectors/priority.
type reorderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

// nudgeRequest is the body for POST /api/nudges.
type nudgeRequest struct {
	BeneficiaryID string `json:"beneficiary_id"`
	Template      string `json:"template"`
	Channel       string `json:"channel"`
}

func (h *Handlers) KPIsHandler(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.DashboardKPIs(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, kpis)
}

func (h *Handlers) ListBeneficiariesHandler(w http.ResponseWriter, r *http.Request) {
	opts := store.BeneficiaryListOptions{
		District:    r.URL.Query().Get("district"),
		Eligibility: r.URL.Query().Get("eligibility"),
		RiskBand:    r.URL.Query().Get("risk"),
	}
	beneficiaries, err := h.service.ListBeneficiaries(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, beneficiaries)
}

func (h *Handlers) GetBeneficiaryHandler(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBeneficiary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) HoldStageHandler(w http.ResponseWriter, r *http.Request) {
	stage, err := h.service.HoldNextStage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stage)
}

func (h *Handlers) BeneficiaryPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListBeneficiaryPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payments)
}

func (h *Handlers) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	payments, err := h.service.ListPayments(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payments)
}

func (h *Handlers) ListConnectorsHandler(w http.ResponseWriter, r *http.Request) {
	connectors, err := h.service.ListConnectors(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, connectors)
}

func (h *Handlers) EnableConnectorHandler(w http.ResponseWriter, r *http.Request) {
	h.toggleConnector(w, r, true)
}

func (h *Handlers) DisableConnectorHandler(w http.ResponseWriter, r *http.Request) {
	h.toggleConnector(w, r, false)
}

func (h *Handlers) toggleConnector(w http.ResponseWriter, r *http.Request, enabled bool) {
	connector, err := h.service.SetConnectorEnabled(r.Context(), chi.URLParam(r, "id"), enabled)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, connector)
}

func (h *Handlers) ReorderConnectorsHandler(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.ReorderConnectors(r.Context(), req.OrderedIDs); err != nil {
		h.writeServiceError(w, err)
		return
	}
	connectors, err := h.service.ListConnectors(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, connectors)
}

func (h *Handlers) QuoteTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	quote, err := h.service.QuoteTransfer(r.Context(), req.BeneficiaryID, req.Amount, req.Currency, req.Override)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

func (h *Handlers) InitiateTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req initiateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	transfer, err := h.service.InitiateTransfer(r.Context(), req.BeneficiaryID, req.ConnectorID, req.Amount, req.Currency, req.Purpose, req.Override)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, transfer)
}

func (h *Handlers) GetTransferHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid transfer ID format")
		return
	}
	transfer, err := h.service.GetTransfer(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, transfer)
}

func (h *Handlers) ListFraudSignalsHandler(w http.ResponseWriter, r *http.Request) {
	signals, err := h.service.ListFraudSignals(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, signals)
}

func (h *Handlers) ApproveFraudSignalHandler(w http.ResponseWriter, r *http.Request) {
	h.reviewFraudSignal(w, r, domain.ReviewApproved)
}

func (h *Handlers) HoldFraudSignalHandler(w http.ResponseWriter, r *http.Request) {
	h.reviewFraudSignal(w, r, domain.ReviewHeld)
}

func (h *Handlers) RequestDocsFraudSignalHandler(w http.ResponseWriter, r *http.Request) {
	h.reviewFraudSignal(w, r, domain.ReviewDocsRequested)
}

func (h *Handlers) reviewFraudSignal(w http.ResponseWriter, r *http.Request, status domain.FraudReviewStatus) {
	signal, err := h.service.ReviewFraudSignal(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, signal)
}

func (h *Handlers) DisasterViewHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.DisasterView(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) SendNudgeHandler(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	record, err := h.service.SendNudge(r.Context(), req.BeneficiaryID, req.Template, domain.NudgeChannel(req.Channel))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

func (h *Handlers) ListNudgesHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListNudges(r.Context(), r.URL.Query().Get("beneficiary_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handlers) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *Handlers) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req app.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

// writeServiceError maps service-layer errors onto HTTP status codes.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrBeneficiaryNotFound),
		errors.Is(err, store.ErrConnectorNotFound),
		errors.Is(err, store.ErrFraudSignalNotFound),
		errors.Is(err, orchestrator.ErrTransferNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrComplianceHold):
		h.writeJSON(w, http.StatusConflict, map[string]string{
			"error":  err.Error(),
			"reason": "COMPLIANCE_HOLD",
		})
	case errors.Is(err, store.ErrNoDueStage):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrAmountInvalid),
		errors.Is(err, app.ErrInvalidSettings),
		errors.Is(err, app.ErrUnknownTemplate),
		errors.Is(err, app.ErrUnknownChannel):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrKYCFailed),
		errors.Is(err, app.ErrKYCOverrideRequired),
		errors.Is(err, app.ErrNoRouteAvailable),
		errors.Is(err, app.ErrConnectorNotUsable):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
