/**
 * @description
 * This file sets up the HTTP router for the disbursement-service. It defines the
 * API endpoints, associates them with their corresponding handlers, and applies
 * the standard middleware stack. The dashboard is a browser client, so CORS is
 * wide open; there is no authentication by contract, this is a demo surface.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser dashboard.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes creates and returns the router for the disbursement service.
func Routes(h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/kpis", h.KPIsHandler)

		r.Get("/beneficiaries", h.ListBeneficiariesHandler)
		r.Get("/beneficiaries/{id}", h.GetBeneficiaryHandler)
		r.Post("/beneficiaries/{id}/hold", h.HoldStageHandler)
		r.Get("/beneficiaries/{id}/payments", h.BeneficiaryPaymentsHandler)

		r.Get("/payments", h.ListPaymentsHandler)

		r.Get("/connectors", h.ListConnectorsHandler)
		r.Post("/connectors/{id}/enable", h.EnableConnectorHandler)
		r.Post("/connectors/{id}/disable", h.DisableConnectorHandler)
		r.Put("/connectors/priority", h.ReorderConnectorsHandler)

		r.Post("/transfers/quote", h.QuoteTransferHandler)
		r.Post("/transfers", h.InitiateTransferHandler)
		r.Get("/transfers/{id}", h.GetTransferHandler)

		r.Get("/fraud-signals", h.ListFraudSignalsHandler)
		r.Post("/fraud-signals/{id}/approve", h.ApproveFraudSignalHandler)
		r.Post("/fraud-signals/{id}/hold", h.HoldFraudSignalHandler)
		r.Post("/fraud-signals/{id}/request-docs", h.RequestDocsFraudSignalHandler)

		r.Get("/disaster", h.DisasterViewHandler)

		r.Post("/nudges", h.SendNudgeHandler)
		r.Get("/nudges", h.ListNudgesHandler)

		r.Get("/settings", h.GetSettingsHandler)
		r.Put("/settings", h.UpdateSettingsHandler)
	})

	return r
}
