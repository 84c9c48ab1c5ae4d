/**
 * @description
 * This file contains the application service for the disbursement dashboard.
 * It orchestrates the use cases behind every API endpoint: quoting and
 * initiating transfers, the beneficiary register, payments and KPIs, the fraud
 * review queue, the disaster view, nudges, and operator settings.
 *
 * Key decisions:
 * - Refusals are synchronous sentinel errors so the API layer can map them with
 *   errors.Is. A HOLD compliance decision refuses initiation; the operator
 *   re-submits with an explicit override acknowledgment. A BLOCKED decision is
 *   NOT refused at the door: the transfer is created and fails inside the
 *   pipeline's risk check, so the event log shows the rejection.
 * - Quote risk is scored against the recommended route's connector type, since
 *   the ceiling-proximity bump depends on the rail.
 *
 * @dependencies
 * - internal/fx, internal/routing, internal/risk: the pure core functions.
 * - internal/orchestrator: drives initiated transfers to a terminal state.
 * - internal/store: repository interface for all reads and writes.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mchkit/disbursement-service/internal/domain"
	"github.com/mchkit/disbursement-service/internal/fx"
	"github.com/mchkit/disbursement-service/internal/orchestrator"
	"github.com/mchkit/disbursement-service/internal/risk"
	"github.com/mchkit/disbursement-service/internal/routing"
	"github.com/mchkit/disbursement-service/internal/store"
)

var (
	ErrAmountInvalid       = errors.New("amount must be positive")
	ErrKYCFailed           = errors.New("beneficiary KYC failed")
	ErrKYCOverrideRequired = errors.New("beneficiary KYC pending, operator override required")
	ErrNoRouteAvailable    = errors.New("no payout route available for this amount")
	ErrConnectorNotUsable  = errors.New("connector cannot route this transfer")
	ErrComplianceHold      = errors.New("transfer held for compliance review")
	ErrUnknownTemplate     = errors.New("unknown nudge template")
	ErrUnknownChannel      = errors.New("unknown nudge channel")
	ErrInvalidSettings     = errors.New("invalid settings")
)

// settlementModes are the accepted values for the settlement mode setting.
var settlementModes = map[string]bool{"RTGS": true, "NEFT": true, "IMPS": true}

// Quote is the pre-initiation preview returned to the operator.
type Quote struct {
	Converted fx.Converted              `json:"converted"`
	Routes    []routing.RankedRoute     `json:"routes"`
	RiskScore float64                   `json:"risk_score"`
	Decision  domain.ComplianceDecision `json:"compliance_decision"`
}

// KPIs is the dashboard headline summary.
type KPIs struct {
	TotalBeneficiaries   int     `json:"total_beneficiaries"`
	EligibleCount        int     `json:"eligible_count"`
	IneligibleCount      int     `json:"ineligible_count"`
	HeldStages           int     `json:"held_stages"`
	TotalDisbursed       int64   `json:"total_disbursed"`
	PaymentsCount        int     `json:"payments_count"`
	CreditInstructionPct float64 `json:"credit_instruction_pct"`
}

// DisasterEntry is one flood-affected beneficiary with their outstanding dues.
type DisasterEntry struct {
	Beneficiary domain.Beneficiary `json:"beneficiary"`
	DueTotal    int64              `json:"due_total"`
	FastTrack   bool               `json:"fast_track"`
}

// Settings is the operator-editable configuration surface.
type Settings struct {
	StageAmounts   domain.StageAmounts `json:"stage_amounts"`
	SettlementMode string              `json:"settlement_mode"`
}

// Service is the application service for the disbursement dashboard.
type Service struct {
	repo      store.Repository
	engine    *orchestrator.Engine
	tables    domain.Tables
	templates domain.NudgeTemplates
}

// NewService creates the application service.
func NewService(repo store.Repository, engine *orchestrator.Engine, tables domain.Tables, templates domain.NudgeTemplates) *Service {
	return &Service{repo: repo, engine: engine, tables: tables, templates: templates}
}

// gate applies the KYC gate shared by quoting and initiation.
func gate(b *domain.Beneficiary, override bool) error {
	switch b.KYCStatus {
	case domain.KYCFailed:
		return ErrKYCFailed
	case domain.KYCPending:
		if !override {
			return ErrKYCOverrideRequired
		}
	}
	return nil
}

// QuoteTransfer previews a transfer: FX conversion, ranked routes, composite
// risk score and the compliance decision for the recommended route.
func (s *Service) QuoteTransfer(ctx context.Context, beneficiaryID string, amount int64, currency string, override bool) (*Quote, error) {
	if amount <= 0 {
		return nil, ErrAmountInvalid
	}
	b, err := s.repo.FindBeneficiaryByID(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	if err := gate(b, override); err != nil {
		return nil, err
	}

	converted := fx.Convert(amount, currency, s.tables.FXRates)
	if !converted.RateKnown {
		log.Printf("level=warn component=app msg=\"unknown FX rate, defaulting to 1.0\" currency=%s", currency)
	}

	connectors, err := s.repo.ListConnectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list connectors for quote: %w", err)
	}
	routes := routing.Select(converted.AmountINR, connectors, s.tables.Limits)
	if len(routes) == 0 {
		return nil, ErrNoRouteAvailable
	}

	score := risk.Score(b, converted.AmountINR, routes[0].Connector.Type, s.tables.Limits)
	decision := risk.Decide(b, score, s.tables.Thresholds)

	return &Quote{Converted: converted, Routes: routes, RiskScore: score, Decision: decision}, nil
}

// InitiateTransfer creates a transfer on the chosen connector and starts the
// payout pipeline. A HOLD decision refuses unless override is set; BLOCKED
// proceeds and fails inside the pipeline with a recorded reason.
func (s *Service) InitiateTransfer(ctx context.Context, beneficiaryID, connectorID string, amount int64, currency, purpose string, override bool) (*domain.Transfer, error) {
	if amount <= 0 {
		return nil, ErrAmountInvalid
	}
	b, err := s.repo.FindBeneficiaryByID(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	if err := gate(b, override); err != nil {
		return nil, err
	}

	connector, err := s.repo.FindConnectorByID(ctx, connectorID)
	if err != nil {
		return nil, err
	}

	converted := fx.Convert(amount, currency, s.tables.FXRates)
	if !converted.RateKnown {
		log.Printf("level=warn component=app msg=\"unknown FX rate, defaulting to 1.0\" currency=%s", currency)
	}

	if !connector.Routable() {
		return nil, ErrConnectorNotUsable
	}
	if limit, ok := s.tables.Limits[connector.Type]; ok && converted.AmountINR > limit {
		return nil, ErrConnectorNotUsable
	}

	score := risk.Score(b, converted.AmountINR, connector.Type, s.tables.Limits)
	decision := risk.Decide(b, score, s.tables.Thresholds)
	if decision == domain.DecisionHold && !override {
		return nil, ErrComplianceHold
	}

	t := &domain.Transfer{
		ID:            uuid.New(),
		BeneficiaryID: beneficiaryID,
		Amount:        amount,
		Currency:      currency,
		AmountINR:     converted.AmountINR,
		Connector:     *connector,
		Purpose:       purpose,
		RiskScore:     score,
		Decision:      decision,
	}
	s.engine.Start(t)
	log.Printf("level=info component=app msg=\"transfer initiated\" transfer_id=%s beneficiary_id=%s connector_id=%s amount_inr=%d decision=%s", t.ID, beneficiaryID, connectorID, converted.AmountINR, decision)

	return s.engine.Get(t.ID)
}

// GetTransfer returns a polling snapshot of a transfer.
func (s *Service) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	return s.engine.Get(id)
}

// ListBeneficiaries returns the filtered beneficiary register.
func (s *Service) ListBeneficiaries(ctx context.Context, opts store.BeneficiaryListOptions) ([]domain.Beneficiary, error) {
	return s.repo.ListBeneficiaries(ctx, opts)
}

// GetBeneficiary returns one beneficiary profile.
func (s *Service) GetBeneficiary(ctx context.Context, id string) (*domain.Beneficiary, error) {
	return s.repo.FindBeneficiaryByID(ctx, id)
}

// HoldNextStage moves a beneficiary's first DUE stage to HELD.
func (s *Service) HoldNextStage(ctx context.Context, beneficiaryID string) (*domain.StageRecord, error) {
	stage, err := s.repo.HoldNextDueStage(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"stage held\" beneficiary_id=%s stage=%q", beneficiaryID, stage.Stage)
	return stage, nil
}

// ListPayments returns settled payments, newest first.
func (s *Service) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx, limit)
}

// ListBeneficiaryPayments returns one beneficiary's settled payments.
func (s *Service) ListBeneficiaryPayments(ctx context.Context, beneficiaryID string) ([]domain.Payment, error) {
	if _, err := s.repo.FindBeneficiaryByID(ctx, beneficiaryID); err != nil {
		return nil, err
	}
	return s.repo.ListPaymentsByBeneficiary(ctx, beneficiaryID)
}

// DashboardKPIs computes the headline summary over the register and the
// payment ledger.
func (s *Service) DashboardKPIs(ctx context.Context) (*KPIs, error) {
	beneficiaries, err := s.repo.ListBeneficiaries(ctx, store.BeneficiaryListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list beneficiaries for kpis: %w", err)
	}
	payments, err := s.repo.ListPayments(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list payments for kpis: %w", err)
	}

	k := &KPIs{TotalBeneficiaries: len(beneficiaries), PaymentsCount: len(payments)}
	for i := range beneficiaries {
		if beneficiaries[i].Eligible() {
			k.EligibleCount++
		} else {
			k.IneligibleCount++
		}
		for _, stage := range beneficiaries[i].Timeline {
			if stage.Status == domain.StageHeld {
				k.HeldStages++
			}
		}
	}

	withInstruction := 0
	for _, p := range payments {
		k.TotalDisbursed += p.Amount
		if !p.Path.CreditInstructionAt.IsZero() {
			withInstruction++
		}
	}
	if len(payments) > 0 {
		k.CreditInstructionPct = float64(withInstruction) / float64(len(payments)) * 100
	}
	return k, nil
}

// ListFraudSignals returns the fraud review queue.
func (s *Service) ListFraudSignals(ctx context.Context) ([]domain.FraudSignal, error) {
	return s.repo.ListFraudSignals(ctx)
}

// ReviewFraudSignal records the operator's disposition of a signal.
func (s *Service) ReviewFraudSignal(ctx context.Context, signalID string, status domain.FraudReviewStatus) (*domain.FraudSignal, error) {
	signal, err := s.repo.UpdateFraudReviewStatus(ctx, signalID, status)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"fraud signal reviewed\" signal_id=%s status=%s", signalID, status)
	return signal, nil
}

// DisasterView lists flood-affected beneficiaries with their outstanding due
// totals. Eligible entries are marked for fast-track processing.
func (s *Service) DisasterView(ctx context.Context) ([]DisasterEntry, error) {
	beneficiaries, err := s.repo.ListBeneficiaries(ctx, store.BeneficiaryListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list beneficiaries for disaster view: %w", err)
	}

	out := make([]DisasterEntry, 0)
	for i := range beneficiaries {
		b := beneficiaries[i]
		if !b.HasDisasterFlag("flood_affected") {
			continue
		}
		var due int64
		for _, stage := range b.Timeline {
			if stage.Status == domain.StageDue {
				due += stage.Amount
			}
		}
		out = append(out, DisasterEntry{
			Beneficiary: b,
			DueTotal:    due,
			FastTrack:   b.Eligible() && due > 0,
		})
	}
	return out, nil
}

// SendNudge renders the (template, channel) message and records the simulated
// send.
func (s *Service) SendNudge(ctx context.Context, beneficiaryID, template string, channel domain.NudgeChannel) (*domain.NudgeRecord, error) {
	if _, err := s.repo.FindBeneficiaryByID(ctx, beneficiaryID); err != nil {
		return nil, err
	}
	channels, ok := s.templates[template]
	if !ok {
		return nil, ErrUnknownTemplate
	}
	message, ok := channels[channel]
	if !ok {
		return nil, ErrUnknownChannel
	}

	record := domain.NudgeRecord{
		ID:            uuid.NewString(),
		BeneficiaryID: beneficiaryID,
		Template:      template,
		Channel:       channel,
		Message:       message,
		SentAt:        time.Now(),
	}
	if err := s.repo.RecordNudge(ctx, record); err != nil {
		return nil, fmt.Errorf("record nudge: %w", err)
	}
	log.Printf("level=info component=app msg=\"nudge sent\" beneficiary_id=%s template=%s channel=%s", beneficiaryID, template, channel)
	return &record, nil
}

// ListNudges returns sent nudges, optionally filtered by beneficiary.
func (s *Service) ListNudges(ctx context.Context, beneficiaryID string) ([]domain.NudgeRecord, error) {
	return s.repo.ListNudges(ctx, beneficiaryID)
}

// ListConnectors returns the registry ordered by operator priority.
func (s *Service) ListConnectors(ctx context.Context) ([]domain.Connector, error) {
	return s.repo.ListConnectors(ctx)
}

// SetConnectorEnabled flips the operator toggle on a connector.
func (s *Service) SetConnectorEnabled(ctx context.Context, id string, enabled bool) (*domain.Connector, error) {
	c, err := s.repo.SetConnectorEnabled(ctx, id, enabled)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"connector toggled\" connector_id=%s enabled=%t", id, enabled)
	return c, nil
}

// ReorderConnectors reassigns priorities following the given id order.
func (s *Service) ReorderConnectors(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return ErrInvalidSettings
	}
	return s.repo.ReorderConnectors(ctx, orderedIDs)
}

// GetSettings returns the operator-editable settings.
func (s *Service) GetSettings(ctx context.Context) (*Settings, error) {
	amounts, err := s.repo.GetStageAmounts(ctx)
	if err != nil {
		return nil, err
	}
	mode, err := s.repo.GetSettlementMode(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{StageAmounts: amounts, SettlementMode: mode}, nil
}

// UpdateSettings validates and persists the operator settings.
func (s *Service) UpdateSettings(ctx context.Context, settings Settings) (*Settings, error) {
	a := settings.StageAmounts
	if a.ANC <= 0 || a.DeliveryBoy <= 0 || a.DeliveryGirl <= 0 || a.Immunisation1 <= 0 || a.Immunisation2 <= 0 {
		return nil, ErrInvalidSettings
	}
	if !settlementModes[settings.SettlementMode] {
		return nil, ErrInvalidSettings
	}
	if err := s.repo.UpdateStageAmounts(ctx, a); err != nil {
		return nil, err
	}
	if err := s.repo.SetSettlementMode(ctx, settings.SettlementMode); err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"settings updated\" settlement_mode=%s", settings.SettlementMode)
	return &Settings{StageAmounts: a, SettlementMode: settings.SettlementMode}, nil
}
