/**
 * @description
 * This file contains the transfer orchestrator: the engine that drives a
 * transfer through the fixed-order payout pipeline
 * INITIATED → RISK_CHECK → AUTHORIZING → AUTHORIZED → ROUTING →
 * CREDIT_INSTRUCTION → PAYOUT_REQUEST → SETTLEMENT_PENDING →
 * SETTLEMENT_CONFIRMED → PAID, appending one event per transition to the
 * transfer's append-only log.
 *
 * Key behaviors:
 * - Stages run strictly sequentially on one goroutine per transfer; the only
 *   modeled failure is a BLOCKED compliance decision, which truncates the
 *   pipeline at RISK_CHECK into terminal FAILED. No retries, no rollback, no
 *   cancellation.
 * - Simulated latency comes from an injected Clock, so tests run the whole
 *   pipeline instantly.
 * - On PAID the engine settles the beneficiary's stage and mints the
 *   settlement record through the repository.
 *
 * @dependencies
 * - github.com/google/uuid: credit-instruction ids and payment references.
 * - internal/domain, internal/store: models and persistence of outcomes.
 */

package orchestrator

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mchkit/disbursement-service/internal/domain"
	"github.com/mchkit/disbursement-service/internal/store"
)

// ErrTransferNotFound is returned when polling an unknown transfer id.
var ErrTransferNotFound = errors.New("transfer not found")

// ComplianceFailureReason is the recorded reason when a BLOCKED decision
// truncates the pipeline.
const ComplianceFailureReason = "Compliance check failed"

// routingRationale is the fixed explanation recorded at the ROUTING stage.
const routingRationale = "Cheapest fastest eligible route selected by ranking"

// Clock abstracts wall-clock time so stage latency can be injected in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time        { return time.Now() }
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// InstantClock advances a synthetic timestamp instead of sleeping. Each Sleep
// moves the reported time forward, so event timestamps stay strictly ordered.
type InstantClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewInstantClock starts a synthetic clock at the given instant.
func NewInstantClock(start time.Time) *InstantClock {
	return &InstantClock{now: start}
}

func (c *InstantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *InstantClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Delays holds the simulated latency per pipeline stage. These model external
// system latency, not retry backoff.
type Delays struct {
	RiskCheck          time.Duration
	Auth3DS            time.Duration
	AuthUPIPIN         time.Duration
	AuthInstant        time.Duration
	AuthPendingInitial time.Duration
	AuthPendingConfirm time.Duration
	Routing            time.Duration
	CreditInstruction  time.Duration
	PayoutRequest      time.Duration
	SettlementInstant  time.Duration
	SettlementT1       time.Duration
}

// DefaultDelays returns the demo latencies. 3DS is the slowest interactive
// authorization; bank-side PENDING confirmation is the slowest overall;
// non-IMPS bank settlement simulates T+1 with the longest settlement delay.
func DefaultDelays() Delays {
	return Delays{
		RiskCheck:          400 * time.Millisecond,
		Auth3DS:            1500 * time.Millisecond,
		AuthUPIPIN:         600 * time.Millisecond,
		AuthInstant:        500 * time.Millisecond,
		AuthPendingInitial: 1000 * time.Millisecond,
		AuthPendingConfirm: 2200 * time.Millisecond,
		Routing:            300 * time.Millisecond,
		CreditInstruction:  400 * time.Millisecond,
		PayoutRequest:      500 * time.Millisecond,
		SettlementInstant:  600 * time.Millisecond,
		SettlementT1:       3000 * time.Millisecond,
	}
}

// AuthMethodFor selects the authorization scheme for a connector type.
func AuthMethodFor(t domain.ConnectorType) domain.AuthMethod {
	switch t {
	case domain.ConnectorCard:
		return domain.Auth3DS
	case domain.ConnectorUPI:
		return domain.AuthUPIPIN
	case domain.ConnectorBank:
		return domain.AuthPending
	default:
		return domain.AuthInstant
	}
}

// transferState pairs a transfer with its own lock and completion signal.
type transferState struct {
	mu       sync.Mutex
	transfer *domain.Transfer
	done     chan struct{}
}

// Engine drives transfers to a terminal state. Transfers are independent; the
// engine map is the only shared structure.
type Engine struct {
	repo   store.Repository
	clock  Clock
	delays Delays

	mu        sync.RWMutex
	transfers map[uuid.UUID]*transferState
}

// New creates an orchestration engine.
func New(repo store.Repository, clock Clock, delays Delays) *Engine {
	return &Engine{
		repo:      repo,
		clock:     clock,
		delays:    delays,
		transfers: make(map[uuid.UUID]*transferState),
	}
}

// Start registers the transfer, records the INITIATED event, and launches the
// pipeline goroutine. The caller has already scored and gated the transfer.
func (e *Engine) Start(t *domain.Transfer) {
	st := &transferState{transfer: t, done: make(chan struct{})}

	st.mu.Lock()
	t.Status = domain.TransferInitiated
	t.CreatedAt = e.clock.Now()
	t.Events = append(t.Events, domain.TransferEvent{
		Type:      string(domain.TransferInitiated),
		Timestamp: t.CreatedAt,
		Data: map[string]any{
			"beneficiary_id": t.BeneficiaryID,
			"amount":         t.Amount,
			"currency":       t.Currency,
			"amount_inr":     t.AmountINR,
		},
	})
	st.mu.Unlock()

	e.mu.Lock()
	e.transfers[t.ID] = st
	e.mu.Unlock()

	go e.run(st)
}

// Get returns a snapshot of the transfer for polling.
func (e *Engine) Get(id uuid.UUID) (*domain.Transfer, error) {
	e.mu.RLock()
	st, ok := e.transfers[id]
	e.mu.RUnlock()
	if !ok {
		return nil, ErrTransferNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	out := *st.transfer
	out.Events = append([]domain.TransferEvent(nil), st.transfer.Events...)
	return &out, nil
}

// Wait returns a channel closed when the transfer reaches a terminal state.
func (e *Engine) Wait(id uuid.UUID) (<-chan struct{}, error) {
	e.mu.RLock()
	st, ok := e.transfers[id]
	e.mu.RUnlock()
	if !ok {
		return nil, ErrTransferNotFound
	}
	return st.done, nil
}

// transition advances the transfer to the next status and appends its event.
func (e *Engine) transition(st *transferState, status domain.TransferStatus, data map[string]any) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.transfer.Status = status
	st.transfer.Events = append(st.transfer.Events, domain.TransferEvent{
		Type:      string(status),
		Timestamp: e.clock.Now(),
		Data:      data,
	})
}

// subEvent appends an event without changing the status.
func (e *Engine) subEvent(st *transferState, eventType string, data map[string]any) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.transfer.Events = append(st.transfer.Events, domain.TransferEvent{
		Type:      eventType,
		Timestamp: e.clock.Now(),
		Data:      data,
	})
}

func (e *Engine) fail(st *transferState, reason string) {
	st.mu.Lock()
	st.transfer.FailureReason = reason
	st.mu.Unlock()
	e.transition(st, domain.TransferFailed, map[string]any{"reason": reason})
	log.Printf("level=warn component=orchestrator msg=\"transfer failed\" transfer_id=%s reason=%q", st.transfer.ID, reason)
}

// run executes the staged pipeline. Stages are strictly sequential: each one
// begins only after its predecessor's delay elapsed and event was recorded.
func (e *Engine) run(st *transferState) {
	defer close(st.done)

	t := st.transfer

	// RISK_CHECK re-validates the compliance decision made at initiation.
	e.clock.Sleep(e.delays.RiskCheck)
	e.transition(st, domain.TransferRiskCheck, map[string]any{
		"risk_score": t.RiskScore,
		"decision":   string(t.Decision),
	})
	if t.Decision == domain.DecisionBlocked {
		e.fail(st, ComplianceFailureReason)
		return
	}

	// AUTHORIZING: method and latency depend on the connector type. Bank
	// authorization passes through an asynchronous pending sub-event.
	method := AuthMethodFor(t.Connector.Type)
	e.transition(st, domain.TransferAuthorizing, map[string]any{"method": string(method)})
	switch method {
	case domain.Auth3DS:
		e.clock.Sleep(e.delays.Auth3DS)
	case domain.AuthUPIPIN:
		e.clock.Sleep(e.delays.AuthUPIPIN)
	case domain.AuthPending:
		e.clock.Sleep(e.delays.AuthPendingInitial)
		e.subEvent(st, "AUTHORIZATION_PENDING", map[string]any{
			"method": string(method),
			"note":   "awaiting bank-side confirmation",
		})
		e.clock.Sleep(e.delays.AuthPendingConfirm)
	default:
		e.clock.Sleep(e.delays.AuthInstant)
	}
	e.transition(st, domain.TransferAuthorized, map[string]any{"method": string(method)})

	e.clock.Sleep(e.delays.Routing)
	e.transition(st, domain.TransferRouting, map[string]any{
		"connector_id": t.Connector.ID,
		"rationale":    routingRationale,
	})

	// CREDIT_INSTRUCTION is the commit point: a unique instruction id,
	// timestamped at this step.
	e.clock.Sleep(e.delays.CreditInstruction)
	instructionID := uuid.New()
	creditAt := e.clock.Now()
	e.transition(st, domain.TransferCreditInstruction, map[string]any{
		"instruction_id": instructionID.String(),
	})

	e.clock.Sleep(e.delays.PayoutRequest)
	e.transition(st, domain.TransferPayoutRequest, map[string]any{
		"connector_id": t.Connector.ID,
	})

	settlementDelay := e.delays.SettlementInstant
	settlementNote := "instant settlement"
	if !t.Connector.InstantSettlement() {
		settlementDelay = e.delays.SettlementT1
		settlementNote = "T+1 settlement"
	}
	e.transition(st, domain.TransferSettlementPending, map[string]any{"note": settlementNote})

	e.clock.Sleep(settlementDelay)
	e.transition(st, domain.TransferSettlementConfirmed, nil)

	// Settle before announcing PAID, so a PAID snapshot always has its
	// payment record behind it.
	paymentRef := paymentReference(t.ID)
	st.mu.Lock()
	t.PaymentRef = paymentRef
	st.mu.Unlock()
	e.finalize(st, instructionID, creditAt)
	e.transition(st, domain.TransferPaid, map[string]any{"payment_ref": paymentRef})
}

// finalize settles the beneficiary's stage and mints the payment record once
// the transfer is PAID.
func (e *Engine) finalize(st *transferState, instructionID uuid.UUID, creditAt time.Time) {
	ctx := context.Background()

	st.mu.Lock()
	t := *st.transfer
	events := append([]domain.TransferEvent(nil), st.transfer.Events...)
	st.mu.Unlock()

	settledAt := e.clock.Now()

	stage, err := e.repo.MarkStagePaid(ctx, t.BeneficiaryID, t.Purpose, settledAt, t.PaymentRef)
	if err != nil {
		log.Printf("level=warn component=orchestrator msg=\"stage settlement skipped\" transfer_id=%s beneficiary_id=%s err=%v", t.ID, t.BeneficiaryID, err)
		return
	}

	beneficiary, err := e.repo.FindBeneficiaryByID(ctx, t.BeneficiaryID)
	if err != nil {
		log.Printf("level=error component=orchestrator msg=\"beneficiary lookup failed during finalize\" transfer_id=%s err=%v", t.ID, err)
		return
	}
	mode, err := e.repo.GetSettlementMode(ctx)
	if err != nil {
		mode = "RTGS"
	}

	payment := &domain.Payment{
		ID:              t.PaymentRef,
		BeneficiaryID:   t.BeneficiaryID,
		BeneficiaryName: beneficiary.Name,
		Stage:           stage.Stage,
		Amount:          t.AmountINR,
		Status:          "SUCCESS",
		Path: domain.SettlementPath{
			PFMS:                eventTime(events, string(domain.TransferInitiated), creditAt),
			Treasury:            eventTime(events, string(domain.TransferRiskCheck), creditAt),
			RemitterBank:        eventTime(events, string(domain.TransferAuthorized), creditAt),
			NPCI:                creditAt,
			CreditInstructionAt: creditAt,
			BeneficiaryBank:     eventTime(events, string(domain.TransferSettlementPending), creditAt),
			SettlementMode:      mode,
			SettledAt:           settledAt,
		},
		CreatedAt: settledAt,
	}
	if err := e.repo.CreatePayment(ctx, payment); err != nil {
		log.Printf("level=error component=orchestrator msg=\"payment record failed\" transfer_id=%s err=%v", t.ID, err)
		return
	}
	log.Printf("level=info component=orchestrator msg=\"transfer settled\" transfer_id=%s payment_ref=%s stage=%q instruction_id=%s", t.ID, t.PaymentRef, stage.Stage, instructionID)
}

func eventTime(events []domain.TransferEvent, eventType string, fallback time.Time) time.Time {
	for _, ev := range events {
		if ev.Type == eventType {
			return ev.Timestamp
		}
	}
	return fallback
}

func paymentReference(transferID uuid.UUID) string {
	return "PAY-" + strings.ToUpper(strings.ReplaceAll(transferID.String(), "-", "")[:10])
}
