/**
 * @description
 * In-memory implementation of the Repository interface. All state lives for
 * the duration of the process; a restart reseeds the world. A single RWMutex
 * guards every table, which is plenty for a demo dashboard: the only writers
 * are operator actions and transfer completions.
 *
 * @notes
 * - Read methods return copies so callers can never mutate store state behind
 *   the lock's back; timelines in particular are copied element-wise.
 * - Insertion order is preserved for beneficiaries and fraud signals so the
 *   dashboard renders stably; payments list newest first.
 */

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mchkit/disbursement-service/internal/domain"
)

// MemoryRepository is the process-lifetime data store.
type MemoryRepository struct {
	mu sync.RWMutex

	beneficiaries  []*domain.Beneficiary
	beneficiaryIdx map[string]*domain.Beneficiary
	connectors     []*domain.Connector
	connectorIdx   map[string]*domain.Connector
	payments       []domain.Payment
	fraudSignals   []*domain.FraudSignal
	nudges         []domain.NudgeRecord

	stageAmounts   domain.StageAmounts
	settlementMode string
}

// NewMemoryRepository builds a store from seed data. The slices are adopted,
// not copied; the seeder hands over ownership.
func NewMemoryRepository(
	beneficiaries []*domain.Beneficiary,
	connectors []*domain.Connector,
	payments []domain.Payment,
	fraudSignals []*domain.FraudSignal,
	stageAmounts domain.StageAmounts,
	settlementMode string,
) *MemoryRepository {
	r := &MemoryRepository{
		beneficiaries:  beneficiaries,
		beneficiaryIdx: make(map[string]*domain.Beneficiary, len(beneficiaries)),
		connectors:     connectors,
		connectorIdx:   make(map[string]*domain.Connector, len(connectors)),
		payments:       payments,
		fraudSignals:   fraudSignals,
		stageAmounts:   stageAmounts,
		settlementMode: settlementMode,
	}
	for _, b := range beneficiaries {
		r.beneficiaryIdx[b.ID] = b
	}
	for _, c := range connectors {
		r.connectorIdx[c.ID] = c
	}
	return r
}

func copyBeneficiary(b *domain.Beneficiary) domain.Beneficiary {
	out := *b
	out.Timeline = make([]domain.StageRecord, len(b.Timeline))
	copy(out.Timeline, b.Timeline)
	out.ComplianceFlags = append([]domain.ComplianceFlag(nil), b.ComplianceFlags...)
	out.DisasterFlags = append([]string(nil), b.DisasterFlags...)
	return out
}

// ListBeneficiaries returns the register filtered by district, derived
// eligibility, and risk band.
func (r *MemoryRepository) ListBeneficiaries(ctx context.Context, opts BeneficiaryListOptions) ([]domain.Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Beneficiary, 0, len(r.beneficiaries))
	for _, b := range r.beneficiaries {
		if opts.District != "" && b.District != opts.District {
			continue
		}
		if opts.Eligibility != "" && b.EligibilityStatus() != opts.Eligibility {
			continue
		}
		if opts.RiskBand != "" && b.RiskBand() != opts.RiskBand {
			continue
		}
		out = append(out, copyBeneficiary(b))
	}
	return out, nil
}

func (r *MemoryRepository) FindBeneficiaryByID(ctx context.Context, id string) (*domain.Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.beneficiaryIdx[id]
	if !ok {
		return nil, ErrBeneficiaryNotFound
	}
	out := copyBeneficiary(b)
	return &out, nil
}

func (r *MemoryRepository) HoldNextDueStage(ctx context.Context, beneficiaryID string) (*domain.StageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beneficiaryIdx[beneficiaryID]
	if !ok {
		return nil, ErrBeneficiaryNotFound
	}
	for i := range b.Timeline {
		if b.Timeline[i].Status == domain.StageDue {
			b.Timeline[i].Status = domain.StageHeld
			held := b.Timeline[i]
			return &held, nil
		}
	}
	return nil, ErrNoDueStage
}

func (r *MemoryRepository) MarkStagePaid(ctx context.Context, beneficiaryID, purpose string, date time.Time, paymentRef string) (*domain.StageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beneficiaryIdx[beneficiaryID]
	if !ok {
		return nil, ErrBeneficiaryNotFound
	}

	// Prefer the stage named by the transfer purpose, if it is still unpaid.
	target := -1
	for i := range b.Timeline {
		if string(b.Timeline[i].Stage) == purpose && b.Timeline[i].Status != domain.StagePaid {
			target = i
			break
		}
	}
	if target < 0 {
		for i := range b.Timeline {
			if b.Timeline[i].Status == domain.StageDue {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return nil, ErrNoDueStage
	}

	b.Timeline[target].MarkPaid(date, paymentRef)
	paid := b.Timeline[target]
	return &paid, nil
}

func (r *MemoryRepository) ListConnectors(ctx context.Context) ([]domain.Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Connector, 0, len(r.connectors))
	for _, c := range r.connectors {
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (r *MemoryRepository) FindConnectorByID(ctx context.Context, id string) (*domain.Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectorIdx[id]
	if !ok {
		return nil, ErrConnectorNotFound
	}
	out := *c
	return &out, nil
}

func (r *MemoryRepository) SetConnectorEnabled(ctx context.Context, id string, enabled bool) (*domain.Connector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connectorIdx[id]
	if !ok {
		return nil, ErrConnectorNotFound
	}
	c.Enabled = enabled
	out := *c
	return &out, nil
}

func (r *MemoryRepository) ReorderConnectors(ctx context.Context, orderedIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, id := range orderedIDs {
		c, ok := r.connectorIdx[id]
		if !ok {
			return ErrConnectorNotFound
		}
		c.Priority = i + 1
	}
	return nil
}

func (r *MemoryRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments = append(r.payments, *payment)
	return nil
}

func (r *MemoryRepository) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]domain.Payment(nil), r.payments...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListPaymentsByBeneficiary(ctx context.Context, beneficiaryID string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Payment
	for _, p := range r.payments {
		if p.BeneficiaryID == beneficiaryID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) ListFraudSignals(ctx context.Context) ([]domain.FraudSignal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FraudSignal, 0, len(r.fraudSignals))
	for _, s := range r.fraudSignals {
		out = append(out, *s)
	}
	return out, nil
}

func (r *MemoryRepository) UpdateFraudReviewStatus(ctx context.Context, signalID string, status domain.FraudReviewStatus) (*domain.FraudSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.fraudSignals {
		if s.ID == signalID {
			s.ReviewStatus = status
			out := *s
			return &out, nil
		}
	}
	return nil, ErrFraudSignalNotFound
}

func (r *MemoryRepository) RecordNudge(ctx context.Context, record domain.NudgeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nudges = append(r.nudges, record)
	return nil
}

func (r *MemoryRepository) ListNudges(ctx context.Context, beneficiaryID string) ([]domain.NudgeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.NudgeRecord
	for _, n := range r.nudges {
		if beneficiaryID == "" || n.BeneficiaryID == beneficiaryID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetStageAmounts(ctx context.Context) (domain.StageAmounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stageAmounts, nil
}

func (r *MemoryRepository) UpdateStageAmounts(ctx context.Context, amounts domain.StageAmounts) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stageAmounts = amounts
	return nil
}

func (r *MemoryRepository) GetSettlementMode(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settlementMode, nil
}

func (r *MemoryRepository) SetSettlementMode(ctx context.Context, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settlementMode = mode
	return nil
}
