/**
 * @description
 * This file defines the `Repository` interface: the contract for all data
 * access the disbursement service needs. The interface decouples the business
 * logic from the backing implementation — here an in-memory store, since the
 * demo holds no state beyond the process lifetime — and keeps the service
 * testable through small stubs.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/mchkit/disbursement-service/internal/domain"
)

var (
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrConnectorNotFound   = errors.New("connector not found")
	ErrFraudSignalNotFound = errors.New("fraud signal not found")
	ErrNoDueStage          = errors.New("no due stage on timeline")
)

// BeneficiaryListOptions filters the beneficiary register.
type BeneficiaryListOptions struct {
	District    string
	Eligibility string // "eligible" | "ineligible" | ""
	RiskBand    string // "low" | "medium" | "high" | ""
}

// Repository defines the set of methods for interacting with the data store.
type Repository interface {
	// Beneficiary methods
	ListBeneficiaries(ctx context.Context, opts BeneficiaryListOptions) ([]domain.Beneficiary, error)
	FindBeneficiaryByID(ctx context.Context, id string) (*domain.Beneficiary, error)
	// HoldNextDueStage moves the beneficiary's first DUE stage to HELD and
	// returns the affected stage. PAID stages are never touched.
	HoldNextDueStage(ctx context.Context, beneficiaryID string) (*domain.StageRecord, error)
	// MarkStagePaid settles the stage matching purpose (falling back to the
	// first DUE stage) with the given date and payment reference.
	MarkStagePaid(ctx context.Context, beneficiaryID, purpose string, date time.Time, paymentRef string) (*domain.StageRecord, error)

	// Connector registry methods
	ListConnectors(ctx context.Context) ([]domain.Connector, error)
	FindConnectorByID(ctx context.Context, id string) (*domain.Connector, error)
	SetConnectorEnabled(ctx context.Context, id string, enabled bool) (*domain.Connector, error)
	// ReorderConnectors assigns priorities following the given id order.
	ReorderConnectors(ctx context.Context, orderedIDs []string) error

	// Payment methods
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	ListPayments(ctx context.Context, limit int) ([]domain.Payment, error)
	ListPaymentsByBeneficiary(ctx context.Context, beneficiaryID string) ([]domain.Payment, error)

	// Fraud review methods
	ListFraudSignals(ctx context.Context) ([]domain.FraudSignal, error)
	UpdateFraudReviewStatus(ctx context.Context, signalID string, status domain.FraudReviewStatus) (*domain.FraudSignal, error)

	// Nudge methods
	RecordNudge(ctx context.Context, record domain.NudgeRecord) error
	ListNudges(ctx context.Context, beneficiaryID string) ([]domain.NudgeRecord, error)

	// Settings methods
	GetStageAmounts(ctx context.Context) (domain.StageAmounts, error)
	UpdateStageAmounts(ctx context.Context, amounts domain.StageAmounts) error
	GetSettlementMode(ctx context.Context) (string, error)
	SetSettlementMode(ctx context.Context, mode string) error
}
