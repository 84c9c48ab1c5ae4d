package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mchkit/disbursement-service/internal/domain"
	"github.com/mchkit/disbursement-service/internal/orchestrator"
	"github.com/mchkit/disbursement-service/internal/store"
)

// stubRepository provides just enough of store.Repository for the service
// tests; anything the code under test should not touch panics through the
// embedded nil interface.
type stubRepository struct {
	store.Repository

	mu sync.Mutex

	beneficiaries map[string]*domain.Beneficiary
	connectors    []domain.Connector
	payments      []domain.Payment

	heldStage      *domain.StageRecord
	nudges         []domain.NudgeRecord
	stageAmounts   domain.StageAmounts
	settlementMode string
}

func (s *stubRepository) FindBeneficiaryByID(ctx context.Context, id string) (*domain.Beneficiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beneficiaries[id]
	if !ok {
		return nil, store.ErrBeneficiaryNotFound
	}
	out := *b
	return &out, nil
}

func (s *stubRepository) ListBeneficiaries(ctx context.Context, opts store.BeneficiaryListOptions) ([]domain.Beneficiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Beneficiary
	for _, b := range s.beneficiaries {
		out = append(out, *b)
	}
	return out, nil
}

func (s *stubRepository) ListConnectors(ctx context.Context) ([]domain.Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Connector(nil), s.connectors...), nil
}

func (s *stubRepository) FindConnectorByID(ctx context.Context, id string) (*domain.Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.connectors {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, store.ErrConnectorNotFound
}

func (s *stubRepository) HoldNextDueStage(ctx context.Context, beneficiaryID string) (*domain.StageRecord, error) {
	if s.heldStage == nil {
		return nil, store.ErrNoDueStage
	}
	return s.heldStage, nil
}

func (s *stubRepository) MarkStagePaid(ctx context.Context, beneficiaryID, purpose string, date time.Time, paymentRef string) (*domain.StageRecord, error) {
	return &domain.StageRecord{Stage: domain.StageANC, Amount: 3000, Status: domain.StagePaid, Date: &date, PaymentRef: paymentRef}, nil
}

func (s *stubRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, *payment)
	return nil
}

func (s *stubRepository) ListPayments(ctx context.Context, limit int) ([]domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Payment(nil), s.payments...), nil
}

func (s *stubRepository) RecordNudge(ctx context.Context, record domain.NudgeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nudges = append(s.nudges, record)
	return nil
}

func (s *stubRepository) GetStageAmounts(ctx context.Context) (domain.StageAmounts, error) {
	return s.stageAmounts, nil
}

func (s *stubRepository) UpdateStageAmounts(ctx context.Context, amounts domain.StageAmounts) error {
	s.stageAmounts = amounts
	return nil
}

func (s *stubRepository) GetSettlementMode(ctx context.Context) (string, error) {
	return s.settlementMode, nil
}

func (s *stubRepository) SetSettlementMode(ctx context.Context, mode string) error {
	s.settlementMode = mode
	return nil
}

func verifiedBeneficiary(id string, score float64, flags ...domain.ComplianceFlag) *domain.Beneficiary {
	return &domain.Beneficiary{
		ID:   id,
		Name: "Test Beneficiary",
		Constraints: domain.Constraints{
			Resident: true, AadhaarLinked: true, GovtHospital: true,
			MaxDeliveries: true, MaxChildren: true,
		},
		RiskProfile:     domain.RiskProfile{Score: score},
		ComplianceFlags: flags,
		KYCStatus:       domain.KYCVerified,
		Timeline: []domain.StageRecord{
			{Stage: domain.StageANC, Amount: 3000, Status: domain.StageDue},
		},
	}
}

func newTestService(repo *stubRepository) *Service {
	if repo.connectors == nil {
		repo.connectors = []domain.Connector{
			{ID: "upi-npci", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, Fee: 0, ETA: "5s"},
			{ID: "bank-rtgs", Type: domain.ConnectorBank, Enabled: true, Status: domain.ConnectorActive, Fee: 25, ETA: "2h"},
			{ID: "wallet-pay", Type: domain.ConnectorWallet, Enabled: false, Status: domain.ConnectorActive, Fee: 1, ETA: "10s"},
		}
	}
	if repo.settlementMode == "" {
		repo.settlementMode = "RTGS"
	}
	engine := orchestrator.New(repo, orchestrator.NewInstantClock(time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)), orchestrator.DefaultDelays())
	return NewService(repo, engine, domain.DefaultTables(), domain.NudgeTemplates{
		"hospital-visit": {domain.NudgeSMS: "Reminder: hospital visit due."},
	})
}

func waitTerminal(t *testing.T, svc *Service, transfer *domain.Transfer) *domain.Transfer {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snapshot, err := svc.GetTransfer(context.Background(), transfer.ID)
		if err != nil {
			t.Fatalf("GetTransfer failed: %v", err)
		}
		if snapshot.Status.Terminal() {
			return snapshot
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("transfer did not reach a terminal state")
	return nil
}

func TestQuoteTransferHappyPath(t *testing.T) {
	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B001": verifiedBeneficiary("B001", 0.2),
	}}
	svc := newTestService(repo)

	quote, err := svc.QuoteTransfer(context.Background(), "B001", 3000, "INR", false)
	if err != nil {
		t.Fatalf("expected quote to succeed, got %v", err)
	}
	if len(quote.Routes) == 0 {
		t.Fatal("expected at least one route")
	}
	if quote.Routes[0].Connector.ID != "upi-npci" || !quote.Routes[0].Recommended {
		t.Errorf("expected upi-npci to be recommended, got %+v", quote.Routes[0])
	}
	if quote.Decision != domain.DecisionCleared {
		t.Errorf("expected CLEARED decision, got %s", quote.Decision)
	}
	if quote.Converted.AmountINR != 3000 {
		t.Errorf("expected 3000 INR, got %d", quote.Converted.AmountINR)
	}
}

func TestQuoteTransferRefusals(t *testing.T) {
	failed := verifiedBeneficiary("B010", 0.1)
	failed.KYCStatus = domain.KYCFailed
	pending := verifiedBeneficiary("B011", 0.1)
	pending.KYCStatus = domain.KYCPending

	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B001": verifiedBeneficiary("B001", 0.2),
		"B010": failed,
		"B011": pending,
	}}
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.QuoteTransfer(ctx, "B999", 3000, "INR", false); !errors.Is(err, store.ErrBeneficiaryNotFound) {
		t.Errorf("unknown beneficiary: expected ErrBeneficiaryNotFound, got %v", err)
	}
	if _, err := svc.QuoteTransfer(ctx, "B001", 0, "INR", false); !errors.Is(err, ErrAmountInvalid) {
		t.Errorf("zero amount: expected ErrAmountInvalid, got %v", err)
	}
	if _, err := svc.QuoteTransfer(ctx, "B001", -5, "INR", false); !errors.Is(err, ErrAmountInvalid) {
		t.Errorf("negative amount: expected ErrAmountInvalid, got %v", err)
	}
	if _, err := svc.QuoteTransfer(ctx, "B010", 3000, "INR", false); !errors.Is(err, ErrKYCFailed) {
		t.Errorf("failed KYC: expected ErrKYCFailed, got %v", err)
	}
	if _, err := svc.QuoteTransfer(ctx, "B010", 3000, "INR", true); !errors.Is(err, ErrKYCFailed) {
		t.Errorf("failed KYC with override: expected ErrKYCFailed, got %v", err)
	}
	if _, err := svc.QuoteTransfer(ctx, "B011", 3000, "INR", false); !errors.Is(err, ErrKYCOverrideRequired) {
		t.Errorf("pending KYC: expected ErrKYCOverrideRequired, got %v", err)
	}
	if _, err := svc.QuoteTransfer(ctx, "B011", 3000, "INR", true); err != nil {
		t.Errorf("pending KYC with override: expected success, got %v", err)
	}
	if _, err := svc.QuoteTransfer(ctx, "B001", 20000000, "INR", false); !errors.Is(err, ErrNoRouteAvailable) {
		t.Errorf("over every ceiling: expected ErrNoRouteAvailable, got %v", err)
	}
}

func TestInitiateTransferHappyPath(t *testing.T) {
	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B001": verifiedBeneficiary("B001", 0.2),
	}}
	svc := newTestService(repo)

	transfer, err := svc.InitiateTransfer(context.Background(), "B001", "upi-npci", 3000, "INR", "ANC", false)
	if err != nil {
		t.Fatalf("expected initiation to succeed, got %v", err)
	}
	if transfer.Decision != domain.DecisionCleared {
		t.Errorf("expected CLEARED decision, got %s", transfer.Decision)
	}

	final := waitTerminal(t, svc, transfer)
	if final.Status != domain.TransferPaid {
		t.Errorf("expected PAID, got %s (reason %q)", final.Status, final.FailureReason)
	}

	repo.mu.Lock()
	paymentCount := len(repo.payments)
	repo.mu.Unlock()
	if paymentCount != 1 {
		t.Errorf("expected one payment record, got %d", paymentCount)
	}
}

func TestInitiateTransferHoldRequiresOverride(t *testing.T) {
	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B002": verifiedBeneficiary("B002", 0.9),
	}}
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.InitiateTransfer(ctx, "B002", "upi-npci", 3000, "INR", "", false); !errors.Is(err, ErrComplianceHold) {
		t.Fatalf("expected ErrComplianceHold, got %v", err)
	}

	transfer, err := svc.InitiateTransfer(ctx, "B002", "upi-npci", 3000, "INR", "", true)
	if err != nil {
		t.Fatalf("expected override to succeed, got %v", err)
	}
	if transfer.Decision != domain.DecisionHold {
		t.Errorf("expected HOLD decision to be recorded, got %s", transfer.Decision)
	}
	final := waitTerminal(t, svc, transfer)
	if final.Status != domain.TransferPaid {
		t.Errorf("expected overridden transfer to complete, got %s", final.Status)
	}
}

func TestInitiateTransferBlockedProceedsThenFails(t *testing.T) {
	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B003": verifiedBeneficiary("B003", 0.5, domain.FlagSanctionsHit),
	}}
	svc := newTestService(repo)

	transfer, err := svc.InitiateTransfer(context.Background(), "B003", "upi-npci", 3000, "INR", "", false)
	if err != nil {
		t.Fatalf("blocked beneficiary must not be refused at initiation, got %v", err)
	}
	if transfer.Decision != domain.DecisionBlocked {
		t.Fatalf("expected BLOCKED decision, got %s", transfer.Decision)
	}

	final := waitTerminal(t, svc, transfer)
	if final.Status != domain.TransferFailed {
		t.Fatalf("expected FAILED, got %s", final.Status)
	}
	if final.FailureReason != "Compliance check failed" {
		t.Errorf("expected recorded compliance reason, got %q", final.FailureReason)
	}
	for _, ev := range final.Events {
		if ev.Type == "CREDIT_INSTRUCTION" {
			t.Error("blocked transfer must never reach CREDIT_INSTRUCTION")
		}
	}

	repo.mu.Lock()
	paymentCount := len(repo.payments)
	repo.mu.Unlock()
	if paymentCount != 0 {
		t.Errorf("blocked transfer must not mint a payment, got %d", paymentCount)
	}
}

func TestInitiateTransferConnectorRefusals(t *testing.T) {
	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B001": verifiedBeneficiary("B001", 0.2),
	}}
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.InitiateTransfer(ctx, "B001", "no-such-rail", 3000, "INR", "", false); !errors.Is(err, store.ErrConnectorNotFound) {
		t.Errorf("unknown connector: expected ErrConnectorNotFound, got %v", err)
	}
	if _, err := svc.InitiateTransfer(ctx, "B001", "wallet-pay", 3000, "INR", "", false); !errors.Is(err, ErrConnectorNotUsable) {
		t.Errorf("disabled connector: expected ErrConnectorNotUsable, got %v", err)
	}
	if _, err := svc.InitiateTransfer(ctx, "B001", "upi-npci", 200000, "INR", "", false); !errors.Is(err, ErrConnectorNotUsable) {
		t.Errorf("over UPI ceiling: expected ErrConnectorNotUsable, got %v", err)
	}
}

func TestSendNudge(t *testing.T) {
	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B001": verifiedBeneficiary("B001", 0.2),
	}}
	svc := newTestService(repo)
	ctx := context.Background()

	record, err := svc.SendNudge(ctx, "B001", "hospital-visit", domain.NudgeSMS)
	if err != nil {
		t.Fatalf("expected nudge to send, got %v", err)
	}
	if record.Message == "" || record.BeneficiaryID != "B001" {
		t.Errorf("unexpected nudge record: %+v", record)
	}
	if len(repo.nudges) != 1 {
		t.Errorf("expected one recorded nudge, got %d", len(repo.nudges))
	}

	if _, err := svc.SendNudge(ctx, "B001", "no-such-template", domain.NudgeSMS); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("expected ErrUnknownTemplate, got %v", err)
	}
	if _, err := svc.SendNudge(ctx, "B001", "hospital-visit", domain.NudgeIVR); !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
	if _, err := svc.SendNudge(ctx, "B999", "hospital-visit", domain.NudgeSMS); !errors.Is(err, store.ErrBeneficiaryNotFound) {
		t.Errorf("expected ErrBeneficiaryNotFound, got %v", err)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	repo := &stubRepository{
		beneficiaries: map[string]*domain.Beneficiary{},
		stageAmounts:  domain.DefaultStageAmounts(),
	}
	svc := newTestService(repo)
	ctx := context.Background()

	valid := Settings{StageAmounts: domain.DefaultStageAmounts(), SettlementMode: "NEFT"}
	updated, err := svc.UpdateSettings(ctx, valid)
	if err != nil {
		t.Fatalf("expected valid settings to persist, got %v", err)
	}
	if updated.SettlementMode != "NEFT" {
		t.Errorf("expected NEFT, got %s", updated.SettlementMode)
	}

	bad := valid
	bad.StageAmounts.ANC = 0
	if _, err := svc.UpdateSettings(ctx, bad); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("zero stage amount: expected ErrInvalidSettings, got %v", err)
	}

	bad = valid
	bad.SettlementMode = "CASH"
	if _, err := svc.UpdateSettings(ctx, bad); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("unknown settlement mode: expected ErrInvalidSettings, got %v", err)
	}
}

func TestDisasterView(t *testing.T) {
	affected := verifiedBeneficiary("B005", 0.3)
	affected.DisasterFlags = []string{"flood_affected"}
	affected.Timeline = []domain.StageRecord{
		{Stage: domain.StageANC, Amount: 3000, Status: domain.StageDue},
		{Stage: domain.StageDelivery, Amount: 5000, Status: domain.StageDue},
	}
	unaffected := verifiedBeneficiary("B001", 0.2)

	repo := &stubRepository{beneficiaries: map[string]*domain.Beneficiary{
		"B001": unaffected,
		"B005": affected,
	}}
	svc := newTestService(repo)

	entries, err := svc.DisasterView(context.Background())
	if err != nil {
		t.Fatalf("expected disaster view, got %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one flood-affected entry, got %d", len(entries))
	}
	if entries[0].Beneficiary.ID != "B005" || entries[0].DueTotal != 8000 || !entries[0].FastTrack {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestDashboardKPIs(t *testing.T) {
	eligible := verifiedBeneficiary("B001", 0.2)
	ineligible := verifiedBeneficiary("B002", 0.2)
	ineligible.Constraints.AadhaarLinked = false
	ineligible.Timeline = []domain.StageRecord{
		{Stage: domain.StageANC, Amount: 3000, Status: domain.StageHeld},
	}

	now := time.Now()
	repo := &stubRepository{
		beneficiaries: map[string]*domain.Beneficiary{"B001": eligible, "B002": ineligible},
		payments: []domain.Payment{
			{ID: "P001", Amount: 3000, Path: domain.SettlementPath{CreditInstructionAt: now}},
			{ID: "P002", Amount: 5000, Path: domain.SettlementPath{CreditInstructionAt: now}},
		},
	}
	svc := newTestService(repo)

	kpis, err := svc.DashboardKPIs(context.Background())
	if err != nil {
		t.Fatalf("expected KPIs, got %v", err)
	}
	if kpis.EligibleCount != 1 || kpis.IneligibleCount != 1 {
		t.Errorf("unexpected eligibility counts: %+v", kpis)
	}
	if kpis.HeldStages != 1 {
		t.Errorf("expected one held stage, got %d", kpis.HeldStages)
	}
	if kpis.TotalDisbursed != 8000 {
		t.Errorf("expected 8000 disbursed, got %d", kpis.TotalDisbursed)
	}
	if kpis.CreditInstructionPct != 100 {
		t.Errorf("expected 100%% credit instruction coverage, got %f", kpis.CreditInstructionPct)
	}
}
