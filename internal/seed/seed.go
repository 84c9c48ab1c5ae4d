/**
 * @description
 * This package generates the synthetic world the dashboard runs against: the
 * beneficiary register (five fixed records plus a generated cohort), the
 * connector registry, settlement records derived from every PAID stage, the
 * fraud review queue, and the nudge template catalogue.
 *
 * @notes
 * - Generation is deterministic under a caller-supplied rand source, so tests
 *   can pin the whole world with a fixed seed.
 * - Every generated record respects the domain invariants: eligibility is
 *   derived from constraints, and a PAID stage always carries a date and a
 *   payment reference while DUE/HELD stages carry neither.
 */

package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mchkit/disbursement-service/internal/domain"
)

// Data is the fully built synthetic world handed to the store.
type Data struct {
	Beneficiaries  []*domain.Beneficiary
	Connectors     []*domain.Connector
	Payments       []domain.Payment
	FraudSignals   []*domain.FraudSignal
	Tables         domain.Tables
	StageAmounts   domain.StageAmounts
	SettlementMode string
	NudgeTemplates domain.NudgeTemplates
}

// Districts covered by the scheme.
var Districts = []string{
	"Hyderabad", "Warangal", "Khammam", "Nizamabad", "Karimnagar",
	"Mahbubnagar", "Rangareddy", "Nalgonda", "Medak", "Adilabad",
}

var generatedNames = []string{
	"Priya Sharma", "Meena Patel", "Radha Krishna", "Sita Rani", "Geetha Devi",
	"Padma Laxmi", "Shanti Bai", "Kamala Kumari", "Vijaya Devi", "Saroja Reddy",
	"Yamuna Devi", "Saraswati Naik", "Durga Prasad", "Manjula Rao", "Pushpa Devi",
	"Latha Kumari", "Sudha Rani", "Usha Devi", "Vani Reddy", "Swathi Naik",
	"Jyothi Devi", "Kiran Kumari", "Madhavi Rao", "Nirmala Devi", "Pallavi Reddy",
	"Rekha Singh", "Shobha Naik", "Tulasi Devi", "Uma Rani", "Vasantha Kumari",
}

// Build assembles the synthetic world. The rand source drives the generated
// cohort; fixed records and registry defaults are constant.
func Build(rng *rand.Rand) *Data {
	tables := domain.DefaultTables()
	amounts := domain.DefaultStageAmounts()

	d := &Data{
		Connectors:     DefaultConnectors(),
		Tables:         tables,
		StageAmounts:   amounts,
		SettlementMode: "RTGS",
		NudgeTemplates: DefaultNudgeTemplates(),
	}

	d.Beneficiaries = append(fixedBeneficiaries(), generateCohort(rng, amounts)...)
	d.Payments = derivePayments(d.Beneficiaries, "RTGS")
	d.FraudSignals = fixedFraudSignals()
	return d
}

// MaskAadhaar hides the middle digits of a 12-digit Aadhaar number.
func MaskAadhaar(aadhaar string) string {
	if len(aadhaar) < 12 {
		return aadhaar
	}
	return aadhaar[:4] + " XXXX XXXX " + aadhaar[8:12]
}

func date(y int, m time.Month, day int) *time.Time {
	t := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func fixedBeneficiaries() []*domain.Beneficiary {
	all := domain.Constraints{Resident: true, AadhaarLinked: true, GovtHospital: true, MaxDeliveries: true, MaxChildren: true}
	return []*domain.Beneficiary{
		{
			ID: "B001", Name: "Lakshmi Devi", AadhaarMasked: MaskAadhaar("123456789012"),
			Mobile: "+91-9876543210", District: "Hyderabad", PHCID: "PHC001",
			DeliveriesCount: 1, ChildGender: "girl", Constraints: all,
			RiskProfile:  domain.RiskProfile{Score: 0.2, Reasons: []string{"Clean transaction history", "Verified documents"}},
			PayoutMethod: domain.PayoutMethod{Type: "upi", VPA: "lakshmi.devi@upi"},
			KYCStatus:    domain.KYCVerified,
			Timeline: []domain.StageRecord{
				{Stage: domain.StageANC, Amount: 3000, Status: domain.StagePaid, Date: date(2024, 1, 15), PaymentRef: "P001"},
				{Stage: domain.StageDelivery, Amount: 5000, Status: domain.StagePaid, Date: date(2024, 6, 10), PaymentRef: "P002"},
				{Stage: domain.StageImmunisation1, Amount: 2000, Status: domain.StageDue},
				{Stage: domain.StageImmunisation2, Amount: 3000, Status: domain.StageDue},
			},
		},
		{
			ID: "B002", Name: "Sunita Reddy", AadhaarMasked: MaskAadhaar("234567890123"),
			Mobile: "+91-9876543211", District: "Warangal", PHCID: "PHC002",
			DeliveriesCount: 1, ChildGender: "boy", Constraints: all,
			RiskProfile:     domain.RiskProfile{Score: 0.7, Reasons: []string{"Unusual transaction velocity", "Geographic risk factors"}},
			ComplianceFlags: []domain.ComplianceFlag{domain.FlagHighRisk},
			PayoutMethod:    domain.PayoutMethod{Type: "bank", Account: "XXXX3412", IFSC: "SBIN0004321"},
			KYCStatus:       domain.KYCVerified,
			Timeline: []domain.StageRecord{
				{Stage: domain.StageANC, Amount: 3000, Status: domain.StagePaid, Date: date(2024, 2, 20), PaymentRef: "P003"},
				{Stage: domain.StageDelivery, Amount: 4000, Status: domain.StagePaid, Date: date(2024, 7, 15), PaymentRef: "P004"},
				{Stage: domain.StageImmunisation1, Amount: 2000, Status: domain.StagePaid, Date: date(2024, 10, 15), PaymentRef: "P005"},
				{Stage: domain.StageImmunisation2, Amount: 3000, Status: domain.StageDue},
			},
		},
		{
			ID: "B003", Name: "Ramya Kumari", AadhaarMasked: MaskAadhaar("345678901234"),
			Mobile: "+91-9876543212", District: "Khammam", PHCID: "PHC003",
			DeliveriesCount: 2, ChildGender: "girl",
			Constraints:     domain.Constraints{Resident: true, AadhaarLinked: false, GovtHospital: true, MaxDeliveries: true, MaxChildren: true},
			Migration:       &domain.Migration{From: "Khammam", To: "Hyderabad", Reason: "flood"},
			DisasterFlags:   []string{"flood_affected", "displaced"},
			RiskProfile:     domain.RiskProfile{Score: 0.9, Reasons: []string{"Bank account mismatch", "Identity verification pending"}},
			ComplianceFlags: []domain.ComplianceFlag{domain.FlagHighRisk, domain.FlagPEPMatch},
			PayoutMethod:    domain.PayoutMethod{Type: "bank", Account: "XXXX9920", IFSC: "HDFC0001177"},
			KYCStatus:       domain.KYCPending,
			Timeline: []domain.StageRecord{
				{Stage: domain.StageANC, Amount: 3000, Status: domain.StageHeld},
				{Stage: domain.StageDelivery, Amount: 5000, Status: domain.StageDue},
				{Stage: domain.StageImmunisation1, Amount: 2000, Status: domain.StageDue},
				{Stage: domain.StageImmunisation2, Amount: 3000, Status: domain.StageDue},
			},
		},
		{
			ID: "B004", Name: "Kavitha Naik", AadhaarMasked: MaskAadhaar("456789012345"),
			Mobile: "+91-9876543213", District: "Nizamabad", PHCID: "PHC004",
			DeliveriesCount: 1, ChildGender: "boy", Constraints: all,
			RiskProfile:  domain.RiskProfile{Score: 0.1, Reasons: []string{"Verified beneficiary", "Regular compliance"}},
			PayoutMethod: domain.PayoutMethod{Type: "upi", VPA: "kavitha.naik@upi"},
			KYCStatus:    domain.KYCVerified,
			Timeline: []domain.StageRecord{
				{Stage: domain.StageANC, Amount: 3000, Status: domain.StagePaid, Date: date(2024, 3, 10), PaymentRef: "P006"},
				{Stage: domain.StageDelivery, Amount: 4000, Status: domain.StagePaid, Date: date(2024, 8, 5), PaymentRef: "P007"},
				{Stage: domain.StageImmunisation1, Amount: 2000, Status: domain.StageDue},
				{Stage: domain.StageImmunisation2, Amount: 3000, Status: domain.StageDue},
			},
		},
		{
			ID: "B005", Name: "Anitha Singh", AadhaarMasked: MaskAadhaar("567890123456"),
			Mobile: "+91-9876543214", District: "Khammam", PHCID: "PHC005",
			DeliveriesCount: 1, ChildGender: "girl", Constraints: all,
			Migration:     &domain.Migration{From: "Khammam", To: "Warangal", Reason: "flood"},
			DisasterFlags: []string{"flood_affected"},
			RiskProfile:   domain.RiskProfile{Score: 0.3, Reasons: []string{"Disaster affected", "Migration updated"}},
			PayoutMethod:  domain.PayoutMethod{Type: "upi", VPA: "anitha.singh@upi"},
			KYCStatus:     domain.KYCVerified,
			Timeline: []domain.StageRecord{
				{Stage: domain.StageANC, Amount: 3000, Status: domain.StagePaid, Date: date(2024, 1, 25), PaymentRef: "P008"},
				{Stage: domain.StageDelivery, Amount: 5000, Status: domain.StagePaid, Date: date(2024, 6, 20), PaymentRef: "P009"},
				{Stage: domain.StageImmunisation1, Amount: 2000, Status: domain.StagePaid, Date: date(2024, 9, 20), PaymentRef: "P010"},
				{Stage: domain.StageImmunisation2, Amount: 3000, Status: domain.StageDue},
			},
		},
	}
}

func generateCohort(rng *rand.Rand, amounts domain.StageAmounts) []*domain.Beneficiary {
	out := make([]*domain.Beneficiary, 0, len(generatedNames))
	payRef := 100

	for i, name := range generatedNames {
		id := fmt.Sprintf("B%03d", i+6)
		district := Districts[rng.Intn(len(Districts))]
		childGender := "boy"
		if rng.Float64() > 0.5 {
			childGender = "girl"
		}
		deliveries := rng.Intn(2) + 1
		disasterAffected := district == "Khammam" && rng.Float64() > 0.7
		riskScore := rng.Float64()

		constraints := domain.Constraints{
			Resident:      true,
			AadhaarLinked: rng.Float64() > 0.1,
			GovtHospital:  rng.Float64() > 0.05,
			MaxDeliveries: deliveries <= 2,
			MaxChildren:   deliveries <= 2,
		}

		b := &domain.Beneficiary{
			ID:              id,
			Name:            name,
			AadhaarMasked:   MaskAadhaar(fmt.Sprintf("%012d", rng.Int63n(900000000000)+100000000000)),
			Mobile:          fmt.Sprintf("+91-98765432%02d", i+15),
			District:        district,
			PHCID:           fmt.Sprintf("PHC%03d", rng.Intn(50)+1),
			DeliveriesCount: deliveries,
			ChildGender:     childGender,
			Constraints:     constraints,
			RiskProfile:     domain.RiskProfile{Score: riskScore, Reasons: riskReasons(riskScore)},
			PayoutMethod:    domain.PayoutMethod{Type: "upi", VPA: fmt.Sprintf("b%03d@upi", i+6)},
			KYCStatus:       domain.KYCVerified,
		}

		if disasterAffected {
			b.DisasterFlags = []string{"flood_affected"}
			if rng.Float64() > 0.5 {
				b.Migration = &domain.Migration{From: district, To: Districts[rng.Intn(len(Districts))], Reason: "flood"}
			}
		}

		// Compliance flags and KYC degradation are synthesized deterministically
		// off the cohort index so the review queues are never empty.
		if riskScore > 0.8 {
			b.ComplianceFlags = append(b.ComplianceFlags, domain.FlagHighRisk)
		}
		switch i {
		case 12:
			b.ComplianceFlags = append(b.ComplianceFlags, domain.FlagPEPMatch)
		case 20:
			b.ComplianceFlags = append(b.ComplianceFlags, domain.FlagSanctionsHit)
		}
		switch i {
		case 10:
			b.KYCStatus = domain.KYCFailed
		case 12, 20:
			b.KYCStatus = domain.KYCPending
		}

		b.Timeline = generateTimeline(rng, b, amounts, &payRef)
		out = append(out, b)
	}
	return out
}

func riskReasons(score float64) []string {
	switch {
	case score > 0.7:
		return []string{"High transaction velocity", "Geographic risk"}
	case score > 0.4:
		return []string{"Medium risk profile"}
	default:
		return []string{"Low risk", "Verified documents"}
	}
}

func generateTimeline(rng *rand.Rand, b *domain.Beneficiary, amounts domain.StageAmounts, payRef *int) []domain.StageRecord {
	deliveryAmount := amounts.DeliveryBoy
	if b.ChildGender == "girl" {
		deliveryAmount = amounts.DeliveryGirl
	}
	stageAmounts := []int64{amounts.ANC, deliveryAmount, amounts.Immunisation1, amounts.Immunisation2}

	timeline := make([]domain.StageRecord, 0, len(domain.StageOrder))
	for j, stage := range domain.StageOrder {
		rec := domain.StageRecord{Stage: stage, Amount: stageAmounts[j], Status: domain.StageDue}

		if b.Eligible() {
			if j < 2 || (j == 2 && rng.Float64() > 0.3) {
				if rng.Float64() > 0.1 {
					d := randomDate(rng)
					rec.MarkPaid(d, fmt.Sprintf("P%03d", *payRef))
					*payRef++
				} else {
					rec.Status = domain.StageHeld
				}
			}
		} else if rng.Float64() > 0.7 {
			rec.Status = domain.StageHeld
		}
		timeline = append(timeline, rec)
	}
	return timeline
}

func randomDate(rng *rand.Rand) time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(rng.Int63n(int64(end.Sub(start))))).Truncate(24 * time.Hour)
}

// derivePayments mints one settlement record per PAID stage, walking the fixed
// six-hop path in 15-minute steps from 08:00 on the stage date.
func derivePayments(beneficiaries []*domain.Beneficiary, settlementMode string) []domain.Payment {
	var out []domain.Payment
	for _, b := range beneficiaries {
		for _, rec := range b.Timeline {
			if rec.Status != domain.StagePaid || rec.PaymentRef == "" || rec.Date == nil {
				continue
			}
			base := rec.Date.Add(8 * time.Hour)
			out = append(out, domain.Payment{
				ID:              rec.PaymentRef,
				BeneficiaryID:   b.ID,
				BeneficiaryName: b.Name,
				Stage:           rec.Stage,
				Amount:          rec.Amount,
				Status:          "SUCCESS",
				Path: domain.SettlementPath{
					PFMS:                base,
					Treasury:            base.Add(15 * time.Minute),
					RemitterBank:        base.Add(30 * time.Minute),
					NPCI:                base.Add(45 * time.Minute),
					CreditInstructionAt: base.Add(60 * time.Minute),
					BeneficiaryBank:     base.Add(75 * time.Minute),
					SettlementMode:      settlementMode,
					SettledAt:           base.Add(90 * time.Minute),
				},
				CreatedAt: *rec.Date,
			})
		}
	}
	return out
}

func fixedFraudSignals() []*domain.FraudSignal {
	return []*domain.FraudSignal{
		{ID: "F001", BeneficiaryID: "B002", Type: domain.FraudBehavior, Details: "Multiple rapid transactions from different locations", Severity: domain.SeverityHigh, ReviewStatus: domain.ReviewOpen},
		{ID: "F002", BeneficiaryID: "B003", Type: domain.FraudIdentity, Details: "Aadhaar-bank account name mismatch", Severity: domain.SeverityCritical, ReviewStatus: domain.ReviewOpen},
		{ID: "F003", BeneficiaryID: "B007", Type: domain.FraudTransaction, Details: "Amount threshold exceeded for stage", Severity: domain.SeverityMedium, ReviewStatus: domain.ReviewOpen},
		{ID: "F004", BeneficiaryID: "B012", Type: domain.FraudBehavior, Details: "Device fingerprint anomaly detected", Severity: domain.SeverityHigh, ReviewStatus: domain.ReviewOpen},
		{ID: "F005", BeneficiaryID: "B018", Type: domain.FraudTransaction, Details: "Duplicate payment request within 24 hours", Severity: domain.SeverityHigh, ReviewStatus: domain.ReviewOpen},
		{ID: "F006", BeneficiaryID: "B025", Type: domain.FraudIdentity, Details: "KYC verification pending for over 30 days", Severity: domain.SeverityMedium, ReviewStatus: domain.ReviewOpen},
	}
}
