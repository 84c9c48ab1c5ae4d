package seed

import (
	"math/rand"
	"testing"

	"github.com/mchkit/disbursement-service/internal/domain"
)

func build(seed int64) *Data {
	return Build(rand.New(rand.NewSource(seed)))
}

func TestBuildIsDeterministic(t *testing.T) {
	first := build(42)
	second := build(42)

	if len(first.Beneficiaries) != len(second.Beneficiaries) {
		t.Fatalf("cohort sizes differ: %d vs %d", len(first.Beneficiaries), len(second.Beneficiaries))
	}
	for i := range first.Beneficiaries {
		a, b := first.Beneficiaries[i], second.Beneficiaries[i]
		if a.ID != b.ID || a.District != b.District || a.RiskProfile.Score != b.RiskProfile.Score {
			t.Errorf("beneficiary %d differs between identical seeds: %s vs %s", i, a.ID, b.ID)
		}
		if len(a.Timeline) != len(b.Timeline) {
			t.Errorf("beneficiary %s timelines differ in length", a.ID)
			continue
		}
		for j := range a.Timeline {
			if a.Timeline[j].Status != b.Timeline[j].Status {
				t.Errorf("beneficiary %s stage %d status differs", a.ID, j)
			}
		}
	}
}

func TestBuildCohortSize(t *testing.T) {
	d := build(1)

	if len(d.Beneficiaries) != 35 {
		t.Errorf("expected 5 fixed + 30 generated beneficiaries, got %d", len(d.Beneficiaries))
	}
	if d.Beneficiaries[0].ID != "B001" || d.Beneficiaries[0].Name != "Lakshmi Devi" {
		t.Errorf("expected B001 Lakshmi Devi first, got %s %s", d.Beneficiaries[0].ID, d.Beneficiaries[0].Name)
	}
	if len(d.Connectors) != 7 {
		t.Errorf("expected 7 connectors, got %d", len(d.Connectors))
	}
	if len(d.FraudSignals) != 6 {
		t.Errorf("expected 6 fraud signals, got %d", len(d.FraudSignals))
	}
}

func TestTimelineInvariants(t *testing.T) {
	d := build(7)

	for _, b := range d.Beneficiaries {
		if len(b.Timeline) != 4 {
			t.Errorf("beneficiary %s: expected 4 timeline stages, got %d", b.ID, len(b.Timeline))
		}
		for _, stage := range b.Timeline {
			if stage.Amount <= 0 {
				t.Errorf("beneficiary %s stage %s: non-positive amount %d", b.ID, stage.Stage, stage.Amount)
			}
			switch stage.Status {
			case domain.StagePaid:
				if stage.Date == nil || stage.PaymentRef == "" {
					t.Errorf("beneficiary %s stage %s: PAID without date or reference", b.ID, stage.Stage)
				}
			case domain.StageDue, domain.StageHeld:
				if stage.Date != nil || stage.PaymentRef != "" {
					t.Errorf("beneficiary %s stage %s: %s carries settlement fields", b.ID, stage.Stage, stage.Status)
				}
			default:
				t.Errorf("beneficiary %s stage %s: unknown status %s", b.ID, stage.Stage, stage.Status)
			}
		}
	}
}

func TestPaymentsMatchPaidStages(t *testing.T) {
	d := build(7)

	paidStages := 0
	for _, b := range d.Beneficiaries {
		for _, stage := range b.Timeline {
			if stage.Status == domain.StagePaid {
				paidStages++
			}
		}
	}
	if len(d.Payments) != paidStages {
		t.Errorf("expected one payment per PAID stage: %d stages, %d payments", paidStages, len(d.Payments))
	}

	for _, p := range d.Payments {
		if p.Status != "SUCCESS" {
			t.Errorf("payment %s: expected SUCCESS, got %s", p.ID, p.Status)
		}
		if !p.Path.Ordered() {
			t.Errorf("payment %s: hop timestamps out of order", p.ID)
		}
		if p.Path.SettlementMode != "RTGS" {
			t.Errorf("payment %s: expected RTGS mode, got %s", p.ID, p.Path.SettlementMode)
		}
	}
}

func TestCohortHasReviewMaterial(t *testing.T) {
	d := build(42)

	var sanctions, pep, failed, pending int
	for _, b := range d.Beneficiaries {
		if b.HasComplianceFlag(domain.FlagSanctionsHit) {
			sanctions++
		}
		if b.HasComplianceFlag(domain.FlagPEPMatch) {
			pep++
		}
		switch b.KYCStatus {
		case domain.KYCFailed:
			failed++
		case domain.KYCPending:
			pending++
		}
	}
	if sanctions == 0 || pep == 0 || failed == 0 || pending == 0 {
		t.Errorf("expected sanctions/pep/failed/pending material in the cohort, got %d/%d/%d/%d", sanctions, pep, failed, pending)
	}
}

func TestMaskAadhaar(t *testing.T) {
	if got := MaskAadhaar("123456789012"); got != "1234 XXXX XXXX 9012" {
		t.Errorf("unexpected mask: %q", got)
	}
	if got := MaskAadhaar("123"); got != "123" {
		t.Errorf("short input must pass through, got %q", got)
	}
}

func TestDefaultNudgeTemplatesCoverAllChannels(t *testing.T) {
	templates := DefaultNudgeTemplates()

	if len(templates) != 4 {
		t.Fatalf("expected 4 template families, got %d", len(templates))
	}
	for name, channels := range templates {
		for _, ch := range []domain.NudgeChannel{domain.NudgeSMS, domain.NudgeIVR, domain.NudgeWhatsApp} {
			if channels[ch] == "" {
				t.Errorf("template %s missing channel %s", name, ch)
			}
		}
	}
}

func TestApplyRegistryOverrides(t *testing.T) {
	d := build(1)

	override := &RegistryFile{
		Connectors: []domain.Connector{
			{ID: "upi-custom", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, ETA: "3s"},
		},
		FXRates:    map[string]float64{"USD-INR": 80},
		Thresholds: &domain.RiskThresholds{High: 0.5},
	}
	d.ApplyRegistry(override)

	if len(d.Connectors) != 1 || d.Connectors[0].ID != "upi-custom" {
		t.Errorf("connector override failed: %+v", d.Connectors)
	}
	if d.Tables.FXRates["USD-INR"] != 80 {
		t.Errorf("fx override failed: %v", d.Tables.FXRates)
	}
	if d.Tables.Thresholds.High != 0.5 {
		t.Errorf("threshold override failed: %v", d.Tables.Thresholds)
	}

	d.ApplyRegistry(nil)
	if len(d.Connectors) != 1 {
		t.Error("nil registry must leave data untouched")
	}
}
