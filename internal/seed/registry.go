/**
 * @description
 * Connector registry and nudge template defaults, plus the optional YAML
 * registry file that can override connectors, FX rates, ceilings and risk
 * thresholds for demos without recompiling.
 */

package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mchkit/disbursement-service/internal/domain"
)

// DefaultConnectors returns the built-in payout route registry. Two routes are
// deliberately unusable (one disabled, one down) so the routing filters have
// something to exclude in the demo.
func DefaultConnectors() []*domain.Connector {
	return []*domain.Connector{
		{ID: "upi-npci", Name: "NPCI UPI", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, Fee: 0, ETA: "5s", Currencies: []string{"INR"}, Countries: []string{"IN"}, Priority: 1},
		{ID: "upi-psp", Name: "Partner PSP UPI", Type: domain.ConnectorUPI, Enabled: true, Status: domain.ConnectorActive, Fee: 2, ETA: "5s", Currencies: []string{"INR"}, Countries: []string{"IN"}, Priority: 2},
		{ID: "bank-imps", Name: "IMPS Bank Transfer", Type: domain.ConnectorBank, Enabled: true, Status: domain.ConnectorActive, Fee: 5, ETA: "30m", Currencies: []string{"INR", "USD", "AED"}, Countries: []string{"IN", "AE", "US"}, Priority: 3},
		{ID: "bank-rtgs", Name: "RTGS Bank Transfer", Type: domain.ConnectorBank, Enabled: true, Status: domain.ConnectorActive, Fee: 25, ETA: "2h", Currencies: []string{"INR", "USD", "EUR", "GBP"}, Countries: []string{"IN", "US", "GB", "EU"}, Priority: 4},
		{ID: "bank-neft", Name: "NEFT Bank Transfer", Type: domain.ConnectorBank, Enabled: true, Status: domain.ConnectorDown, Fee: 2.5, ETA: "2h", Currencies: []string{"INR"}, Countries: []string{"IN"}, Priority: 5},
		{ID: "card-rails", Name: "Card Payout", Type: domain.ConnectorCard, Enabled: true, Status: domain.ConnectorActive, Fee: 12, ETA: "1m", Currencies: []string{"INR", "USD"}, Countries: []string{"IN", "US"}, Priority: 6},
		{ID: "wallet-pay", Name: "Wallet Payout", Type: domain.ConnectorWallet, Enabled: false, Status: domain.ConnectorActive, Fee: 1, ETA: "10s", Currencies: []string{"INR"}, Countries: []string{"IN"}, Priority: 7},
	}
}

// DefaultNudgeTemplates returns the reminder catalogue per template family and
// channel.
func DefaultNudgeTemplates() domain.NudgeTemplates {
	return domain.NudgeTemplates{
		"document-upload": {
			domain.NudgeSMS:      "Dear beneficiary, please upload required documents for MCH payment. Visit nearest PHC or call 1800-XXX-XXXX.",
			domain.NudgeIVR:      "This is an automated reminder to complete your document submission for MCH scheme benefits.",
			domain.NudgeWhatsApp: "Documents Required: Please submit your hospital delivery certificate and Aadhaar verification for MCH payment processing.",
		},
		"bank-verification": {
			domain.NudgeSMS:      "Bank account verification needed for MCH payment. Please visit PHC with passbook. Call 1800-XXX-XXXX for help.",
			domain.NudgeIVR:      "Your bank account requires verification for MCH scheme payment processing.",
			domain.NudgeWhatsApp: "Bank Verification: Please verify your bank account details at the nearest PHC to receive your MCH payment.",
		},
		"hospital-visit": {
			domain.NudgeSMS:      "Reminder: Hospital visit due for MCH checkup. Visit govt hospital with ID. Call 1800-XXX-XXXX.",
			domain.NudgeIVR:      "This is a reminder for your scheduled hospital visit under MCH scheme.",
			domain.NudgeWhatsApp: "Hospital Visit: Time for your scheduled checkup. Please visit your registered government hospital.",
		},
		"immunization": {
			domain.NudgeSMS:      "Child immunization due for MCH payment. Visit PHC for vaccination. Call 1800-XXX-XXXX.",
			domain.NudgeIVR:      "Your child's immunization is due under the MCH scheme.",
			domain.NudgeWhatsApp: "Immunization Due: Please bring your child for scheduled vaccination to receive MCH payment.",
		},
	}
}

// RegistryFile is the optional YAML override for the built-in registry.
type RegistryFile struct {
	Connectors []domain.Connector           `yaml:"connectors"`
	FXRates    map[string]float64           `yaml:"fx_rates"`
	Limits     map[domain.ConnectorType]int64 `yaml:"limits"`
	Thresholds *domain.RiskThresholds       `yaml:"thresholds"`
}

// LoadRegistryFile reads a registry override from path. A missing file is not
// an error; the caller keeps the defaults.
func LoadRegistryFile(path string) (*RegistryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	var file RegistryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry file: %w", err)
	}
	return &file, nil
}

// ApplyRegistry merges a registry override into built data. Empty sections
// leave the defaults untouched.
func (d *Data) ApplyRegistry(file *RegistryFile) {
	if file == nil {
		return
	}
	if len(file.Connectors) > 0 {
		d.Connectors = make([]*domain.Connector, 0, len(file.Connectors))
		for i := range file.Connectors {
			c := file.Connectors[i]
			d.Connectors = append(d.Connectors, &c)
		}
	}
	if len(file.FXRates) > 0 {
		d.Tables.FXRates = file.FXRates
	}
	if len(file.Limits) > 0 {
		d.Tables.Limits = file.Limits
	}
	if file.Thresholds != nil {
		d.Tables.Thresholds = *file.Thresholds
	}
}
