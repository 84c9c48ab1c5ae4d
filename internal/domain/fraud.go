package domain

// FraudSignalType classifies the origin of a fraud signal.
type FraudSignalType string

const (
	FraudBehavior    FraudSignalType = "BEHAVIOR"
	FraudTransaction FraudSignalType = "TRANSACTION"
	FraudIdentity    FraudSignalType = "IDENTITY"
)

// FraudSeverity ranks how urgent a signal is for review.
type FraudSeverity string

const (
	SeverityLow      FraudSeverity = "LOW"
	SeverityMedium   FraudSeverity = "MEDIUM"
	SeverityHigh     FraudSeverity = "HIGH"
	SeverityCritical FraudSeverity = "CRITICAL"
)

// FraudReviewStatus is the operator's disposition of a signal.
type FraudReviewStatus string

const (
	ReviewOpen          FraudReviewStatus = "OPEN"
	ReviewApproved      FraudReviewStatus = "APPROVED"
	ReviewHeld          FraudReviewStatus = "HELD"
	ReviewDocsRequested FraudReviewStatus = "DOCS_REQUESTED"
)

// FraudSignal is one entry of the review queue.
type FraudSignal struct {
	ID            string            `json:"id"`
	BeneficiaryID string            `json:"beneficiary_id"`
	Type          FraudSignalType   `json:"type"`
	Severity      FraudSeverity     `json:"severity"`
	Details       string            `json:"details"`
	ReviewStatus  FraudReviewStatus `json:"review_status"`
}
