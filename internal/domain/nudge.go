package domain

import "time"

// NudgeChannel is the delivery medium for a beneficiary reminder.
type NudgeChannel string

const (
	NudgeSMS      NudgeChannel = "sms"
	NudgeIVR      NudgeChannel = "ivr"
	NudgeWhatsApp NudgeChannel = "whatsapp"
)

// NudgeTemplates maps template name -> channel -> message body.
type NudgeTemplates map[string]map[NudgeChannel]string

// NudgeRecord is one sent (simulated) reminder.
type NudgeRecord struct {
	ID            string       `json:"id"`
	BeneficiaryID string       `json:"beneficiary_id"`
	Template      string       `json:"template"`
	Channel       NudgeChannel `json:"channel"`
	Message       string       `json:"message"`
	SentAt        time.Time    `json:"sent_at"`
}
