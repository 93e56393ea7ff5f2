// internal/workers/infrastructure/send-rejection/models.go
package sendrejection

import "github.com/cinematicsodium/awards/internal/models"

type Input struct {
	BatchID string              `json:"batchId"`
	Record  *models.AwardRecord `json:"record"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent" or "disabled"
	EmailSent      bool   `json:"emailSent"`
	Escalated      bool   `json:"escalated"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

const subjectTemplate = "Award nomination rejected: {{source}} ({{code}})"

const bodyTemplate = `The award nomination {{source}} was not processed.

Reason:   {{code}} ({{category}})
Message:  {{message}}
Nominees: {{nominees}}
Batch:    {{batchId}}

{{details}}
`
