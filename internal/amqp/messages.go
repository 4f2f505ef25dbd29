package amqp

import (
	"encoding/json"
	"time"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
)

// budgetAlertMessage is the wire form of an alert. Amounts are decimal strings.
type budgetAlertMessage struct {
	BudgetID string    `json:"budgetId"`
	Category string    `json:"category"`
	Severity string    `json:"severity"`
	Spent    string    `json:"spent"`
	Limit    string    `json:"limit"`
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raisedAt"`
}

func newBudgetAlertMessage(a alert.Alert, at time.Time) budgetAlertMessage {
	return budgetAlertMessage{
		BudgetID: a.BudgetID,
		Category: string(a.Category),
		Severity: string(a.Severity),
		Spent:    a.Spent.StringFixed(2),
		Limit:    a.Limit.StringFixed(2),
		Message:  a.Message,
		RaisedAt: at,
	}
}

func (m budgetAlertMessage) toJSON() ([]byte, error) {
	return json.Marshal(m)
}
