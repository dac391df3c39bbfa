package saga

import (
	"encoding/json"
	"time"

	"github.com/orchestrated/order-system/shared/models"
)

// Source identifies the participant that last touched an event.
type Source string

const (
	SourceOrchestrator      Source = "ORCHESTRATOR"
	SourceProductValidation Source = "PRODUCT_VALIDATION"
	SourcePayment           Source = "PAYMENT"
	SourceInventory         Source = "INVENTORY"
)

// Status is the saga outcome reported by a participant.
//
// StatusRollbackPending means the participant failed and is asking the
// orchestrator to unwind earlier steps. StatusFail means a participant has just
// executed its own compensation.
type Status string

const (
	StatusSuccess         Status = "SUCCESS"
	StatusRollbackPending Status = "ROLLBACK_PENDING"
	StatusFail            Status = "FAIL"
)

// History is one immutable entry of the saga audit trail.
type History struct {
	Source    Source    `json:"source"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is the mutable envelope passed by value between the orchestrator and
// the participants. Whoever holds the event owns it; there is no shared state
// across services beyond what travels inside it.
type Event struct {
	ID            models.ID    `json:"id"`
	OrderID       models.ID    `json:"order_id"`
	TransactionID string       `json:"transaction_id"`
	Payload       models.Order `json:"payload"`
	Source        Source       `json:"source"`
	Status        Status       `json:"status"`
	History       []History    `json:"history"`
	CreatedAt     time.Time    `json:"created_at"`
}

// NewEvent builds the initial envelope for an order. Source and status stay
// unset until the orchestrator stamps them in startSaga.
func NewEvent(order models.Order) *Event {
	return &Event{
		ID:            models.GenerateUUID(),
		OrderID:       order.ID,
		TransactionID: order.TransactionID,
		Payload:       order,
		CreatedAt:     time.Now(),
	}
}

// Mark sets the source and status without touching the history. Compensation
// paths stamp the outcome up front and append history only once the reversal
// attempt has resolved.
func (e *Event) Mark(source Source, status Status) {
	e.Source = source
	e.Status = status
}

// Advance stamps the outcome and appends exactly one history record, the
// combination every state transition must perform before the event leaves a
// participant.
func (e *Event) Advance(source Source, status Status, message string) {
	e.Mark(source, status)
	e.AddHistory(message)
}

// AddHistory appends a record snapshotting the event's current source and
// status. History is append-only; callers never reorder or drop entries.
func (e *Event) AddHistory(message string) {
	e.History = append(e.History, History{
		Source:    e.Source,
		Status:    e.Status,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ToJSON serializes the full envelope, history included, for the wire.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON deserializes an envelope received from the wire.
func FromJSON(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// SagaState is the observable lifecycle state of a saga, derived entirely from
// the latest event rather than stored anywhere.
type SagaState string

const (
	StateStarted         SagaState = "STARTED"
	StateInProgress      SagaState = "IN_PROGRESS"
	StateRollingBack     SagaState = "ROLLING_BACK"
	StateFinishedSuccess SagaState = "FINISHED_SUCCESS"
	StateFinishedFail    SagaState = "FINISHED_FAIL"
)

// StateOf derives the saga state from an event.
func StateOf(e *Event) SagaState {
	if e.Source == "" {
		return StateStarted
	}
	if e.Source == SourceOrchestrator {
		switch {
		case e.Status == StatusFail:
			return StateFinishedFail
		case len(e.History) > 1:
			return StateFinishedSuccess
		default:
			return StateStarted
		}
	}
	if e.Status == StatusSuccess {
		return StateInProgress
	}
	return StateRollingBack
}
