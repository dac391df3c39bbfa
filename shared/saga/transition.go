package saga

// Channel is a logical destination on the message transport. Each service
// reads from exactly one inbound channel per entry point.
type Channel string

const (
	// ChannelStartSaga carries the initial event from the order service.
	ChannelStartSaga Channel = "start-saga"
	// ChannelOrchestrator carries participant replies back to the orchestrator.
	ChannelOrchestrator Channel = "orchestrator"

	ChannelProductValidationExecute    Channel = "product-validation.execute"
	ChannelProductValidationCompensate Channel = "product-validation.compensate"
	ChannelPaymentExecute              Channel = "payment.execute"
	ChannelPaymentCompensate           Channel = "payment.compensate"
	ChannelInventoryExecute            Channel = "inventory.execute"
	ChannelInventoryCompensate         Channel = "inventory.compensate"

	// ChannelFinishSuccess and ChannelFinishFail are terminal table values:
	// the orchestrator closes the saga instead of forwarding the event.
	ChannelFinishSuccess Channel = "orchestrator.finish-success"
	ChannelFinishFail    Channel = "orchestrator.finish-fail"

	// ChannelNotifyEnding carries the final event to downstream consumers.
	ChannelNotifyEnding Channel = "orchestrator.notify-ending"
)

func (c Channel) String() string {
	return string(c)
}

// IsTerminal reports whether the channel closes the saga rather than
// addressing a participant.
func (c Channel) IsTerminal() bool {
	return c == ChannelFinishSuccess || c == ChannelFinishFail
}

type transitionKey struct {
	source Source
	status Status
}

// Table is the saga's control-flow graph: an immutable routing matrix from
// (source, status) to the next channel. Built once at process start, read-only
// afterwards, safe for concurrent lookups without locking.
type Table struct {
	rows map[transitionKey]Channel
}

// Row is one transition of the saga topology.
type Row struct {
	Source Source
	Status Status
	Next   Channel
}

// NewTable builds a table from explicit rows.
func NewTable(rows []Row) *Table {
	table := &Table{rows: make(map[transitionKey]Channel, len(rows))}
	for _, row := range rows {
		table.rows[transitionKey{source: row.Source, status: row.Status}] = row.Next
	}
	return table
}

// DefaultTable returns the fixed topology of the order saga:
// product validation, then payment, then inventory, compensating backwards
// from the point of failure.
func DefaultTable() *Table {
	return NewTable([]Row{
		{SourceOrchestrator, StatusSuccess, ChannelProductValidationExecute},
		{SourceOrchestrator, StatusFail, ChannelFinishFail},

		{SourceProductValidation, StatusSuccess, ChannelPaymentExecute},
		{SourceProductValidation, StatusRollbackPending, ChannelFinishFail},
		{SourceProductValidation, StatusFail, ChannelFinishFail},

		{SourcePayment, StatusSuccess, ChannelInventoryExecute},
		{SourcePayment, StatusRollbackPending, ChannelProductValidationCompensate},
		{SourcePayment, StatusFail, ChannelProductValidationCompensate},

		{SourceInventory, StatusSuccess, ChannelFinishSuccess},
		{SourceInventory, StatusRollbackPending, ChannelPaymentCompensate},
		{SourceInventory, StatusFail, ChannelPaymentCompensate},
	})
}

// Next resolves the channel the event must travel to. Pure and side-effect
// free. Events with an unset source or status are rejected up front; a pair
// absent from the table is a RoutingError, both fields must match exactly.
func (t *Table) Next(event *Event) (Channel, error) {
	if event.Source == "" || event.Status == "" {
		return "", NewValidationError("source and status must be informed")
	}
	next, ok := t.rows[transitionKey{source: event.Source, status: event.Status}]
	if !ok {
		return "", NewRoutingError("no matching route for source %s and status %s", event.Source, event.Status)
	}
	return next, nil
}

// Rows returns a copy of the table content, mainly for diagnostics.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.rows))
	for key, next := range t.rows {
		rows = append(rows, Row{Source: key.source, Status: key.status, Next: next})
	}
	return rows
}
