package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldEntryID     = "entry_id"
	FieldTemplateID  = "template_id"
	FieldBudgetID    = "budget_id"
	FieldBudgetName  = "budget_name"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldRule        = "rule"
	FieldPeriodKey   = "period_key"
	FieldThreshold   = "threshold"
	FieldPercentUsed = "percent_used"
	FieldHandle      = "notification_handle"
	FieldReason      = "reason"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentLedger     = "ledger"
	ComponentRecurrence = "recurrence"
	ComponentBudget     = "budget"
	ComponentNotify     = "notify"
	ComponentSettings   = "settings"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentCache      = "cache"
	ComponentBackend    = "backend"
	ComponentCLI        = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSweep    = "sweep"
	OpNotify   = "notify"
	OpSchedule = "schedule"
	OpCancel   = "cancel"
	OpReset    = "reset"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithBudget adds budget identification fields
func (f LogFields) WithBudget(id, name, periodKey string) LogFields {
	f[FieldBudgetID] = id
	f[FieldBudgetName] = name
	f[FieldPeriodKey] = periodKey
	return f
}

// WithThreshold adds alert threshold fields
func (f LogFields) WithThreshold(threshold, percentUsed float64) LogFields {
	f[FieldThreshold] = threshold
	f[FieldPercentUsed] = percentUsed
	return f
}

// WithTemplate adds recurring template fields
func (f LogFields) WithTemplate(id, rule string) LogFields {
	f[FieldTemplateID] = id
	f[FieldRule] = rule
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
