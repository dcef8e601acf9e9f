package harness

// Trace event types.
const (
	EventUpdate  = "update"
	EventCall    = "call"
	EventDestroy = "destroy"
)

// TraceEvent is one entry of a scenario trace: a directive update, a
// recording handler call, or the engine teardown.
type TraceEvent struct {
	Type string `json:"type"`
	Seq  int64  `json:"seq"`

	// Update fields.
	Key       string `json:"key,omitempty"`
	Directive string `json:"directive,omitempty"`
	Argument  string `json:"argument,omitempty"`
	Raw       any    `json:"raw,omitempty"`
	Value     any    `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`

	// Element is the directive's element (updates) or the handler's
	// receiver (calls).
	Element string `json:"element,omitempty"`

	// Call fields.
	Handler string `json:"handler,omitempty"`
	Event   string `json:"event,omitempty"`
	Target  string `json:"target,omitempty"`
}

// Label returns "directive element" for updates and "handler element" for
// calls. update_order assertions compare labels.
func (ev TraceEvent) Label() string {
	switch ev.Type {
	case EventUpdate:
		name := ev.Directive
		if ev.Argument != "" {
			name += "-" + ev.Argument
		}
		return name + " " + ev.Element
	case EventCall:
		return ev.Handler + " " + ev.Element
	default:
		return ev.Type
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion succeeded.
	Pass bool `json:"pass"`

	// RunID is the engine run ID.
	RunID string `json:"run_id"`

	// Trace holds updates, handler calls and teardown in seq order.
	Trace []TraceEvent `json:"trace"`

	// Calls counts handler invocations by handler name.
	Calls map[string]int `json:"calls"`

	// HTML is the root element's outer HTML after the last step.
	HTML string `json:"html"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Calls:  make(map[string]int),
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Updates returns the update events, optionally only those for key.
func (r *Result) Updates(key string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type != EventUpdate {
			continue
		}
		if key != "" && ev.Key != key {
			continue
		}
		out = append(out, ev)
	}
	return out
}
