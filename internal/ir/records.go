package ir

// RunRecord describes one engine instance as stored in the journal.
type RunRecord struct {
	ID            string   `json:"id"`
	Root          string   `json:"root"`
	Prefix        string   `json:"prefix"`
	Keys          []string `json:"keys"` // bound keys in discovery order
	EngineVersion string   `json:"engine_version"`
}

// UpdateRecord is one directive update as stored in the journal.
type UpdateRecord struct {
	ID        string `json:"id"` // content-addressed, see UpdateID
	RunID     string `json:"run_id"`
	Seq       int64  `json:"seq"` // engine logical clock
	Key       string `json:"key"`
	Directive string `json:"directive"`
	Argument  string `json:"argument,omitempty"`
	Element   string `json:"element"` // dom.Element.Path of the target
	Raw       any    `json:"raw"`     // value assigned to the key
	Value     any    `json:"value"`   // value after the filter pipeline
	Error     string `json:"error,omitempty"`
}
