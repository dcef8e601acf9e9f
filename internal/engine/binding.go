package engine

// Binding is the state of one scope key: its last assigned value and the
// directives bound to it, in discovery order.
type Binding struct {
	Value      any
	Directives []*Directive
}

// bindingTable holds one Binding per key. Entries are created during
// bootstrap and never removed; order records first-discovery order.
type bindingTable struct {
	byKey map[string]*Binding
	order []string
}

func newBindingTable() *bindingTable {
	return &bindingTable{byKey: make(map[string]*Binding)}
}

// ensure returns the binding for key, creating it if absent.
func (t *bindingTable) ensure(key string) *Binding {
	if b, ok := t.byKey[key]; ok {
		return b
	}
	b := &Binding{}
	t.byKey[key] = b
	t.order = append(t.order, key)
	return b
}

func (t *bindingTable) get(key string) (*Binding, bool) {
	b, ok := t.byKey[key]
	return b, ok
}

func (t *bindingTable) keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
