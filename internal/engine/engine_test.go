package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sdbind/internal/dom"
	"github.com/roach88/sdbind/internal/ir"
)

func parseDoc(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	require.NoError(t, err)
	return doc
}

// textDef renders the value as text content.
var textDef = UpdateFunc(func(el *dom.Element, value any, _ string, _ *Directive, _ *Engine) error {
	el.SetTextContent(ir.String(value))
	return nil
})

// testRegistry returns a registry with "text" plus extra.
func testRegistry(t *testing.T, extra map[string]Definition) *Registry {
	t.Helper()
	defs := map[string]Definition{"text": textDef}
	for k, v := range extra {
		defs[k] = v
	}
	r, err := NewRegistry(defs)
	require.NoError(t, err)
	return r
}

// recorder captures update calls as "name:elementID=value".
type recorder struct {
	calls []string
}

func (r *recorder) def(name string) UpdateFunc {
	return func(el *dom.Element, value any, arg string, d *Directive, e *Engine) error {
		label := name
		if arg != "" {
			label += "-" + arg
		}
		r.calls = append(r.calls, fmt.Sprintf("%s:%s=%v", label, el.ID(), value))
		return nil
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, doc *dom.Document, scope map[string]any, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithRunIDGenerator(NewFixedGenerator("run-1"))}, opts...)
	e, err := New(doc, Options{ID: "app", Scope: scope}, opts...)
	require.NoError(t, err)
	return e
}

func TestNew_StripsDirectiveAttributes(t *testing.T) {
	doc := parseDoc(t, `<div id="app"><span id="a" sd-text="name" title="t"></span><i id="b" sd-bogus="x"></i></div>`)

	newTestEngine(t, doc, map[string]any{"name": "ada"}, WithDirectives(testRegistry(t, nil)))

	a := doc.GetElementByID("a")
	assert.False(t, a.HasAttribute("sd-text"))
	assert.True(t, a.HasAttribute("title"))
	assert.Equal(t, "ada", a.TextContent())

	b := doc.GetElementByID("b")
	v, ok := b.GetAttribute("sd-bogus")
	assert.True(t, ok, "unknown directives stay on the element")
	assert.Equal(t, "x", v)
}

func TestNew_RootNotFound(t *testing.T) {
	doc := parseDoc(t, `<div id="other"></div>`)

	e, err := New(doc, Options{ID: "app"}, WithLogger(quietLogger()))
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrRootNotFound)

	_, err = New(nil, Options{ID: "app"})
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestNew_RootIsBoundLast(t *testing.T) {
	rec := &recorder{}
	doc := parseDoc(t, `<div id="app" sd-rec="k"><p id="p1" sd-rec="k"></p><p id="p2"><b id="b" sd-rec="k"></b></p></div>`)

	e := newTestEngine(t, doc, map[string]any{"k": 1},
		WithDirectives(testRegistry(t, map[string]Definition{"rec": rec.def("rec")})))

	assert.Equal(t, []string{"rec:p1=1", "rec:b=1", "rec:app=1"}, rec.calls)

	ds := e.Directives()
	require.Len(t, ds, 3)
	assert.Equal(t, "app", ds[2].Element.ID())
}

func TestNew_WithPrefix(t *testing.T) {
	doc := parseDoc(t, `<div id="app"><span id="a" v-text="name"></span><span id="b" sd-text="name"></span></div>`)

	e := newTestEngine(t, doc, map[string]any{"name": "x"},
		WithDirectives(testRegistry(t, nil)), WithPrefix("v"))

	assert.Equal(t, "v", e.Prefix())
	assert.Equal(t, "x", doc.GetElementByID("a").TextContent())
	assert.True(t, doc.GetElementByID("b").HasAttribute("sd-text"))
}

func TestNew_DirectiveNameMatchesArgumentForm(t *testing.T) {
	rec := &recorder{}
	doc := parseDoc(t, `<div id="app"><p id="p" sd-flag-is-active="on"></p></div>`)

	e := newTestEngine(t, doc, map[string]any{"on": true},
		WithDirectives(testRegistry(t, map[string]Definition{"flag": rec.def("flag")})))

	assert.Equal(t, []string{"flag-is-active:p=true"}, rec.calls)
	require.Len(t, e.Directives(), 1)
	d := e.Directives()[0]
	assert.Equal(t, "is-active", d.Argument)
	assert.True(t, d.HasArgument)
	assert.False(t, doc.GetElementByID("p").HasAttribute("sd-flag-is-active"))
}

func TestScope_SetThenGetReturnsRawValue(t *testing.T) {
	doc := parseDoc(t, `<div id="app"><span id="a" sd-text="name | upper"></span></div>`)
	upper := MustFilters(map[string]FilterFunc{
		"upper": func(v any) any { return strings.ToUpper(ir.String(v)) },
	})

	e := newTestEngine(t, doc, nil, WithDirectives(testRegistry(t, nil)), WithFilters(upper))

	require.NoError(t, e.Scope().Set("name", "grace"))
	assert.Equal(t, "grace", e.Scope().Get("name"))
	assert.Equal(t, "GRACE", doc.GetElementByID("a").TextContent())
}

func TestScope_FanOutInDiscoveryOrder(t *testing.T) {
	rec := &recorder{}
	doc := parseDoc(t, `<div id="app"><p id="one" sd-rec="x"></p><p id="two" sd-rec="x | twice"></p><p id="three" sd-rec="x"></p></div>`)
	twice := MustFilters(map[string]FilterFunc{
		"twice": func(v any) any { return ir.String(v) + ir.String(v) },
	})

	e := newTestEngine(t, doc, nil,
		WithDirectives(testRegistry(t, map[string]Definition{"rec": rec.def("rec")})),
		WithFilters(twice))
	rec.calls = nil

	require.NoError(t, e.Scope().Set("x", "ab"))

	assert.Equal(t, []string{"rec:one=ab", "rec:two=abab", "rec:three=ab"}, rec.calls,
		"each directive filters the raw value on its own")
}

func TestScope_SharedCell(t *testing.T) {
	doc := parseDoc(t, `<div id="app"><span id="a" sd-text="total"></span><span id="b" sd-text="total"></span></div>`)

	e := newTestEngine(t, doc, nil, WithDirectives(testRegistry(t, nil)))

	assert.Equal(t, []string{"total"}, e.Scope().Keys())
	b, ok := e.Binding("total")
	require.True(t, ok)
	assert.Len(t, b.Directives, 2)

	require.NoError(t, e.Scope().Set("total", 5))
	assert.Equal(t, "5", doc.GetElementByID("a").TextContent())
	assert.Equal(t, "5", doc.GetElementByID("b").TextContent())
}

func TestScope_SetUnboundKeyIsPlain(t *testing.T) {
	rec := &recorder{}
	doc := parseDoc(t, `<div id="app"><p id="p" sd-rec="bound"></p></div>`)

	e := newTestEngine(t, doc, map[string]any{"extra": "kept"},
		WithDirectives(testRegistry(t, map[string]Definition{"rec": rec.def("rec")})))
	rec.calls = nil

	require.NoError(t, e.Scope().Set("other", 42))

	assert.Equal(t, 42, e.Scope().Get("other"))
	assert.False(t, e.Scope().Has("other"))
	assert.Empty(t, rec.calls)
	assert.Equal(t, "kept", e.Scope().Get("extra"))
	assert.Equal(t, []string{"extra", "other"}, e.Scope().PlainKeys())

	_, ok := e.Scope().Lookup("never")
	assert.False(t, ok)

	snap := e.Scope().Snapshot()
	assert.Equal(t, map[string]any{"bound": nil, "extra": "kept", "other": 42}, snap)
}

func TestSeed_AppliesFilters(t *testing.T) {
	doc := parseDoc(t, `<div id="app"><span id="name" sd-text="name|capitalize"></span></div>`)
	capitalize := MustFilters(map[string]FilterFunc{
		"capitalize": func(v any) any {
			s := ir.String(v)
			return strings.ToUpper(s[:1]) + s[1:]
		},
	})

	newTestEngine(t, doc, map[string]any{"name": "ada"},
		WithDirectives(testRegistry(t, nil)), WithFilters(capitalize))

	assert.Equal(t, "Ada", doc.GetElementByID("name").TextContent())
}

func TestSeed_MissingKeyIsNil(t *testing.T) {
	var got []any
	seen := UpdateFunc(func(_ *dom.Element, v any, _ string, _ *Directive, _ *Engine) error {
		got = append(got, v)
		return nil
	})
	doc := parseDoc(t, `<div id="app"><p sd-seen="missing"></p></div>`)

	newTestEngine(t, doc, nil, WithDirectives(testRegistry(t, map[string]Definition{"seen": seen})))

	assert.Equal(t, []any{nil}, got)
}

type failing struct{}

func (failing) Update(*dom.Element, any, string, *Directive, *Engine) error {
	return errors.New("boom")
}

func TestSet_UpdateErrorsAreIsolated(t *testing.T) {
	doc := parseDoc(t, `<div id="app"><b id="bad" sd-fail="x"></b><span id="a" sd-text="x"></span></div>`)

	e, err := New(doc, Options{ID: "app", Scope: map[string]any{"x": "seed"}},
		WithLogger(quietLogger()),
		WithDirectives(testRegistry(t, map[string]Definition{"fail": failing{}})))

	require.NotNil(t, e, "engine is returned alongside seed errors")
	assert.ErrorIs(t, err, ErrSeed)
	assert.True(t, IsUpdateError(err))
	assert.Equal(t, "seed", doc.GetElementByID("a").TextContent())

	err = e.Scope().Set("x", "next")
	require.Error(t, err)
	assert.Equal(t, "next", doc.GetElementByID("a").TextContent(), "sibling still updates")
	assert.Equal(t, "next", e.Scope().Get("x"))

	ues := UpdateErrors(err)
	require.Len(t, ues, 1)
	assert.Equal(t, "fail", ues[0].Directive)
	assert.Equal(t, "x", ues[0].Key)
	assert.Equal(t, "b#bad", ues[0].Element)
	assert.EqualError(t, ues[0], `update fail on b#bad (key "x"): boom`)
}

// hooks records Bind and Unbind calls.
type hooks struct {
	bound   []any
	unbound []string
}

func (h *hooks) Update(*dom.Element, any, string, *Directive, *Engine) error { return nil }

func (h *hooks) Bind(_ *dom.Element, value any) { h.bound = append(h.bound, value) }

func (h *hooks) Unbind(el *dom.Element, arg string, _ *Directive) {
	h.unbound = append(h.unbound, el.ID()+":"+arg)
}

func TestBindAndDestroyHooks(t *testing.T) {
	h := &hooks{}
	doc := parseDoc(t, `<div id="app"><p id="p" sd-hook-a="k"></p><p id="q" sd-hook-b="k"></p></div>`)

	e := newTestEngine(t, doc, map[string]any{"k": 1},
		WithDirectives(testRegistry(t, map[string]Definition{"hook": h})))

	assert.Equal(t, []any{nil, nil}, h.bound, "bind sees the binding value before seeding")

	e.Destroy()
	e.Destroy()

	assert.True(t, e.Destroyed())
	assert.Equal(t, []string{"p:a", "q:b"}, h.unbound)
	assert.ErrorIs(t, e.Scope().Set("k", 2), ErrDestroyed)
	assert.Equal(t, 1, e.Scope().Get("k"))
}

func TestObserver_SeqIncreases(t *testing.T) {
	var info RunInfo
	var events []UpdateEvent
	obs := MultiObserver(
		nil,
		ObserverFunc(func(ev UpdateEvent) { events = append(events, ev) }),
		beginRecorder{&info},
	)
	doc := parseDoc(t, `<div id="app"><span sd-text="a"></span><span sd-text="b"></span></div>`)

	e := newTestEngine(t, doc, map[string]any{"a": "1", "b": "2"},
		WithDirectives(testRegistry(t, nil)),
		WithObserver(obs),
		WithClock(NewClockAt(10)))
	require.NoError(t, e.Scope().Set("a", "3"))

	assert.Equal(t, "run-1", info.RunID)
	assert.Equal(t, []string{"a", "b"}, info.Keys)
	assert.Equal(t, "sd", info.Prefix)

	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, int64(11+i), ev.Seq)
		assert.Equal(t, "run-1", ev.RunID)
	}
	assert.Equal(t, "a", events[2].Key)
	assert.Equal(t, "3", events[2].Value)
}

type beginRecorder struct{ info *RunInfo }

func (b beginRecorder) BeginRun(info RunInfo)     { *b.info = info }
func (b beginRecorder) ObserveUpdate(UpdateEvent) {}

func TestEngine_Accessors(t *testing.T) {
	reg := testRegistry(t, nil)
	fs := MustFilters(nil)
	doc := parseDoc(t, `<div id="app"></div>`)

	e := newTestEngine(t, doc, nil, WithDirectives(reg), WithFilters(fs))

	assert.Same(t, doc.GetElementByID("app"), e.El())
	assert.Same(t, reg, e.Registry())
	assert.Same(t, fs, e.Filters())
	assert.Empty(t, e.Directives())
	_, ok := e.Binding("nope")
	assert.False(t, ok)
}
