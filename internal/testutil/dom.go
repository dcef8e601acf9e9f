package testutil

import (
	"testing"

	"github.com/roach88/sdbind/internal/dom"
)

// ParseDocument parses src or fails the test.
func ParseDocument(t testing.TB, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

// MustElement returns the element with the given id or fails the test.
func MustElement(t testing.TB, doc *dom.Document, id string) *dom.Element {
	t.Helper()
	el := doc.GetElementByID(id)
	if el == nil {
		t.Fatalf("no element with id %q", id)
	}
	return el
}
