package result

import "github.com/servo-app/refinery/internal/domain/search/source"

// Key is the exact-duplicate identity of a search hit.
type Key struct {
	ID     string
	Source source.Table
}

// Result is a single canonical search hit.
type Result struct {
	id         string
	title      string
	source     source.Table
	similarity *float64
	fields     map[string]any
}

// New creates a search result. similarity may be nil when the backend sent none.
// fields carries the opaque descriptive attributes (image, price, location).
func New(
	id, title string, table source.Table,
	similarity *float64, fields map[string]any,
) Result {
	return Result{
		id: id, title: title, source: table,
		similarity: similarity, fields: fields,
	}
}

// ID returns the identifier, unique within Source.
func (r *Result) ID() string { return r.id }

// Title returns the display title ("" when the backend sent none).
func (r *Result) Title() string { return r.title }

// Source returns the originating table.
func (r *Result) Source() source.Table { return r.source }

// Similarity returns the backend relevance score and whether one was sent.
func (r *Result) Similarity() (float64, bool) {
	if r.similarity == nil {
		return 0, false
	}
	return *r.similarity, true
}

// Fields returns the pass-through descriptive attributes.
func (r *Result) Fields() map[string]any { return r.fields }

// Key returns the (id, source) dedup key.
func (r *Result) Key() Key { return Key{ID: r.id, Source: r.source} }
