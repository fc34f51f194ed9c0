package result

import (
	"testing"

	"github.com/servo-app/refinery/internal/domain/search/source"
)

func TestNew(t *testing.T) {
	score := 0.87
	fields := map[string]any{"price": 250000.0, "image": "villa.jpg"}

	r := New("42", "Villa Bord de Mer", source.Property, &score, fields)

	if r.ID() != "42" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Title() != "Villa Bord de Mer" {
		t.Errorf("Title() = %q", r.Title())
	}
	if r.Source() != source.Property {
		t.Errorf("Source() = %q", r.Source())
	}
	if s, ok := r.Similarity(); !ok || s != 0.87 {
		t.Errorf("Similarity() = %f, %v", s, ok)
	}
	if r.Fields()["image"] != "villa.jpg" {
		t.Errorf("Fields() = %v", r.Fields())
	}
	if r.Key() != (Key{ID: "42", Source: source.Property}) {
		t.Errorf("Key() = %+v", r.Key())
	}
}

func TestNew_NilFields(t *testing.T) {
	r := New("id", "", source.Product, nil, nil)
	if _, ok := r.Similarity(); ok {
		t.Error("Similarity() reported a score for nil similarity")
	}
	if r.Fields() != nil {
		t.Errorf("Fields() = %v, want nil", r.Fields())
	}
}

func TestKey_DistinguishesSource(t *testing.T) {
	a := New("1", "Chaise", source.Product, nil, nil)
	b := New("1", "Chaise", source.Service, nil, nil)
	if a.Key() == b.Key() {
		t.Error("same id in different tables must have different keys")
	}
}
