package refinery

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "refinery"

// schemaMeta holds parsed struct tag metadata, cached per Typed.
type schemaMeta struct {
	typ reflect.Type

	// Field index in the struct for each role, -1 if not present.
	idIdx         int
	titleIdx      int
	sourceIdx     int
	similarityIdx int
	latIdx        int
	lonIdx        int
	kindIdx       int
}

// parseSchema reflects on T and extracts refinery struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("refinery: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("refinery: type %s is not a struct", t)
	}

	meta := &schemaMeta{
		typ: t, idIdx: -1, titleIdx: -1, sourceIdx: -1,
		similarityIdx: -1, latIdx: -1, lonIdx: -1, kindIdx: -1,
	}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	return validateSchema(meta, t)
}

// applyTag processes a single struct field's refinery tag.
// The tag is a role name: id, title, source, similarity, lat, lon or kind.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	role := strings.TrimSpace(tag)
	var slot *int
	switch role {
	case "id":
		slot = &meta.idIdx
	case "title":
		slot = &meta.titleIdx
	case "source":
		slot = &meta.sourceIdx
	case "similarity":
		slot = &meta.similarityIdx
	case "lat":
		slot = &meta.latIdx
	case "lon":
		slot = &meta.lonIdx
	case "kind":
		slot = &meta.kindIdx
	default:
		return fmt.Errorf("refinery: unknown role %q on field %s", role, f.Name)
	}
	if *slot != -1 {
		return fmt.Errorf("refinery: duplicate %s tag on field %s", role, f.Name)
	}
	if err := checkKind(role, f); err != nil {
		return err
	}
	*slot = idx
	return nil
}

func checkKind(role string, f reflect.StructField) error {
	k := f.Type.Kind()
	switch role {
	case "title", "source", "kind":
		if k != reflect.String {
			return fmt.Errorf("refinery: %s field %s must be a string", role, f.Name)
		}
	case "lat", "lon":
		if !isNumeric(k) {
			return fmt.Errorf("refinery: %s field %s must be numeric", role, f.Name)
		}
	case "similarity":
		if !isNumeric(k) && k != reflect.Bool &&
			(k != reflect.Pointer || !isNumeric(f.Type.Elem().Kind())) {
			return fmt.Errorf("refinery: similarity field %s must be numeric, bool or *numeric", f.Name)
		}
	}
	return nil
}

func validateSchema(meta *schemaMeta, t reflect.Type) (*schemaMeta, error) {
	if meta.idIdx == -1 {
		return nil, fmt.Errorf("refinery: no field with `refinery:\"id\"` tag in %s", t)
	}
	if (meta.latIdx == -1) != (meta.lonIdx == -1) {
		return nil, fmt.Errorf("refinery: lat and lon must both be present in %s", t)
	}
	return meta, nil
}

func (m *schemaMeta) hasGeo() bool { return m.latIdx != -1 }

// toResult converts a typed struct to a Result. pos is stored in Fields so the
// refined output can be mapped back onto the original items.
func (m *schemaMeta) toResult(item any, pos int) Result {
	v := structValue(item)
	r := Result{
		ID:     fmt.Sprint(v.Field(m.idIdx).Interface()),
		Fields: map[string]any{positionField: pos},
	}
	if m.titleIdx != -1 {
		r.Title = v.Field(m.titleIdx).String()
	}
	if m.sourceIdx != -1 {
		r.Source = v.Field(m.sourceIdx).String()
	}
	if m.similarityIdx != -1 {
		r.Similarity = similarityOf(v.Field(m.similarityIdx))
	}
	return r
}

// toPoint converts a typed struct to a map marker. Structs without a kind
// field are property markers.
func (m *schemaMeta) toPoint(item any, pos int) Point {
	v := structValue(item)
	p := Point{
		ID:     fmt.Sprint(v.Field(m.idIdx).Interface()),
		Kind:   KindProperty,
		Fields: map[string]any{positionField: pos},
	}
	if m.kindIdx != -1 {
		p.Kind = PointKind(v.Field(m.kindIdx).String())
	}
	lat := toFloat64(v.Field(m.latIdx))
	lon := toFloat64(v.Field(m.lonIdx))
	p.Lat, p.Lon = &lat, &lon
	return p
}

// positionField is the Fields key carrying an item's input position.
const positionField = "\x00pos"

func positionOf(fields map[string]any) (int, bool) {
	pos, ok := fields[positionField].(int)
	return pos, ok
}

func structValue(item any) reflect.Value {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return v
}

func similarityOf(v reflect.Value) *float64 {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	var f float64
	if v.Kind() == reflect.Bool {
		if v.Bool() {
			f = 1
		}
	} else {
		f = toFloat64(v)
	}
	return &f
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return 0
	}
}
