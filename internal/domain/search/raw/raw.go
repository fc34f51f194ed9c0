// Package raw maps backend search records, whose field names vary per source
// table, onto the canonical result.Result shape.
package raw

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/search/result"
	"github.com/servo-app/refinery/internal/domain/search/source"
)

// Record is a loosely-typed backend search hit as decoded from JSON.
type Record map[string]any

// mapping lists, in priority order, the backend keys holding each canonical field.
type mapping struct {
	id    []string
	title []string
}

var mappings = map[source.Table]mapping{
	source.Property:    {id: []string{"id", "property_id"}, title: []string{"title", "titre", "name"}},
	source.Product:     {id: []string{"id", "product_id"}, title: []string{"name", "nom", "title"}},
	source.Service:     {id: []string{"id", "service_id"}, title: []string{"name", "nom", "title"}},
	source.Metier:      {id: []string{"id", "metier_id"}, title: []string{"libelle", "name", "title"}},
	source.BlogArticle: {id: []string{"id", "article_id"}, title: []string{"title", "titre"}},
}

var fallbackMapping = mapping{id: []string{"id"}, title: []string{"title", "name"}}

var (
	sourceKeys     = []string{"source_table", "sourceTable", "source"}
	similarityKeys = []string{"similarity", "score"}
)

// Normalize converts a backend record into a canonical result.
// A record without a usable id is rejected with domain.ErrInvalidArgument.
func Normalize(rec Record) (result.Result, error) {
	if rec == nil {
		return result.Result{}, domain.NewFieldError("record", "is null")
	}
	used := make(map[string]struct{}, 4)

	var table source.Table
	if k, v, ok := first(rec, sourceKeys); ok {
		used[k] = struct{}{}
		if s, isStr := v.(string); isStr {
			table = source.Parse(s)
		}
	}

	m, ok := mappings[table]
	if !ok {
		m = fallbackMapping
	}

	var id string
	if k, v, ok := first(rec, m.id); ok {
		used[k] = struct{}{}
		id = IDString(v)
	}
	if id == "" {
		return result.Result{}, domain.NewFieldError("id", "is required")
	}

	var title string
	if k, v, ok := first(rec, m.title); ok {
		used[k] = struct{}{}
		title, _ = v.(string)
	}

	var sim *float64
	if k, v, ok := first(rec, similarityKeys); ok {
		used[k] = struct{}{}
		sim = similarityValue(v)
	}

	var fields map[string]any
	for k, v := range rec {
		if _, skip := used[k]; skip {
			continue
		}
		if fields == nil {
			fields = make(map[string]any, len(rec)-len(used))
		}
		fields[k] = v
	}

	return result.New(id, title, table, sim, fields), nil
}

// NormalizeAll converts every record, skipping the ones Normalize rejects.
// It returns the canonical results in input order and the number skipped.
func NormalizeAll(recs []Record) ([]result.Result, int) {
	out := make([]result.Result, 0, len(recs))
	skipped := 0
	for _, rec := range recs {
		r, err := Normalize(rec)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

// first returns the first key of keys present in rec with a non-nil value.
func first(rec Record, keys []string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return k, v, true
		}
	}
	return "", nil, false
}

// IDString renders a string or numeric backend id in base 10.
// Unsupported types and non-finite numbers yield "".
func IDString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

// similarityValue decodes the backend relevance flag. Booleans map to 1/0,
// numeric strings are parsed, and any other non-empty string counts as truthy.
func similarityValue(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			break
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			parsed = 1
		}
		f = parsed
	default:
		return nil
	}
	return &f
}
