// Package dedupe collapses exact and near-duplicate search hits.
//
// Results are processed in input order and the first occurrence wins, so the
// outcome depends on the order of equally-keyed or similarly-titled hits.
package dedupe

import (
	"math"

	"github.com/servo-app/refinery/internal/domain/search/result"
	"github.com/servo-app/refinery/internal/domain/search/source"
	"github.com/servo-app/refinery/internal/domain/similarity"
)

// Report counts what a refinement pass kept and dropped.
type Report struct {
	Input        int
	DroppedFalsy int
	DroppedExact int
	DroppedNear  int
	Output       int
}

// Collapser removes duplicates using a title distance ratio.
type Collapser struct {
	maxRatio float64
}

// New creates a Collapser. A non-positive maxRatio falls back to similarity.DefaultMaxRatio.
func New(maxRatio float64) Collapser {
	if maxRatio <= 0 || math.IsNaN(maxRatio) {
		maxRatio = similarity.DefaultMaxRatio
	}
	return Collapser{maxRatio: maxRatio}
}

// MaxRatio returns the near-duplicate threshold.
func (c Collapser) MaxRatio() float64 { return c.maxRatio }

// Dedupe keeps the first result per (id, source) key and drops any later result
// whose title is similar to the title of an already kept result from the same source.
// The input slice is not modified.
func (c Collapser) Dedupe(results []result.Result) ([]result.Result, Report) {
	rep := Report{Input: len(results)}
	out := make([]result.Result, 0, len(results))

	seen := make(map[result.Key]struct{}, len(results))
	keptTitles := make(map[source.Table][]string)

	for i := range results {
		r := results[i]
		key := r.Key()
		if _, dup := seen[key]; dup {
			rep.DroppedExact++
			continue
		}
		if c.nearDuplicate(r.Title(), keptTitles[r.Source()]) {
			rep.DroppedNear++
			continue
		}
		seen[key] = struct{}{}
		keptTitles[r.Source()] = append(keptTitles[r.Source()], r.Title())
		out = append(out, r)
	}

	rep.Output = len(out)
	return out, rep
}

func (c Collapser) nearDuplicate(title string, kept []string) bool {
	for _, k := range kept {
		if similarity.AreSimilar(title, k, c.maxRatio) {
			return true
		}
	}
	return false
}

// FilterBySimilarityThreshold keeps results with no similarity score or a non-zero one.
// The backend sends similarity as a boolean-like gate; the search page copy talks
// about a "50% similarity" threshold but no numeric comparison is applied here.
// NaN counts as falsy.
func (c Collapser) FilterBySimilarityThreshold(results []result.Result) ([]result.Result, int) {
	out := make([]result.Result, 0, len(results))
	dropped := 0
	for i := range results {
		s, ok := results[i].Similarity()
		if ok && (s == 0 || math.IsNaN(s)) {
			dropped++
			continue
		}
		out = append(out, results[i])
	}
	return out, dropped
}

// Refine applies FilterBySimilarityThreshold then Dedupe.
func (c Collapser) Refine(results []result.Result) ([]result.Result, Report) {
	filtered, falsy := c.FilterBySimilarityThreshold(results)
	out, rep := c.Dedupe(filtered)
	rep.Input = len(results)
	rep.DroppedFalsy = falsy
	return out, rep
}

var defaultCollapser = New(similarity.DefaultMaxRatio)

// Dedupe runs Collapser.Dedupe with the default ratio.
func Dedupe(results []result.Result) []result.Result {
	out, _ := defaultCollapser.Dedupe(results)
	return out
}

// FilterBySimilarityThreshold runs Collapser.FilterBySimilarityThreshold.
func FilterBySimilarityThreshold(results []result.Result) []result.Result {
	out, _ := defaultCollapser.FilterBySimilarityThreshold(results)
	return out
}

// Refine runs Collapser.Refine with the default ratio.
func Refine(results []result.Result) []result.Result {
	out, _ := defaultCollapser.Refine(results)
	return out
}
