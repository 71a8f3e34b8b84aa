// Package score reduces per-task overall scores into per-student raw totals
// and converts them to scaled TOEFL speaking scores.
package score

import (
	"math"
	"sort"

	"github.com/esltool/speakgrader/internal/model"
)

// conversionTable is the fixed raw-to-scaled mapping for the speaking
// section, raw points 0..16. It is a published scoring standard; any change
// is a correctness bug.
var conversionTable = map[int]float64{
	0: 0, 1: 2, 2: 4, 3: 6, 4: 8, 5: 9,
	6: 11, 7: 13, 8: 15, 9: 17, 10: 19,
	11: 21, 12: 23, 13: 24, 14: 26, 15: 28, 16: 30,
}

// ConvertRawToTOEFL maps a raw total to its scaled score. Integer totals
// look up the table directly; non-integer totals take the midpoint of the
// two neighboring entries. Totals outside the table's domain return
// ok=false — never an extrapolation.
func ConvertRawToTOEFL(raw float64) (float64, bool) {
	if raw == math.Trunc(raw) {
		v, ok := conversionTable[int(raw)]
		return v, ok
	}
	lower := int(math.Floor(raw))
	upper := lower + 1
	lv, lok := conversionTable[lower]
	uv, uok := conversionTable[upper]
	if !lok || !uok {
		return 0, false
	}
	return (lv + uv) / 2.0, true
}

// IsHalfStep reports whether a raw total is a multiple of 0.5. Overall
// scores are means of one-decimal rubric scores, so any total failing this
// check signals corrupt input upstream.
func IsHalfStep(raw float64) bool {
	scaled := raw * 2
	return scaled == math.Trunc(scaled)
}

// Aggregate sums each student's overall scores across tasks and attaches the
// scaled score. A student absent from a task simply contributes nothing for
// it. The input is never mutated; results are sorted by student id.
func Aggregate(perTask map[int]map[string]float64) []model.StudentTotal {
	raw := make(map[string]float64)
	for _, students := range perTask {
		for id, overall := range students {
			raw[id] += overall
		}
	}

	totals := make([]model.StudentTotal, 0, len(raw))
	for id, total := range raw {
		st := model.StudentTotal{StudentID: id, RawTotal: total}
		if scaled, ok := ConvertRawToTOEFL(total); ok {
			s := scaled
			st.ScaledScore = &s
		}
		totals = append(totals, st)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].StudentID < totals[j].StudentID })
	return totals
}
