package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-yolov5/images"
)

// Filter turns the raw rows of one image into scored candidate boxes.
//
// Each row is laid out as [cx, cy, w, h, objectness, class0, class1, ...].
// A row survives when its objectness is strictly above the confidence
// threshold and its best composed class score (class score x objectness) is
// strictly above it too. Ties between classes go to the lowest index. Rows
// with a negative width or height are dropped.
//
// Arguments:
//   - rows: The flattened rows of a single image, len(rows) == anchors*stride.
//   - stride: The row length, 5 + number of classes.
//   - cfg: The thresholds and candidate cap.
//
// Returns:
//   - []Result: Candidates in letterboxed coordinates sorted by descending
//     score, at most cfg.MaxCandidates long. Never nil.
func Filter(rows []float32, stride int, cfg Config) []Result {
	results := make([]Result, 0)
	if stride < 6 {
		return results
	}

	conf := cfg.ConfidenceThreshold
	for offset := 0; offset+stride <= len(rows); offset += stride {
		row := rows[offset : offset+stride]

		obj := row[4]
		if !(obj > conf) {
			continue
		}

		classID := 0
		best := row[5] * obj
		for j := 6; j < stride; j++ {
			if score := row[j] * obj; score > best {
				best = score
				classID = j - 5
			}
		}
		if !(best > conf) {
			continue
		}

		w, h := row[2], row[3]
		if w < 0 || h < 0 {
			continue
		}

		results = append(results, Result{
			Box:   images.RectFromCenter(row[0], row[1], w, h),
			Score: best,
			Class: classID,
		})
	}

	sortByScore(results)
	if limit := cfg.maxCandidates(); len(results) > limit {
		results = results[:limit]
	}

	return results
}

// sortByScore orders results by descending score, keeping the input order of ties.
func sortByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
