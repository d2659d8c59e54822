// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sync"

	"github.com/nvr-ai/go-yolov5/images"
)

// ApplyGreedyNMS performs class-aware greedy Non-Maximum Suppression.
//
// Detections are ordered by descending score (stable), then partitioned by
// class. Within a partition the highest scoring box is kept and every later
// box whose IoU with it exceeds cfg.IoUThreshold is suppressed, repeating
// until the partition is exhausted. Boxes of different classes never
// suppress each other. Partitions are independent, so with cfg.Workers > 1
// they are suppressed concurrently.
//
// Arguments:
//   - detections: Candidate detections in any order.
//   - cfg: NMS configuration.
//
// Returns:
//   - The surviving detections sorted by descending score. Never nil.
func ApplyGreedyNMS(detections []Result, cfg Config) []Result {
	n := len(detections)
	if n == 0 {
		return make([]Result, 0)
	}

	sorted := make([]Result, n)
	copy(sorted, detections)
	sortByScore(sorted)

	// Indices into sorted, grouped by class in order of first appearance.
	var order []int
	partitions := make(map[int][]int)
	for i, d := range sorted {
		if _, ok := partitions[d.Class]; !ok {
			order = append(order, d.Class)
		}
		partitions[d.Class] = append(partitions[d.Class], i)
	}

	// Partitions own disjoint indices, so workers never write the same slot.
	suppressed := make([]bool, n)

	if cfg.Workers <= 1 || len(order) == 1 {
		for _, class := range order {
			suppress(sorted, partitions[class], suppressed, cfg.IoUThreshold)
		}
	} else {
		sem := make(chan struct{}, cfg.Workers)
		var wg sync.WaitGroup
		for _, class := range order {
			wg.Add(1)
			sem <- struct{}{}
			go func(idx []int) {
				defer wg.Done()
				defer func() { <-sem }()
				suppress(sorted, idx, suppressed, cfg.IoUThreshold)
			}(partitions[class])
		}
		wg.Wait()
	}

	filtered := make([]Result, 0, n)
	for i, d := range sorted {
		if !suppressed[i] {
			filtered = append(filtered, d)
		}
	}

	return filtered
}

// suppress runs greedy NMS over idx, which must be in descending score order.
func suppress(detections []Result, idx []int, suppressed []bool, iouThreshold float32) {
	for a, i := range idx {
		if suppressed[i] {
			continue
		}
		anchor := detections[i].Box
		for _, j := range idx[a+1:] {
			if suppressed[j] {
				continue
			}
			if images.CalculateIoU(anchor, detections[j].Box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
}
