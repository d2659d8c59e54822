// Package profiler - Stage timing for the detection pipeline.
package profiler

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxSamples is the number of durations kept per operation.
const DefaultMaxSamples = 600

// Profiler records how long named operations take.
//
// It is safe for concurrent use. Only the most recent MaxSamples durations of
// each operation are kept, while the count covers every call.
type Profiler struct {
	mu         sync.RWMutex
	startTime  time.Time
	maxSamples int
	operations map[string]*TimeTracker
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a snapshot of one operation's timings over the kept samples.
type OperationStats struct {
	Name    string        `json:"name"`
	Count   int64         `json:"count"`
	Samples int           `json:"samples"`
	Avg     time.Duration `json:"avg"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	Last    time.Duration `json:"last"`
}

// New creates a profiler keeping up to maxSamples durations per operation.
// Zero or less means DefaultMaxSamples.
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Profiler{
		startTime:  time.Now(),
		maxSamples: maxSamples,
		operations: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes. It returns the elapsed time.
func (p *Profiler) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		p.Record(name, d)
		return d
	}
}

// Record adds a duration for the named operation.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operations[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		p.operations[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > p.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Stats returns a snapshot of every operation, sorted by name.
func (p *Profiler) Stats() []OperationStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]OperationStats, 0, len(p.operations))
	for _, t := range p.operations {
		s := OperationStats{
			Name:    t.name,
			Count:   t.count,
			Samples: len(t.durations),
			Min:     t.minTime,
			Max:     t.maxTime,
		}
		if n := len(t.durations); n > 0 {
			s.Avg = t.totalTime / time.Duration(n)
			s.Last = t.durations[n-1]
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Operation returns the snapshot of a single operation.
func (p *Profiler) Operation(name string) (OperationStats, bool) {
	for _, s := range p.Stats() {
		if s.Name == name {
			return s, true
		}
	}
	return OperationStats{}, false
}

// Reset clears every operation.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.operations = make(map[string]*TimeTracker)
	p.startTime = time.Now()
}

// LogReport writes the current timings and memory usage to logger at info level.
func (p *Profiler) LogReport(logger *zap.Logger) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.RLock()
	uptime := time.Since(p.startTime)
	p.mu.RUnlock()

	logger.Info("profiler report",
		zap.Duration("uptime", uptime.Truncate(time.Millisecond)),
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Uint64("heap_alloc", mem.HeapAlloc),
		zap.Uint32("gc_cycles", mem.NumGC),
	)

	for _, s := range p.Stats() {
		logger.Info("operation timing",
			zap.String("operation", s.Name),
			zap.Int64("count", s.Count),
			zap.Duration("avg", s.Avg.Truncate(time.Microsecond)),
			zap.Duration("min", s.Min.Truncate(time.Microsecond)),
			zap.Duration("max", s.Max.Truncate(time.Microsecond)),
		)
	}
}
