package postprocess

import "github.com/pkg/errors"

// DefaultMaxCandidates bounds the number of boxes handed to NMS per image.
const DefaultMaxCandidates = 30000

var (
	// ErrInvalidPrediction is returned when a prediction tensor does not have
	// the [batch, anchors, 5+classes] float32 layout.
	ErrInvalidPrediction = errors.New("invalid prediction")
	// ErrInvalidConfig is returned when a threshold is outside [0, 1].
	ErrInvalidConfig = errors.New("invalid postprocess config")
)

// Config defines the filtering and Non-Maximum Suppression parameters.
type Config struct {
	// Minimum objectness and composed class score. Both comparisons are strict.
	ConfidenceThreshold float32 `json:"confidence" yaml:"confidence" koanf:"confidence"`
	// Overlap above which a lower scored box of the same class is suppressed.
	IoUThreshold float32 `json:"iou" yaml:"iou" koanf:"iou"`
	// Per image cap on candidates entering NMS. Zero or less means DefaultMaxCandidates.
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" koanf:"maxcandidates"`
	// Number of goroutines suppressing class partitions. Zero or one runs inline.
	Workers int `json:"workers" yaml:"workers" koanf:"workers"`
}

// Validate checks that both thresholds lie in [0, 1].
func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "confidence threshold %v", c.ConfidenceThreshold)
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "iou threshold %v", c.IoUThreshold)
	}
	return nil
}

func (c Config) maxCandidates() int {
	if c.MaxCandidates <= 0 {
		return DefaultMaxCandidates
	}
	return c.MaxCandidates
}
