package providers

import (
	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned when a provider configuration cannot be applied.
var ErrInvalidConfig = errors.New("invalid provider config")

// Config selects the execution provider and the session tuning applied to an
// ONNX Runtime session.
type Config struct {
	// Backend specifies the execution provider. Empty means CPU.
	Backend ProviderBackend `json:"backend" yaml:"backend" koanf:"backend"`

	// SharedLibraryPath overrides the onnxruntime shared library location.
	SharedLibraryPath string `json:"shared_library_path" yaml:"shared_library_path" koanf:"sharedlibpath"`

	// IntraOpThreads sets threads used inside a single node. Zero lets the runtime decide.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads" koanf:"intraopthreads"`

	// InterOpThreads sets threads used across independent nodes. Zero lets the runtime decide.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads" koanf:"interopthreads"`

	// GraphOptimization sets the graph optimization level. Empty means extended.
	GraphOptimization GraphOptimization `json:"graph_optimization" yaml:"graph_optimization" koanf:"graphoptimization"`

	// Provider specific options. Only the one matching Backend is used.
	CUDA     CUDAOptions     `json:"cuda"     yaml:"cuda"     koanf:"cuda"`
	CoreML   CoreMLOptions   `json:"coreml"   yaml:"coreml"   koanf:"coreml"`
	OpenVINO OpenVINOOptions `json:"openvino" yaml:"openvino" koanf:"openvino"`
}

// DefaultConfig returns a CPU configuration with extended graph optimizations.
func DefaultConfig() Config {
	return Config{
		Backend:           CPUProviderBackend,
		GraphOptimization: GraphOptimizationExtended,
		OpenVINO:          OpenVINOOptions{DeviceType: "CPU"},
	}
}

// Validate checks the backend, thread counts and optimization level.
func (c Config) Validate() error {
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.IntraOpThreads < 0 || c.InterOpThreads < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative thread count intra=%d inter=%d",
			c.IntraOpThreads, c.InterOpThreads)
	}
	switch c.GraphOptimization {
	case "", GraphOptimizationDisabled, GraphOptimizationBasic, GraphOptimizationExtended, GraphOptimizationAll:
	default:
		return errors.Wrapf(ErrInvalidConfig, "graph optimization %q", c.GraphOptimization)
	}
	if c.CUDA.DeviceID < 0 {
		return errors.Wrapf(ErrInvalidConfig, "cuda device id %d", c.CUDA.DeviceID)
	}
	return nil
}
