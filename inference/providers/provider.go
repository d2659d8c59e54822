// Package providers - ONNX Runtime execution providers and session options.
package providers

import (
	"strings"

	"github.com/pkg/errors"
)

// ProviderBackend represents different ONNX Runtime execution providers
type ProviderBackend string

const (
	// CPUProviderBackend runs the model on the default CPU provider.
	CPUProviderBackend ProviderBackend = "cpu"
	// CUDAProviderBackend uses NVIDIA CUDA for GPU acceleration.
	CUDAProviderBackend ProviderBackend = "cuda"
	// CoreMLProviderBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLProviderBackend ProviderBackend = "coreml"
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// Backends lists every supported backend.
var Backends = []ProviderBackend{
	CPUProviderBackend,
	CUDAProviderBackend,
	CoreMLProviderBackend,
	OpenVINOProviderBackend,
}

// ErrUnsupportedBackend is returned for a backend name that is not in Backends.
var ErrUnsupportedBackend = errors.New("unsupported provider backend")

// ParseBackend converts a case-insensitive name into a ProviderBackend. An
// empty name selects the CPU.
func ParseBackend(name string) (ProviderBackend, error) {
	if name == "" {
		return CPUProviderBackend, nil
	}
	b := ProviderBackend(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", errors.Wrapf(ErrUnsupportedBackend, "%q", name)
}

// GraphOptimization names an ONNX Runtime graph optimization level.
type GraphOptimization string

const (
	// GraphOptimizationDisabled turns all graph rewrites off.
	GraphOptimizationDisabled GraphOptimization = "disabled"
	// GraphOptimizationBasic enables redundant node elimination and constant folding.
	GraphOptimizationBasic GraphOptimization = "basic"
	// GraphOptimizationExtended adds node fusions.
	GraphOptimizationExtended GraphOptimization = "extended"
	// GraphOptimizationAll adds layout optimizations.
	GraphOptimizationAll GraphOptimization = "all"
)
