package providers

import "strconv"

// Precision represents the inference precision requested from OpenVINO.
type Precision string

const (
	// PrecisionAccuracy keeps the model's own input precision.
	PrecisionAccuracy Precision = "ACCURACY"
	// PrecisionFP32 represents 32-bit floating point precision.
	PrecisionFP32 Precision = "FP32"
	// PrecisionFP16 represents 16-bit floating point precision.
	PrecisionFP16 Precision = "FP16"
)

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	// Overrides the accelerator hardware type (CPU, GPU, NPU, ...).
	DeviceType string `json:"device_type" yaml:"device_type" koanf:"devicetype"`
	// Empty keeps the device default.
	Precision Precision `json:"precision" yaml:"precision" koanf:"precision"`
	// Overrides the accelerator default number of threads. Zero keeps the default.
	NumOfThreads int `json:"num_of_threads" yaml:"num_of_threads" koanf:"numofthreads"`
	// Overrides the accelerator default streams. Zero keeps the default.
	NumStreams int `json:"num_streams" yaml:"num_streams" koanf:"numstreams"`
	// Rewrite dynamic shaped models to static shape at runtime.
	DisableDynamicShapes bool `json:"disable_dynamic_shapes" yaml:"disable_dynamic_shapes" koanf:"disabledynamicshapes"`
	// Directory used to cache compiled blobs.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" koanf:"cachedir"`
}

// toMap converts the options into the key/value form ONNX Runtime expects.
func (o OpenVINOOptions) toMap() map[string]string {
	m := map[string]string{}
	if o.DeviceType != "" {
		m["device_type"] = o.DeviceType
	}
	if o.Precision != "" {
		m["precision"] = string(o.Precision)
	}
	if o.NumOfThreads > 0 {
		m["num_of_threads"] = strconv.Itoa(o.NumOfThreads)
	}
	if o.NumStreams > 0 {
		m["num_streams"] = strconv.Itoa(o.NumStreams)
	}
	if o.DisableDynamicShapes {
		m["disable_dynamic_shapes"] = "true"
	}
	if o.CacheDir != "" {
		m["cache_dir"] = o.CacheDir
	}
	return m
}
