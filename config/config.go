// Package config - Application configuration loaded from defaults, YAML and environment.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/nvr-ai/go-yolov5/detector"
	"github.com/nvr-ai/go-yolov5/inference"
	"github.com/nvr-ai/go-yolov5/inference/providers"
	"github.com/nvr-ai/go-yolov5/models/model/preprocess"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/nvr-ai/go-yolov5/models/yolov5"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides. YOLO_DETECTION_CONFIDENCE
// sets detection.confidence.
const EnvPrefix = "YOLO_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// ModelConfig locates the ONNX model and describes its input.
type ModelConfig struct {
	Path        string `koanf:"path"`
	InputName   string `koanf:"inputname"`
	OutputName  string `koanf:"outputname"`
	InputWidth  int    `koanf:"inputwidth"`
	InputHeight int    `koanf:"inputheight"`
	ColorMode   string `koanf:"colormode"`
}

// DetectionConfig holds the filtering and pipeline settings.
type DetectionConfig struct {
	Confidence    float32 `koanf:"confidence"`
	IoU           float32 `koanf:"iou"`
	MaxCandidates int     `koanf:"maxcandidates"`
	ClampToFrame  bool    `koanf:"clamptoframe"`
	Workers       int     `koanf:"workers"`
	BatchSize     int     `koanf:"batchsize"`
	WarmUp        int     `koanf:"warmup"`
}

// LogConfig configures logging.
type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// StoreConfig configures result persistence. An empty path disables it.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// DrawConfig configures annotated image output.
type DrawConfig struct {
	Enabled   bool   `koanf:"enabled"`
	OutputDir string `koanf:"outputdir"`
	Format    string `koanf:"format"`
	Thickness int    `koanf:"thickness"`
	Seed      int64  `koanf:"seed"`
}

// AppConfig is the whole application configuration.
type AppConfig struct {
	Model     ModelConfig      `koanf:"model"`
	Detection DetectionConfig  `koanf:"detection"`
	Provider  providers.Config `koanf:"provider"`
	Log       LogConfig        `koanf:"log"`
	Store     StoreConfig      `koanf:"store"`
	Draw      DrawConfig       `koanf:"draw"`
	Labels    []string         `koanf:"labels"`
}

// Defaults returns the flattened default values loaded before any file.
func Defaults() map[string]any {
	return map[string]any{
		"model.path":                   "models/yolov5s.onnx",
		"model.inputname":              inference.DefaultInputName,
		"model.outputname":             inference.DefaultOutputName,
		"model.inputwidth":             yolov5.DefaultInputSize,
		"model.inputheight":            yolov5.DefaultInputSize,
		"model.colormode":              string(preprocess.ColorModeRGB),
		"detection.confidence":         yolov5.DefaultConfidenceThreshold,
		"detection.iou":                yolov5.DefaultIoUThreshold,
		"detection.maxcandidates":      postprocess.DefaultMaxCandidates,
		"detection.clamptoframe":       true,
		"detection.workers":            1,
		"detection.batchsize":          1,
		"detection.warmup":             1,
		"provider.backend":             string(providers.CPUProviderBackend),
		"provider.graphoptimization":   string(providers.GraphOptimizationExtended),
		"provider.openvino.devicetype": "CPU",
		"log.debug":                    false,
		"draw.enabled":                 false,
		"draw.outputdir":               "out",
		"draw.format":                  "jpeg",
		"draw.thickness":               detector.DefaultThickness,
		"draw.seed":                    1,
	}
}

// Load reads the defaults, then the YAML file at path (skipped when path is
// empty), then YOLO_ environment variables, and validates the result.
//
// Arguments:
//   - path: The YAML file, or "" for defaults and environment only.
//
// Returns:
//   - *AppConfig: The merged configuration.
//   - error: If the file cannot be read or parsed, or validation fails.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
		if strings.Contains(v, ",") {
			parts := strings.Split(strings.TrimSpace(v), ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, v
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside the pipeline.
func (c *AppConfig) Validate() error {
	if c.Model.Path == "" {
		return errors.Wrap(ErrInvalidConfig, "model.path is required")
	}
	if c.Model.InputWidth <= 0 || c.Model.InputHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "model input size %dx%d",
			c.Model.InputWidth, c.Model.InputHeight)
	}
	if _, err := preprocess.ParseColorMode(c.Model.ColorMode); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "model.colormode: %v", err)
	}
	if err := c.postprocess().Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "detection: %v", err)
	}
	if c.Detection.Workers < 0 || c.Detection.BatchSize < 0 || c.Detection.WarmUp < 0 {
		return errors.Wrap(ErrInvalidConfig, "detection workers, batchsize and warmup must not be negative")
	}
	if err := c.Provider.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "provider: %v", err)
	}
	switch strings.ToLower(c.Draw.Format) {
	case "", "jpeg", "jpg", "png", "webp":
	default:
		return errors.Wrapf(ErrInvalidConfig, "draw.format %q", c.Draw.Format)
	}
	return nil
}

func (c *AppConfig) postprocess() postprocess.Config {
	return postprocess.Config{
		ConfidenceThreshold: c.Detection.Confidence,
		IoUThreshold:        c.Detection.IoU,
		MaxCandidates:       c.Detection.MaxCandidates,
		Workers:             c.Detection.Workers,
	}
}

// Engine returns the ONNX engine configuration.
func (c *AppConfig) Engine() inference.Config {
	return inference.Config{
		ModelPath:  c.Model.Path,
		InputName:  c.Model.InputName,
		OutputName: c.Model.OutputName,
		Provider:   c.Provider,
	}
}

// Detector returns the pipeline configuration.
func (c *AppConfig) Detector() detector.Config {
	return detector.Config{
		InputWidth:          c.Model.InputWidth,
		InputHeight:         c.Model.InputHeight,
		ColorMode:           preprocess.ColorMode(strings.ToLower(c.Model.ColorMode)),
		ConfidenceThreshold: c.Detection.Confidence,
		IoUThreshold:        c.Detection.IoU,
		MaxCandidates:       c.Detection.MaxCandidates,
		ClampToFrame:        c.Detection.ClampToFrame,
		Workers:             c.Detection.Workers,
	}
}
