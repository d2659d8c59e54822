package inference

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/nvr-ai/go-yolov5/inference/providers"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

const (
	// DefaultInputName is the input node name of exported YOLOv5 models.
	DefaultInputName = "images"
	// DefaultOutputName is the output node name of exported YOLOv5 models.
	DefaultOutputName = "output0"
)

var (
	// ErrNoModel is returned when neither a model path nor model bytes were given.
	ErrNoModel = errors.New("no model configured")
	// ErrEngineClosed is returned by Run after Close.
	ErrEngineClosed = errors.New("engine closed")
)

// Config describes how to load an ONNX model.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string `json:"path" yaml:"path" koanf:"path"`
	// InputName is the model input node. Empty means DefaultInputName.
	InputName string `json:"input_name" yaml:"input_name" koanf:"inputname"`
	// OutputName is the model output node. Empty means DefaultOutputName.
	OutputName string `json:"output_name" yaml:"output_name" koanf:"outputname"`
	// Provider selects the execution provider and session tuning.
	Provider providers.Config `json:"provider" yaml:"provider" koanf:"provider"`
}

// ONNXEngine runs a model with ONNX Runtime.
//
// The underlying session is shared, so Run calls are serialized.
type ONNXEngine struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	logger     *zap.Logger
}

// EngineBuilder assembles an ONNXEngine with a fluent API.
type EngineBuilder struct {
	cfg    Config
	model  []byte
	logger *zap.Logger
	err    error
}

// NewEngineBuilder creates a new engine builder.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{logger: zap.NewNop()}
}

// WithConfig sets the model location, node names and provider.
func (b *EngineBuilder) WithConfig(cfg Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.cfg = cfg
	return b
}

// WithProvider sets the execution provider for the engine.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithProvider(cfg providers.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if err := cfg.Validate(); err != nil {
		b.err = err
		return b
	}
	b.cfg.Provider = cfg
	return b
}

// WithModelPath loads the model from a file.
func (b *EngineBuilder) WithModelPath(path string) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.cfg.ModelPath = path
	b.model = nil
	return b
}

// WithModelBytes loads the model from an in-memory buffer.
func (b *EngineBuilder) WithModelBytes(data []byte) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if len(data) == 0 {
		b.err = errors.Wrap(ErrNoModel, "empty model buffer")
		return b
	}
	b.model = data
	return b
}

// WithModelReader reads the whole model from r.
func (b *EngineBuilder) WithModelReader(r io.Reader) *EngineBuilder {
	if b.HasError() {
		return b
	}
	data, err := io.ReadAll(r)
	if err != nil {
		b.err = errors.Wrap(err, "read model")
		return b
	}
	return b.WithModelBytes(data)
}

// WithLogger sets the logger used for session lifecycle events.
func (b *EngineBuilder) WithLogger(logger *zap.Logger) *EngineBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// Build initializes the runtime environment and creates the session.
//
// Returns:
//   - *ONNXEngine: The engine.
//   - error: The first error recorded by the builder, ErrNoModel, or a runtime error.
func (b *EngineBuilder) Build() (*ONNXEngine, error) {
	if b.HasError() {
		return nil, b.err
	}
	if b.cfg.ModelPath == "" && len(b.model) == 0 {
		return nil, ErrNoModel
	}

	inputName := b.cfg.InputName
	if inputName == "" {
		inputName = DefaultInputName
	}
	outputName := b.cfg.OutputName
	if outputName == "" {
		outputName = DefaultOutputName
	}

	if err := providers.InitializeEnvironment(b.cfg.Provider.SharedLibraryPath); err != nil {
		return nil, err
	}

	options, err := providers.NewSessionOptions(b.cfg.Provider)
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	start := time.Now()
	var session *ort.DynamicAdvancedSession
	if len(b.model) > 0 {
		session, err = ort.NewDynamicAdvancedSessionWithONNXData(
			b.model, []string{inputName}, []string{outputName}, options)
	} else {
		session, err = ort.NewDynamicAdvancedSession(
			b.cfg.ModelPath, []string{inputName}, []string{outputName}, options)
	}
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	b.logger.Info("onnx session created",
		zap.String("model", b.cfg.ModelPath),
		zap.String("backend", string(b.cfg.Provider.Backend)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &ONNXEngine{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
		logger:     b.logger,
	}, nil
}

// MustBuild builds the engine and panics if there is an error.
func (b *EngineBuilder) MustBuild() *ONNXEngine {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

// NewONNXEngine loads the model at cfg.ModelPath.
func NewONNXEngine(cfg Config, logger *zap.Logger) (*ONNXEngine, error) {
	return NewEngineBuilder().WithLogger(logger).WithConfig(cfg).Build()
}

// NewONNXEngineFromBytes loads a model held in memory. cfg.ModelPath is ignored.
func NewONNXEngineFromBytes(data []byte, cfg Config, logger *zap.Logger) (*ONNXEngine, error) {
	return NewEngineBuilder().WithLogger(logger).WithConfig(cfg).WithModelBytes(data).Build()
}

// NewONNXEngineFromReader loads a model from a stream. cfg.ModelPath is ignored.
func NewONNXEngineFromReader(r io.Reader, cfg Config, logger *zap.Logger) (*ONNXEngine, error) {
	return NewEngineBuilder().WithLogger(logger).WithConfig(cfg).WithModelReader(r).Build()
}

// Run executes one forward pass.
//
// Arguments:
//   - ctx: Checked before the session runs; a running session is not interrupted.
//   - input: A float32 tensor, typically [batch, 3, height, width].
//
// Returns:
//   - *tensor.Dense: A copy of the model output.
//   - error: An error if the input is not float32 or the session fails.
func (e *ONNXEngine) Run(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, errors.New("nil input tensor")
	}
	data, ok := input.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("input dtype %v, want float32", input.Dtype())
	}

	dims := make([]int64, len(input.Shape()))
	for i, d := range input.Shape() {
		dims[i] = int64(d)
	}

	in, err := ort.NewTensor(ort.NewShape(dims...), data)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}
	defer in.Destroy()

	outputs := []ort.Value{nil}

	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	err = e.session.Run([]ort.Value{in}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "error running ORT session")
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Errorf("output %s has type %T, want float32 tensor", e.outputName, outputs[0])
	}

	shape := out.GetShape()
	ints := make([]int, len(shape))
	for i, d := range shape {
		ints[i] = int(d)
	}
	backing := make([]float32, len(out.GetData()))
	copy(backing, out.GetData())

	return tensor.New(tensor.WithShape(ints...), tensor.WithBacking(backing)), nil
}

// Close destroys the session. Further Run calls return ErrEngineClosed.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	if err != nil {
		return errors.Wrap(err, "error destroying ORT session")
	}
	e.logger.Debug("onnx session destroyed")
	return nil
}
