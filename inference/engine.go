// Package inference - Inference engine interface and implementations.
package inference

import (
	"context"

	"gorgonia.org/tensor"
)

// Engine runs the forward pass of a detection model.
//
// Run receives a float32 batch of shape [batch, 3, height, width] with values
// in [0, 1] and returns the raw prediction of shape [batch, anchors, 5+classes].
type Engine interface {
	Run(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error)
	Close() error
}

// EngineFunc adapts a plain function to the Engine interface. Close is a no-op.
type EngineFunc func(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error)

// Run calls f(ctx, input).
func (f EngineFunc) Run(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	return f(ctx, input)
}

// Close implements Engine.
func (f EngineFunc) Close() error {
	return nil
}
