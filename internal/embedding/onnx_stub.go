//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for the real
// implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO.
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Embed is unreachable in non-CGO builds; NewONNXEmbedder always errors.
func (e *ONNXEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// EmbedBatch is unreachable in non-CGO builds; NewONNXEmbedder always errors.
func (e *ONNXEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Dimensions is unreachable in non-CGO builds; NewONNXEmbedder always errors.
func (e *ONNXEmbedder) Dimensions() int {
	return 0
}

// Close is unreachable in non-CGO builds; NewONNXEmbedder always errors.
func (e *ONNXEmbedder) Close() error {
	return nil
}
