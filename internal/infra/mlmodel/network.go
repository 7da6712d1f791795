package mlmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/yanqian/aq-predictor/internal/domain/predictor"
)

// FormatV1 identifies the dense network artifact layout.
const FormatV1 = "aq-dense/v1"

// Activation names accepted in artifacts.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationTanh    = "tanh"
	ActivationSigmoid = "sigmoid"
)

// Artifact is the serialized form: architecture plus weights.
type Artifact struct {
	Format     string       `json:"format"`
	InputWidth int          `json:"inputWidth"`
	Features   []string     `json:"features,omitempty"`
	Layers     []LayerSpec  `json:"layers"`
	Meta       ArtifactMeta `json:"meta"`
}

// LayerSpec is one fully connected layer; Weights has one row per output unit.
type LayerSpec struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation,omitempty"`
}

// ArtifactMeta carries descriptive fields written by the training pipeline.
type ArtifactMeta struct {
	Name      string `json:"name,omitempty"`
	Target    string `json:"target,omitempty"`
	TrainedAt string `json:"trainedAt,omitempty"`
}

// Network is an immutable feed-forward regression model with a scalar output.
type Network struct {
	inputWidth int
	features   []string
	layers     []layer
	meta       ArtifactMeta
}

type layer struct {
	weights    [][]float64
	bias       []float64
	activation func(float64) float64
}

// Decode reads and validates a JSON artifact.
func Decode(r io.Reader) (*Network, error) {
	var art Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&art); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return New(art)
}

// New validates an artifact and builds the network.
func New(art Artifact) (*Network, error) {
	if art.Format != "" && art.Format != FormatV1 {
		return nil, fmt.Errorf("unsupported model format %q", art.Format)
	}
	if art.InputWidth <= 0 {
		return nil, errors.New("model inputWidth must be positive")
	}
	if len(art.Layers) == 0 {
		return nil, errors.New("model has no layers")
	}
	if len(art.Features) > 0 && len(art.Features) != art.InputWidth {
		return nil, fmt.Errorf("model lists %d features for inputWidth %d", len(art.Features), art.InputWidth)
	}

	layers := make([]layer, 0, len(art.Layers))
	in := art.InputWidth
	for i, spec := range art.Layers {
		if len(spec.Weights) == 0 {
			return nil, fmt.Errorf("layer %d has no units", i)
		}
		if len(spec.Bias) != len(spec.Weights) {
			return nil, fmt.Errorf("layer %d has %d weight rows but %d biases", i, len(spec.Weights), len(spec.Bias))
		}
		for j, row := range spec.Weights {
			if len(row) != in {
				return nil, fmt.Errorf("layer %d unit %d has %d weights, want %d", i, j, len(row), in)
			}
			if !allFinite(row) {
				return nil, fmt.Errorf("layer %d unit %d has non-finite weights", i, j)
			}
		}
		if !allFinite(spec.Bias) {
			return nil, fmt.Errorf("layer %d has non-finite bias", i)
		}
		act, err := activationFor(spec.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers = append(layers, layer{weights: spec.Weights, bias: spec.Bias, activation: act})
		in = len(spec.Weights)
	}
	if in != 1 {
		return nil, fmt.Errorf("model output width is %d, want 1", in)
	}

	names := make([]string, len(art.Features))
	copy(names, art.Features)
	if len(names) == 0 {
		names = nil
	}
	return &Network{
		inputWidth: art.InputWidth,
		features:   names,
		layers:     layers,
		meta:       art.Meta,
	}, nil
}

// Predict runs a forward pass.
func (n *Network) Predict(x []float64) (float64, error) {
	if len(x) != n.inputWidth {
		return 0, fmt.Errorf("model expects %d input features, got %d", n.inputWidth, len(x))
	}
	cur := x
	for _, l := range n.layers {
		next := make([]float64, len(l.weights))
		for j, row := range l.weights {
			sum := l.bias[j]
			for k, w := range row {
				sum += w * cur[k]
			}
			next[j] = l.activation(sum)
		}
		cur = next
	}
	return cur[0], nil
}

// InputWidth is the number of features the first layer consumes.
func (n *Network) InputWidth() int {
	return n.inputWidth
}

// FeatureNames returns the trained column order, if the artifact recorded one.
func (n *Network) FeatureNames() []string {
	if n.features == nil {
		return nil
	}
	out := make([]string, len(n.features))
	copy(out, n.features)
	return out
}

// Meta returns the descriptive artifact fields.
func (n *Network) Meta() ArtifactMeta {
	return n.meta
}

func activationFor(name string) (func(float64) float64, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ActivationLinear, "identity":
		return func(v float64) float64 { return v }, nil
	case ActivationReLU:
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case ActivationTanh:
		return math.Tanh, nil
	case ActivationSigmoid:
		return func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, nil
	default:
		return nil, fmt.Errorf("unsupported activation %q", name)
	}
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

var _ predictor.Model = (*Network)(nil)
