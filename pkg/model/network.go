package model

import (
	"context"
	"fmt"

	"github.com/nlpodyssey/spago/pkg/mat"
	"github.com/nlpodyssey/spago/pkg/mat/rand"
	"github.com/nlpodyssey/spago/pkg/ml/ag"
	"github.com/nlpodyssey/spago/pkg/ml/initializers"
	"github.com/nlpodyssey/spago/pkg/ml/nn"
	"github.com/nlpodyssey/spago/pkg/ml/nn/linear"
)

var (
	_ nn.Model     = &Network{}
	_ nn.Processor = &NetworkProcessor{}
	_ BlackBox     = &Network{}
)

// Network is a feed-forward classifier over the encoded record vector: one
// hidden linear layer with ReLU and a linear output layer, softmax at
// inference time. Training happens outside this package.
type Network struct {
	InputDimension  int
	HiddenDimension int
	OutputDimension int

	HiddenLayer *linear.Model
	OutputLayer *linear.Model
}

func NewNetwork(inputDimension, hiddenDimension, outputDimension int) *Network {
	return &Network{
		InputDimension:  inputDimension,
		HiddenDimension: hiddenDimension,
		OutputDimension: outputDimension,
		HiddenLayer:     linear.New(inputDimension, hiddenDimension),
		OutputLayer:     linear.New(hiddenDimension, outputDimension),
	}
}

func (m *Network) Init(generator *rand.LockedRand) {
	gain := initializers.Gain(ag.OpIdentity)
	initializers.XavierUniform(m.HiddenLayer.W.Value(), gain, generator)
	initializers.XavierUniform(m.OutputLayer.W.Value(), gain, generator)
}

type NetworkProcessor struct {
	nn.BaseProcessor
	hiddenProcessor nn.Processor
	outputProcessor nn.Processor
}

func (m *Network) NewProc(g *ag.Graph) nn.Processor {
	return &NetworkProcessor{
		BaseProcessor: nn.BaseProcessor{
			Model:             m,
			Mode:              nn.Training,
			Graph:             g,
			FullSeqProcessing: true,
		},
		hiddenProcessor: m.HiddenLayer.NewProc(g),
		outputProcessor: m.OutputLayer.NewProc(g),
	}
}

func (p *NetworkProcessor) SetMode(mode nn.ProcessingMode) {
	p.Mode = mode
	p.hiddenProcessor.SetMode(mode)
	p.outputProcessor.SetMode(mode)
}

func (p *NetworkProcessor) Forward(xs ...ag.Node) []ag.Node {
	g := p.Graph
	hidden := p.hiddenProcessor.Forward(xs...)
	for i := range hidden {
		hidden[i] = g.ReLU(hidden[i])
	}
	return p.outputProcessor.Forward(hidden...)
}

func (m *Network) NumClasses() int {
	return m.OutputDimension
}

func (m *Network) PredictBatch(ctx context.Context, batch []*Record) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A fresh graph per call keeps concurrent inference free of shared state.
	g := ag.NewGraph(ag.Rand(rand.NewLockedRand(42)))
	defer g.Clear()

	input := make([]ag.Node, len(batch))
	for i, record := range batch {
		encoded := Encode(record)
		if len(encoded) != m.InputDimension {
			return nil, fmt.Errorf("encoded record has %d features, network expects %d", len(encoded), m.InputDimension)
		}
		features := mat.NewEmptyVecDense(m.InputDimension)
		for j, value := range encoded {
			features.Set(j, 0, value)
		}
		input[i] = g.NewVariable(features, false)
	}

	proc := m.NewProc(g)
	proc.SetMode(nn.Inference)
	logits := proc.Forward(input...)

	result := make([][]float64, len(logits))
	for i := range logits {
		probs := g.Softmax(logits[i]).Value().Data()
		result[i] = make([]float64, len(probs))
		copy(result[i], probs)
	}
	return result, nil
}
