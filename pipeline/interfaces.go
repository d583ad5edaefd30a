package pipeline

import "context"

// Source feeds payloads into a Pipeline.
type Source interface {
	// Next advances to the next payload. It returns false once the source
	// is exhausted or has failed.
	Next(context.Context) bool

	// Payload returns the payload Next advanced to.
	Payload() Payload

	// Error returns the error that stopped the source, if any.
	Error() error
}

// Payload is the unit of work that flows through the pipeline stages.
type Payload interface {
	// Clone returns a deep copy of the payload.
	Clone() Payload

	// MarkAsProcessed is called once the payload has either been consumed
	// by the sink or dropped by a stage.
	MarkAsProcessed()
}

// Processor handles payloads for a single stage. Returning a nil payload
// drops it; returning an error aborts the whole pipeline.
type Processor interface {
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageRunner runs one stage of the pipeline. Run blocks until its input
// channel is closed, ctx is cancelled or processing fails.
type StageRunner interface {
	Run(context.Context, StageParams)
}

// StageParams carries the channels a StageRunner reads from and writes to.
type StageParams interface {
	// StageIndex is the position of the stage in the pipeline.
	StageIndex() int

	Input() <-chan Payload
	Output() chan<- Payload
	Error() chan<- error
}

// Sink receives the payloads that make it through every stage.
type Sink interface {
	Consume(context.Context, Payload) error
}

type stageParams struct {
	stage   int
	inChan  <-chan Payload
	outChan chan<- Payload
	errChan chan<- error
}

func (p *stageParams) StageIndex() int        { return p.stage }
func (p *stageParams) Input() <-chan Payload  { return p.inChan }
func (p *stageParams) Output() chan<- Payload { return p.outChan }
func (p *stageParams) Error() chan<- error    { return p.errChan }
