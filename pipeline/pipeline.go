// Package pipeline implements a multi-stage, channel based processing
// pipeline behind a synchronous Execute call.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Pipeline chains a list of stage runners between a source and a sink.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline that runs the given stages in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Execute pumps every payload of src through the stages into sink. It
// blocks until the source is drained, ctx is cancelled or any component
// fails; all component errors are accumulated into the returned error.
func (p *Pipeline) Execute(ctx context.Context, src Source, sink Sink) error {
	var wg sync.WaitGroup
	execCtx, cancel := context.WithCancel(ctx)

	// Channel i connects stage i-1 (or the source) to stage i (or the sink).
	chans := make([]chan Payload, len(p.stages)+1)
	for i := range chans {
		chans[i] = make(chan Payload)
	}

	// Room for one error per stage plus the source and the sink.
	errChan := make(chan error, len(p.stages)+2)

	for i, stage := range p.stages {
		wg.Add(1)

		go func(i int, stage StageRunner) {
			defer wg.Done()

			stage.Run(execCtx, &stageParams{
				stage:   i,
				inChan:  chans[i],
				outChan: chans[i+1],
				errChan: errChan,
			})

			// Closing the output lets the next stage wind down in turn.
			close(chans[i+1])
		}(i, stage)
	}

	wg.Add(2)

	go func() {
		defer wg.Done()

		sourceWorker(execCtx, src, chans[0], errChan)
		close(chans[0])
	}()

	go func() {
		defer wg.Done()

		sinkWorker(execCtx, sink, chans[len(chans)-1], errChan)
	}()

	go func() {
		wg.Wait()
		close(errChan)
		cancel()
	}()

	var err error
	for stageErr := range errChan {
		err = multierror.Append(err, stageErr)
		cancel()
	}

	return err
}

func sourceWorker(ctx context.Context, src Source, out chan<- Payload, errChan chan<- error) {
	for src.Next(ctx) {
		select {
		case <-ctx.Done():
			return
		case out <- src.Payload():
		}
	}

	if err := src.Error(); err != nil {
		mayEmitError(fmt.Errorf("pipeline source: %w", err), errChan)
	}
}

func sinkWorker(ctx context.Context, sink Sink, in <-chan Payload, errChan chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-in:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				mayEmitError(fmt.Errorf("pipeline sink: %w", err), errChan)
				return
			}

			payload.MarkAsProcessed()
		}
	}
}

// mayEmitError drops err when the error channel is already full.
func mayEmitError(err error, errChan chan<- error) {
	select {
	case errChan <- err:
	default:
	}
}
