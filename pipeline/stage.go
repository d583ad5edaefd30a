package pipeline

import (
	"context"
	"fmt"
	"sync"
)

type fifo struct {
	proc Processor
}

// NewFIFO returns a StageRunner that processes payloads one at a time in
// arrival order.
func NewFIFO(proc Processor) StageRunner {
	return fifo{proc: proc}
}

func (r fifo) Run(ctx context.Context, params StageParams) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-params.Input():
			if !ok {
				return
			}

			out, err := r.proc.Process(ctx, in)
			if err != nil {
				mayEmitError(fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err), params.Error())
				return
			}

			if out == nil {
				in.MarkAsProcessed()
				continue
			}

			select {
			case <-ctx.Done():
				return
			case params.Output() <- out:
			}
		}
	}
}

type fixedWorkerPool struct {
	fifos []StageRunner
}

// NewFixedWorkerPool returns a StageRunner that spreads payloads over
// numOfWorkers FIFO runners sharing the same input and output channels.
// Output order is not preserved.
func NewFixedWorkerPool(proc Processor, numOfWorkers int) StageRunner {
	if numOfWorkers <= 0 {
		panic("FixedWorkerPool: numOfWorkers must be > 0")
	}

	fifos := make([]StageRunner, numOfWorkers)
	for i := range fifos {
		fifos[i] = NewFIFO(proc)
	}

	return fixedWorkerPool{fifos: fifos}
}

func (r fixedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup

	for _, f := range r.fifos {
		wg.Add(1)

		go func(f StageRunner) {
			defer wg.Done()
			f.Run(ctx, params)
		}(f)
	}

	wg.Wait()
}
