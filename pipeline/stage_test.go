package pipeline_test

import (
	"context"
	"sort"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/webscout/pipeline"
)

var _ = check.Suite(new(stageRunnerTestSuite))

type stageRunnerTestSuite struct{}

func (s *stageRunnerTestSuite) TestFixedWorkerPoolRunsWorkersInParallel(c *check.C) {
	const numOfWorkers = 5
	arrived := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	proc := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		arrived <- struct{}{}
		<-release

		return nil, nil
	})

	src := &sliceSource{data: stringPayloads(numOfWorkers)}
	go func() {
		done <- pipeline.New(pipeline.NewFixedWorkerPool(proc, numOfWorkers)).Execute(context.TODO(), src, new(collectSink))
	}()

	// Every payload must be in flight at the same time.
	for i := 0; i < numOfWorkers; i++ {
		select {
		case <-arrived:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d", i)
		}
	}
	close(release)

	select {
	case err := <-done:
		c.Assert(err, check.IsNil)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}
}

func (s *stageRunnerTestSuite) TestFixedWorkerPoolDeliversEveryPayload(c *check.C) {
	src := &sliceSource{data: stringPayloads(20)}
	sink := new(collectSink)

	err := pipeline.New(pipeline.NewFixedWorkerPool(appendProc("!"), 4)).Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)

	got := values(sink.data)
	sort.Strings(got)
	want := values(src.data)
	sort.Strings(want)
	c.Assert(got, check.DeepEquals, want)
	assertProcessed(c, sink.data...)
}

func (s *stageRunnerTestSuite) TestFixedWorkerPoolPanicsWithoutWorkers(c *check.C) {
	c.Assert(func() { pipeline.NewFixedWorkerPool(appendProc(""), 0) }, check.PanicMatches, ".*numOfWorkers must be > 0")
}

func (s *stageRunnerTestSuite) TestCancelledContextStopsExecution(c *check.C) {
	ctx, cancel := context.WithCancel(context.Background())
	block := pipeline.ProcessorFunc(func(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		cancel()
		<-ctx.Done()
		return p, nil
	})

	src := &sliceSource{data: stringPayloads(3)}
	err := pipeline.New(pipeline.NewFIFO(block)).Execute(ctx, src, new(collectSink))
	c.Assert(err, check.IsNil)
}
