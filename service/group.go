// Package service runs the long-lived parts of webscout side by side.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Service is a long-running component of the webscout server.
type Service interface {
	// Name returns the name of the service.
	Name() string

	// Run executes the service and blocks until the context gets cancelled
	// or an error occurs.
	Run(context.Context) error
}

// Group is a list of Service instances that execute in parallel.
type Group []Service

// Execute runs every service in the group and blocks until all of them have
// returned. The first service to fail cancels the others; all reported
// errors are accumulated into the returned error. The group also stops once
// every service has returned on its own.
func (g Group) Execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	executionCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	var wg sync.WaitGroup
	wg.Add(len(g))
	errChan := make(chan error, len(g))

	for _, s := range g {
		go func(s Service) {
			defer wg.Done()

			if err := s.Run(executionCtx); err != nil {
				errChan <- fmt.Errorf("%s: %w", s.Name(), err)
				cancelFn()
			}
		}(s)
	}

	go func() {
		wg.Wait()
		cancelFn()
	}()

	<-executionCtx.Done()
	wg.Wait()

	var err error
	close(errChan)
	for srvErr := range errChan {
		err = multierror.Append(err, srvErr)
	}

	return err
}
