package external

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

const (
	maxStderrTail = 4 << 10
	waitDelay     = time.Second
)

// searchArgs returns the arguments appended to the search command.
func searchArgs(req Request, outputBase string) []string {
	args := []string{
		"-q", req.Keyword,
		"-e", req.Engine,
		"-o", outputFormat,
		"-n", outputBase,
		"-p", strconv.Itoa(req.MaxPages),
		"-f", req.FilterField,
	}

	if req.IgnoreDuplicates {
		args = append(args, "-i")
	}

	if req.Proxy != "" {
		args = append(args, "-proxy", req.Proxy)
	}

	return args
}

// runProcess runs argv to completion. A non-zero exit, a failure to start
// or a timeout yields a *ProcessError.
func (a *Aggregator) runProcess(ctx context.Context, argv []string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	stderr := &tailBuffer{max: maxStderrTail}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = a.cfg.WorkDir
	cmd.Env = append(os.Environ(), a.cfg.Env...)
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}

	procErr := &ProcessError{
		Command:  argv,
		ExitCode: -1,
		Stderr:   stderr.String(),
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		procErr.ExitCode = exitErr.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		procErr.Err = ctxErr
	}

	return procErr
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}

	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return string(b.buf)
}
