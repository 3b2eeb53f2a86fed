package local

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/process"
)

// supervisor bounds the blocking waits of a run and makes sure a process that
// overruns them doesn't stay alive.
type supervisor struct {
	logger log.Logger
}

// abort kills the process before a failure is returned.
func (s supervisor) abort(p *process.Process, cause error) error {
	if err := p.Kill(); err != nil {
		s.logger.Errorf("could not kill (%s) after %s: %s", p.Command(), cause, err)
		return fmt.Errorf("%w (kill also failed: %s)", cause, err)
	}
	return cause
}

// awaitExit waits for a process that already closed all its output channels.
// If it doesn't exit within the timeout it's killed and a model.ExitTimeoutError
// is returned. Zero timeout waits forever.
func (s supervisor) awaitExit(ctx context.Context, p *process.Process, timeout time.Duration) (int, error) {
	type exit struct {
		code int
		err  error
	}
	done := make(chan exit, 1)
	go func() {
		code, err := p.Wait()
		done <- exit{code: code, err: err}
	}()

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case e := <-done:
		return e.code, e.err
	case <-timeoutC:
		s.logger.Warningf("(%s) didn't exit %s after ceasing output, killing it", p.Command(), timeout)
		return 0, s.abort(p, &model.ExitTimeoutError{Command: p.Command(), Timeout: timeout})
	case <-ctx.Done():
		return 0, s.abort(p, ctx.Err())
	}
}
