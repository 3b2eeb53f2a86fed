//go:build unix

package compare_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/diffrun/internal/app/compare"
	"github.com/slok/diffrun/internal/model"
	"github.com/slok/diffrun/internal/runner/local"
)

func sh(script string) model.CommandSpec {
	return model.CommandSpec{Path: "/bin/sh", Args: []string{"-c", script}}
}

func TestServiceRunLocal(t *testing.T) {
	tests := map[string]struct {
		reference model.CommandSpec
		candidate model.CommandSpec
		input     []byte
		timeout   time.Duration
		mode      model.OutputMode
		expErr    error
		expMaxDur time.Duration
	}{
		"Both echo hello should pass": {
			reference: model.CommandSpec{Path: "/bin/echo", Args: []string{"hello"}},
			candidate: model.CommandSpec{Path: "/bin/echo", Args: []string{"hello"}},
			timeout:   5 * time.Second,
		},
		"Comparing a program against itself with input should pass": {
			reference: model.CommandSpec{Path: "/bin/sh", Args: []string{"-c", "sort; echo done >&2"}},
			candidate: model.CommandSpec{Path: "/bin/sh", Args: []string{"-c", "sort; echo done >&2"}},
			input:     []byte("c\nb\na\n"),
			timeout:   5 * time.Second,
		},
		"Differing exit codes should be an exit code mismatch": {
			reference: sh("echo same; exit 0"),
			candidate: sh("echo same; exit 2"),
			timeout:   5 * time.Second,
			expErr:    model.ErrExitCodeMismatch,
		},
		"Differing stdout should be an output mismatch": {
			reference: sh("printf A"),
			candidate: sh("printf B"),
			timeout:   5 * time.Second,
			expErr:    model.ErrOutputMismatch,
		},
		"Differing stderr in combined mode should be an output mismatch": {
			reference: sh("echo out; echo one >&2"),
			candidate: sh("echo out; echo two >&2"),
			timeout:   5 * time.Second,
			mode:      model.OutputModeCombined,
			expErr:    model.ErrOutputMismatch,
		},
		"A candidate that never terminates should time out": {
			reference: sh("echo ok"),
			candidate: sh("echo ok; exec sleep 60"),
			timeout:   2 * time.Second,
			expErr:    model.ErrReadinessTimeout,
			expMaxDur: 6 * time.Second,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := local.NewRunner(local.RunnerConfig{})
			require.NoError(t, err)
			svc, err := compare.NewService(compare.ServiceConfig{Runner: r})
			require.NoError(t, err)

			start := time.Now()
			err = svc.Run(context.Background(), compare.Request{
				Reference: test.reference,
				Candidate: test.candidate,
				Input:     test.input,
				Timeout:   test.timeout,
				Mode:      test.mode,
			})

			if test.expErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.expErr)
			}
			if test.expMaxDur > 0 {
				assert.Less(t, time.Since(start), test.expMaxDur)
			}
		})
	}
}
