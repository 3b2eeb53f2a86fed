//go:build unix

package process

import (
	"context"
	"io"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
)

func newLauncher(t *testing.T, env []string) *Launcher {
	t.Helper()
	l, err := NewLauncher(LauncherConfig{Env: env, Logger: log.Noop})
	require.NoError(t, err)
	return l
}

// readAll drains every stream of the process concurrently.
func readAll(t *testing.T, p *Process) map[model.Channel]string {
	t.Helper()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = map[model.Channel]string{}
	)
	for _, s := range p.Streams() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := io.ReadAll(s.Reader)
			assert.NoError(t, err)
			mu.Lock()
			out[s.Channel] = string(data)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return out
}

func TestLauncherLaunch(t *testing.T) {
	tests := map[string]struct {
		env         []string
		spec        model.CommandSpec
		mode        model.OutputMode
		expOut      map[model.Channel]string
		expExitCode int
	}{
		"Separate mode should capture stdout and stderr independently": {
			spec:        model.CommandSpec{Path: "/bin/sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}},
			mode:        model.OutputModeSeparate,
			expOut:      map[model.Channel]string{model.ChannelStdout: "out\n", model.ChannelStderr: "err\n"},
			expExitCode: 3,
		},
		"Combined mode should merge stderr into stdout": {
			spec:   model.CommandSpec{Path: "/bin/sh", Args: []string{"-c", "echo out; echo err >&2"}},
			mode:   model.OutputModeCombined,
			expOut: map[model.Channel]string{model.ChannelCombined: "out\nerr\n"},
		},
		"Input payload should be delivered on stdin": {
			spec:   model.CommandSpec{Path: "/bin/cat", Input: []byte("some input")},
			mode:   model.OutputModeSeparate,
			expOut: map[model.Channel]string{model.ChannelStdout: "some input", model.ChannelStderr: ""},
		},
		"Missing input should be an empty stdin": {
			spec:   model.CommandSpec{Path: "/bin/cat"},
			mode:   model.OutputModeSeparate,
			expOut: map[model.Channel]string{model.ChannelStdout: "", model.ChannelStderr: ""},
		},
		"Explicit environment should be the child environment": {
			env:    []string{"DIFFRUN_TEST=explicit"},
			spec:   model.CommandSpec{Path: "/bin/sh", Args: []string{"-c", "echo $DIFFRUN_TEST"}},
			mode:   model.OutputModeSeparate,
			expOut: map[model.Channel]string{model.ChannelStdout: "explicit\n", model.ChannelStderr: ""},
		},
		"A process killed by a signal should return the negated signal": {
			spec:        model.CommandSpec{Path: "/bin/sh", Args: []string{"-c", "kill -TERM $$"}},
			mode:        model.OutputModeSeparate,
			expOut:      map[model.Channel]string{model.ChannelStdout: "", model.ChannelStderr: ""},
			expExitCode: -15,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			p, err := newLauncher(t, test.env).Launch(context.Background(), test.spec, test.mode)
			require.NoError(err)

			out := readAll(t, p)
			code, err := p.Wait()
			require.NoError(err)

			assert.Equal(test.expOut, out)
			assert.Equal(test.expExitCode, code)
			assert.False(p.Running())
		})
	}
}

func TestLauncherLaunchErrors(t *testing.T) {
	tests := map[string]struct {
		spec      model.CommandSpec
		mode      model.OutputMode
		expErrIs  []error
		expLaunch bool
	}{
		"Missing executable should fail with a launch error": {
			spec:      model.CommandSpec{Path: "/nonexistent/binary"},
			mode:      model.OutputModeSeparate,
			expErrIs:  []error{model.ErrLaunch, fs.ErrNotExist},
			expLaunch: true,
		},
		"Missing path should be invalid": {
			spec:     model.CommandSpec{},
			mode:     model.OutputModeSeparate,
			expErrIs: []error{model.ErrNotValid},
		},
		"Unknown mode should be invalid": {
			spec:     model.CommandSpec{Path: "/bin/true"},
			mode:     "interleaved",
			expErrIs: []error{model.ErrNotValid},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := newLauncher(t, nil).Launch(context.Background(), test.spec, test.mode)
			for _, target := range test.expErrIs {
				assert.ErrorIs(err, target)
			}

			var launchErr *model.LaunchError
			if test.expLaunch && assert.ErrorAs(err, &launchErr) {
				assert.Equal(test.spec.Path, launchErr.Command.Path)
			}
		})
	}
}

func TestProcessKillReachesChildren(t *testing.T) {
	require := require.New(t)

	// The shell spawns a sleep that inherits the output pipes.
	p, err := newLauncher(t, nil).Launch(context.Background(), model.CommandSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "sleep 30 & sleep 30"},
	}, model.OutputModeSeparate)
	require.NoError(err)

	// The pipes only reach EOF if every process of the group is dead.
	require.NoError(killGroup(p.cmd.Process))
	out := readAll(t, p)
	assert.Equal(t, map[model.Channel]string{model.ChannelStdout: "", model.ChannelStderr: ""}, out)

	require.NoError(p.Kill())
	assert.False(t, p.Running())
	assert.ErrorIs(t, unix.Kill(p.Pid(), 0), unix.ESRCH)

	// Killing twice is a noop.
	assert.NoError(t, p.Kill())
}
