//go:build unix

package lib_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/diffrun/pkg/lib"
)

func newTestClient(t *testing.T) *lib.Client {
	t.Helper()

	client, err := lib.New(context.Background(), lib.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestClientCompare(t *testing.T) {
	tests := map[string]struct {
		reference lib.Command
		candidate lib.Command
		opts      lib.CompareOpts
		expErr    error
	}{
		"Same programs should pass.": {
			reference: lib.Command{Path: "/bin/echo", Args: []string{"hello"}},
			candidate: lib.Command{Path: "/bin/echo", Args: []string{"hello"}},
			opts:      lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 10 * time.Second}},
		},

		"Different output should fail with an output mismatch.": {
			reference: lib.Command{Path: "/bin/echo", Args: []string{"a"}},
			candidate: lib.Command{Path: "/bin/echo", Args: []string{"b"}},
			opts:      lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 10 * time.Second}},
			expErr:    lib.ErrOutputMismatch,
		},

		"Different exit codes should fail with an exit code mismatch.": {
			reference: lib.Command{Path: "/bin/sh", Args: []string{"-c", "exit 0"}},
			candidate: lib.Command{Path: "/bin/sh", Args: []string{"-c", "exit 3"}},
			opts:      lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 10 * time.Second}},
			expErr:    lib.ErrExitCodeMismatch,
		},

		"A missing candidate executable should fail with a launch error.": {
			reference: lib.Command{Path: "/bin/echo"},
			candidate: lib.Command{Path: "/does/not/exist"},
			opts:      lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 10 * time.Second}},
			expErr:    lib.ErrLaunch,
		},

		"A silent candidate should fail with a readiness timeout.": {
			reference: lib.Command{Path: "/bin/echo"},
			candidate: lib.Command{Path: "/bin/sleep", Args: []string{"60"}},
			opts:      lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 500 * time.Millisecond}},
			expErr:    lib.ErrReadinessTimeout,
		},

		"Input should be delivered to both programs.": {
			reference: lib.Command{Path: "/bin/cat"},
			candidate: lib.Command{Path: "/bin/sh", Args: []string{"-c", "cat"}},
			opts:      lib.CompareOpts{RunOpts: lib.RunOpts{Input: []byte("some input\n"), Timeout: 10 * time.Second}},
		},

		"A missing timeout should fail.": {
			reference: lib.Command{Path: "/bin/echo"},
			candidate: lib.Command{Path: "/bin/echo"},
			expErr:    lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t)

			err := client.Compare(context.Background(), test.reference, test.candidate, test.opts)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientCompareRecord(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	client := newTestClient(t)

	opts := lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 10 * time.Second}, Record: true, Workload: "echo"}
	err := client.Compare(ctx, lib.Command{Path: "/bin/echo", Args: []string{"a"}}, lib.Command{Path: "/bin/echo", Args: []string{"a"}}, opts)
	require.NoError(err)
	err = client.Compare(ctx, lib.Command{Path: "/bin/echo", Args: []string{"a"}}, lib.Command{Path: "/bin/echo", Args: []string{"b"}}, opts)
	require.ErrorIs(err, lib.ErrOutputMismatch)

	verdicts, err := client.ListVerdicts(ctx, nil)
	require.NoError(err)
	require.Len(verdicts, 2)

	// Newest first.
	assert.Equal(lib.VerdictStatusFail, verdicts[0].Status)
	assert.Equal("output-mismatch", verdicts[0].Failure)
	assert.Equal("stdout", verdicts[0].Channel)
	assert.Equal("/bin/echo b", verdicts[0].Candidate)
	assert.Equal(lib.VerdictStatusPass, verdicts[1].Status)
	assert.Equal("echo", verdicts[1].Workload)

	failed := lib.VerdictStatusFail
	verdicts, err = client.ListVerdicts(ctx, &lib.ListVerdictsOpts{Status: &failed})
	require.NoError(err)
	require.Len(verdicts, 1)

	got, err := client.GetVerdict(ctx, verdicts[0].ID)
	require.NoError(err)
	assert.Equal(verdicts[0], *got)

	_, err = client.GetVerdict(ctx, "missing")
	assert.ErrorIs(err, lib.ErrNotFound)
}

func TestClientHash(t *testing.T) {
	tests := map[string]struct {
		cmd       lib.Command
		opts      lib.RunOpts
		expErr    error
		expResult *lib.RunResult
	}{
		"Separate mode should digest each channel.": {
			cmd:  lib.Command{Path: "/bin/echo", Args: []string{"hello"}},
			opts: lib.RunOpts{Timeout: 10 * time.Second},
			expResult: &lib.RunResult{
				ExitCode: 0,
				Mode:     lib.OutputModeSeparate,
				Digests: map[string]string{
					"stdout": "b1946ac92492d2347c6235b4d2611184",
					"stderr": "d41d8cd98f00b204e9800998ecf8427e",
				},
			},
		},

		"Combined mode should digest a single channel.": {
			cmd:  lib.Command{Path: "/bin/echo", Args: []string{"hello"}},
			opts: lib.RunOpts{Timeout: 10 * time.Second, Mode: lib.OutputModeCombined},
			expResult: &lib.RunResult{
				ExitCode: 0,
				Mode:     lib.OutputModeCombined,
				Digests: map[string]string{
					"combined": "b1946ac92492d2347c6235b4d2611184",
				},
			},
		},

		"A signal killed process should return the negated signal number.": {
			cmd:  lib.Command{Path: "/bin/sh", Args: []string{"-c", "kill -9 $$"}},
			opts: lib.RunOpts{Timeout: 10 * time.Second},
			expResult: &lib.RunResult{
				ExitCode: -9,
				Mode:     lib.OutputModeSeparate,
				Digests: map[string]string{
					"stdout": "d41d8cd98f00b204e9800998ecf8427e",
					"stderr": "d41d8cd98f00b204e9800998ecf8427e",
				},
			},
		},

		"An unknown digest should fail.": {
			cmd:    lib.Command{Path: "/bin/echo"},
			opts:   lib.RunOpts{Timeout: 10 * time.Second, Digest: "crc32"},
			expErr: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t)

			res, err := client.Hash(context.Background(), test.cmd, test.opts)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else if assert.NoError(t, err) {
				assert.Equal(t, test.expResult, res)
			}
		})
	}
}

func TestClientRunSuite(t *testing.T) {
	catalog := `
arches: [amd64, aarch64]
env:
  DIFFRUN_TEST_ARCH: "{arch}-{bits}"
timeout: 10s
workloads:
  - name: env
    reference: /bin/sh
    candidate: /bin/sh
    args: ["-c", "echo $DIFFRUN_TEST_ARCH"]
  - name: differ
    reference: /bin/echo
    candidate: /bin/sh
    args: ["-c", "exit 1"]
  - name: input
    reference: /bin/cat
    candidate: /bin/cat
    input_file: data/in.txt
`

	tests := map[string]struct {
		opts       lib.SuiteOpts
		expErr     error
		expPassed  int
		expFailed  int
		expAborted bool
	}{
		"Running passing workloads on all the catalog arches should pass.": {
			opts:      lib.SuiteOpts{Workloads: []string{"env", "input"}},
			expPassed: 4,
		},

		"A failure should stop the suite.": {
			opts:       lib.SuiteOpts{Workloads: []string{"differ", "env"}},
			expFailed:  1,
			expAborted: true,
		},

		"Continuing on failure should run every comparison.": {
			opts:      lib.SuiteOpts{ContinueOnFailure: true, Arches: []string{"x86_64"}},
			expPassed: 2,
			expFailed: 1,
		},

		"Self test should compare the references against themselves.": {
			opts:      lib.SuiteOpts{SelfTest: true, Arches: []string{"arm64"}},
			expPassed: 3,
		},

		"An unknown workload should fail.": {
			opts:   lib.SuiteOpts{Workloads: []string{"missing"}},
			expErr: lib.ErrNotFound,
		},

		"An unknown arch should fail.": {
			opts:   lib.SuiteOpts{Arches: []string{"sparc"}},
			expErr: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			require.NoError(os.MkdirAll(filepath.Join(dir, "data"), 0o755))
			require.NoError(os.WriteFile(filepath.Join(dir, "data", "in.txt"), []byte("1\n2\n"), 0o644))
			require.NoError(os.WriteFile(filepath.Join(dir, "diffrun.yaml"), []byte(catalog), 0o644))

			client := newTestClient(t)
			test.opts.CatalogPath = filepath.Join(dir, "diffrun.yaml")

			summary, err := client.RunSuite(context.Background(), test.opts)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.expPassed, summary.Passed)
			assert.Equal(test.expFailed, summary.Failed)
			assert.Equal(test.expAborted, summary.Aborted)
			assert.Len(summary.Verdicts, test.expPassed+test.expFailed)
		})
	}
}

func TestClientRunSuiteMissingCatalog(t *testing.T) {
	client := newTestClient(t)

	_, err := client.RunSuite(context.Background(), lib.SuiteOpts{})
	assert.ErrorIs(t, err, lib.ErrNotValid)
}
