package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	tests := map[string]struct {
		values []string
		exp    []string
	}{
		"Nothing should return an empty list": {
			exp: []string{},
		},
		"Repeated values should be kept in order": {
			values: []string{"pbzip2", "pfscan"},
			exp:    []string{"pbzip2", "pfscan"},
		},
		"Comma separated values should be split and trimmed": {
			values: []string{"pbzip2, pfscan", ",phoenix,"},
			exp:    []string{"pbzip2", "pfscan", "phoenix"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.exp, splitList(tc.values))
		})
	}
}

func TestRunFlagsLoadInput(t *testing.T) {
	inputFile := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(inputFile, []byte("from-file"), 0o600))

	tests := map[string]struct {
		flags  runFlags
		stdin  string
		exp    []byte
		expErr bool
	}{
		"No input should be nil": {},
		"Inline input should be used": {
			flags: runFlags{input: "inline"},
			exp:   []byte("inline"),
		},
		"Input file should be read": {
			flags: runFlags{inputFile: inputFile},
			exp:   []byte("from-file"),
		},
		"Dash input file should read stdin": {
			flags: runFlags{inputFile: "-"},
			stdin: "from-stdin",
			exp:   []byte("from-stdin"),
		},
		"Both inputs should fail": {
			flags:  runFlags{input: "a", inputFile: inputFile},
			expErr: true,
		},
		"Missing input file should fail": {
			flags:  runFlags{inputFile: filepath.Join(t.TempDir(), "missing")},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := tc.flags.loadInput(strings.NewReader(tc.stdin))

			if tc.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.exp, got)
		})
	}
}

func TestRunFlagsEnviron(t *testing.T) {
	t.Setenv("DIFFRUN_TEST_HOST", "host")

	environ, err := runFlags{envSpecs: []string{"DIFFRUN_TEST_HOST=override", "LD_BIND_NOW=1"}}.environ()
	require.NoError(t, err)
	assert.Contains(t, environ, "DIFFRUN_TEST_HOST=override")
	assert.Contains(t, environ, "LD_BIND_NOW=1")
	assert.NotContains(t, environ, "DIFFRUN_TEST_HOST=host")

	_, err = runFlags{envSpecs: []string{"1BAD=x"}}.environ()
	assert.Error(t, err)
}
