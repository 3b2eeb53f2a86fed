package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/diffrun/internal/utils/env"
)

func TestParseSpecs(t *testing.T) {
	t.Setenv("FROM_HOST", "host-value")

	tests := map[string]struct {
		specs  []string
		expEnv map[string]string
		expErr bool
	}{
		"KEY=VALUE should parse": {
			specs:  []string{"FOO=bar"},
			expEnv: map[string]string{"FOO": "bar"},
		},
		"Values may contain equal signs": {
			specs:  []string{"OPTS=-a=1"},
			expEnv: map[string]string{"OPTS": "-a=1"},
		},
		"KEY should inherit from host": {
			specs:  []string{"FROM_HOST"},
			expEnv: map[string]string{"FROM_HOST": "host-value"},
		},
		"Later entries should override earlier ones": {
			specs:  []string{"FOO=one", "FOO=two"},
			expEnv: map[string]string{"FOO": "two"},
		},
		"Missing inherited var should fail": {
			specs:  []string{"DOES_NOT_EXIST"},
			expErr: true,
		},
		"Invalid key should fail": {
			specs:  []string{"1INVALID=value"},
			expErr: true,
		},
		"Empty spec should fail": {
			specs:  []string{""},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := env.ParseSpecs(tc.specs)

			if tc.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expEnv, got)
		})
	}
}

func TestListConversions(t *testing.T) {
	base := env.FromList([]string{"PATH=/bin", "LANG=C", "PATH=/usr/bin", "=broken", "EMPTY="})
	assert.Equal(t, map[string]string{"PATH": "/usr/bin", "LANG": "C", "EMPTY": ""}, base)

	merged := env.MergeMaps(base, map[string]string{"LANG": "en_US.UTF-8", "LD_PRELOAD": "/rt/lib.so"})
	assert.Equal(t, []string{"EMPTY=", "LANG=en_US.UTF-8", "LD_PRELOAD=/rt/lib.so", "PATH=/usr/bin"}, env.ToList(merged))
	assert.Equal(t, "C", base["LANG"])
}
