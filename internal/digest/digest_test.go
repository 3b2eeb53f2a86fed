package digest_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/diffrun/internal/digest"
	"github.com/slok/diffrun/internal/model"
)

func TestAccumulator(t *testing.T) {
	tests := map[string]struct {
		algo      model.DigestAlgorithm
		chunks    []string
		expDigest model.Digest
		expErr    bool
	}{
		"Empty stream with md5 should give the md5 of nothing": {
			algo:      model.DigestAlgorithmMD5,
			expDigest: "d41d8cd98f00b204e9800998ecf8427e",
		},
		"Default algorithm should be md5": {
			chunks:    []string{"hello\n"},
			expDigest: "b1946ac92492d2347c6235b4d2611184",
		},
		"Chunked md5 should be the same as the whole stream": {
			algo:      model.DigestAlgorithmMD5,
			chunks:    []string{"hel", "lo", "\n"},
			expDigest: "b1946ac92492d2347c6235b4d2611184",
		},
		"Chunked sha256 should be the same as the whole stream": {
			algo:      model.DigestAlgorithmSHA256,
			chunks:    []string{"hello", "\n"},
			expDigest: "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03",
		},
		"Empty stream with xxhash should give the xxhash of nothing": {
			algo:      model.DigestAlgorithmXXHash,
			expDigest: "ef46db3751d8e999",
		},
		"Unknown algorithm should fail": {
			algo:   "crc32",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			acc, err := digest.New(test.algo)
			if test.expErr {
				assert.Error(err)
				assert.ErrorIs(err, model.ErrNotValid)
				return
			}
			require.NoError(err)

			for _, c := range test.chunks {
				acc.Update([]byte(c))
			}
			assert.Equal(test.expDigest, acc.Finalize())
		})
	}
}

func TestAccumulatorChunkingDoesNotMatter(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 10_000)

	for _, algo := range []model.DigestAlgorithm{model.DigestAlgorithmMD5, model.DigestAlgorithmSHA256, model.DigestAlgorithmXXHash} {
		t.Run(string(algo), func(t *testing.T) {
			exp, err := digest.Of(algo, data)
			require.NoError(t, err)

			acc, err := digest.New(algo)
			require.NoError(t, err)
			for i := 0; i < len(data); i += 128 {
				end := min(i+128, len(data))
				acc.Update(data[i:end])
			}

			assert.Equal(t, exp, acc.Finalize())
		})
	}
}

func TestAccumulatorMisuse(t *testing.T) {
	acc, err := digest.New(model.DigestAlgorithmMD5)
	require.NoError(t, err)
	_ = acc.Finalize()

	assert.Panics(t, func() { acc.Update([]byte("late")) })
	assert.Panics(t, func() { _ = acc.Finalize() })
}
