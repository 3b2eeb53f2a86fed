// Package digest computes checksums of output streams incrementally, without
// ever holding the stream in memory.
package digest

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"

	"github.com/slok/diffrun/internal/model"
)

// Accumulator folds chunks of a byte stream into a running checksum.
type Accumulator interface {
	// Update folds a chunk into the running state. It must not be called after Finalize.
	Update(p []byte)
	// Finalize returns the digest of everything folded so far. It must be called once,
	// after the source stream has been fully drained.
	Finalize() model.Digest
}

// New returns a new accumulator for the algorithm, the default one is used if empty.
func New(algo model.DigestAlgorithm) (Accumulator, error) {
	if algo == "" {
		algo = model.DefaultDigestAlgorithm
	}

	switch algo {
	case model.DigestAlgorithmMD5:
		return &accumulator{h: md5.New()}, nil
	case model.DigestAlgorithmSHA256:
		return &accumulator{h: sha256.New()}, nil
	case model.DigestAlgorithmXXHash:
		return &accumulator{h: xxhash.New()}, nil
	}

	return nil, fmt.Errorf("unknown digest algorithm %q: %w", algo, model.ErrNotValid)
}

// Of returns the digest of a complete byte slice.
func Of(algo model.DigestAlgorithm, p []byte) (model.Digest, error) {
	acc, err := New(algo)
	if err != nil {
		return "", err
	}
	acc.Update(p)
	return acc.Finalize(), nil
}

type accumulator struct {
	h         hash.Hash
	finalized bool
}

func (a *accumulator) Update(p []byte) {
	if a.finalized {
		panic("digest: update after finalize")
	}
	// hash.Hash writes never fail.
	_, _ = a.h.Write(p)
}

func (a *accumulator) Finalize() model.Digest {
	if a.finalized {
		panic("digest: finalize called twice")
	}
	a.finalized = true
	return model.Digest(hex.EncodeToString(a.h.Sum(nil)))
}
