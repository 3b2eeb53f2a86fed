package model

import "fmt"

// DigestAlgorithm is the checksum used to summarize output streams.
type DigestAlgorithm string

const (
	DigestAlgorithmMD5    DigestAlgorithm = "md5"
	DigestAlgorithmSHA256 DigestAlgorithm = "sha256"
	DigestAlgorithmXXHash DigestAlgorithm = "xxhash"
)

// DefaultDigestAlgorithm is the algorithm used when none is selected.
const DefaultDigestAlgorithm = DigestAlgorithmMD5

// Validate checks the algorithm is supported.
func (a DigestAlgorithm) Validate() error {
	switch a {
	case DigestAlgorithmMD5, DigestAlgorithmSHA256, DigestAlgorithmXXHash:
		return nil
	}
	return fmt.Errorf("unknown digest algorithm %q: %w", a, ErrNotValid)
}

// Digest is the hex encoded checksum of a complete output stream.
type Digest string

// RunResult is the outcome of running one process to completion.
// It's only built after every channel reached end of stream and the process exited.
type RunResult struct {
	ExitCode int
	Mode     OutputMode
	Digests  map[Channel]Digest
}

// Digest returns the digest recorded for a channel.
func (r RunResult) Digest(ch Channel) (Digest, bool) {
	d, ok := r.Digests[ch]
	return d, ok
}
