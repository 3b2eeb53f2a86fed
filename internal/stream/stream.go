// Package stream drains the output channels of a running process into digest
// accumulators, detecting when the process stops producing output.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/slok/diffrun/internal/digest"
	"github.com/slok/diffrun/internal/log"
	"github.com/slok/diffrun/internal/model"
)

const defaultChunkSize = 4 * 1024

// Source is a readable output channel of a process.
type Source struct {
	Channel model.Channel
	Reader  io.Reader
}

// MultiplexerConfig is the configuration for the stream multiplexer.
type MultiplexerConfig struct {
	// ChunkSize is the size of every read from a channel.
	ChunkSize int
	Logger    log.Logger
}

func (c *MultiplexerConfig) defaults() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk size can't be negative")
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "stream.Multiplexer"})
	return nil
}

// Multiplexer drains multiple output channels of one process concurrently so
// none of the OS pipe buffers fills up and blocks the process.
type Multiplexer struct {
	chunkSize int
	logger    log.Logger
}

// NewMultiplexer returns a new stream multiplexer.
func NewMultiplexer(cfg MultiplexerConfig) (*Multiplexer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Multiplexer{
		chunkSize: cfg.ChunkSize,
		logger:    cfg.Logger,
	}, nil
}

// streamState is the per channel state of a drain. It's owned by the reader
// goroutine of the channel until it reports end of stream.
type streamState struct {
	source Source
	acc    digest.Accumulator
}

// activity is reported by a reader every time it consumes data, reaches end of
// stream or fails.
type activity struct {
	channel model.Channel
	eof     bool
	err     error
}

// Drain reads every source until end of stream, folding all the data into the
// accumulator of its channel, and returns the digests.
//
// If no source has any activity within the timeout Drain stops and returns
// model.ErrReadinessTimeout, a zero timeout waits forever. The caller owns the
// process and is responsible for killing it in that case.
func (m *Multiplexer) Drain(ctx context.Context, sources []Source, algo model.DigestAlgorithm, timeout time.Duration) (map[model.Channel]model.Digest, error) {
	states := make([]*streamState, 0, len(sources))
	for _, src := range sources {
		acc, err := digest.New(algo)
		if err != nil {
			return nil, err
		}
		states = append(states, &streamState{source: src, acc: acc})
	}

	// Closing stop releases readers that are still running when we give up.
	stop := make(chan struct{})
	defer close(stop)

	events := make(chan activity)
	for _, st := range states {
		go m.read(st, events, stop)
	}

	var (
		timer    *time.Timer
		timeoutC <-chan time.Time
	)
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	logger := m.logger.WithCtxValues(ctx)
	open := len(states)
	for open > 0 {
		select {
		case ev := <-events:
			if ev.err != nil {
				return nil, fmt.Errorf("could not read %s: %w", ev.channel, ev.err)
			}
			if ev.eof {
				open--
				logger.Debugf("%s reached end of stream, %d channels open", ev.channel, open)
			}
			if timer != nil {
				timer.Reset(timeout)
			}

		case <-timeoutC:
			logger.Debugf("no activity on %d open channels after %s", open, timeout)
			return nil, fmt.Errorf("no activity after %s: %w", timeout, model.ErrReadinessTimeout)

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Every reader reported end of stream, the accumulators are ours again.
	digests := make(map[model.Channel]model.Digest, len(states))
	for _, st := range states {
		digests[st.source.Channel] = st.acc.Finalize()
	}

	return digests, nil
}

func (m *Multiplexer) read(st *streamState, events chan<- activity, stop <-chan struct{}) {
	report := func(ev activity) bool {
		select {
		case events <- ev:
			return true
		case <-stop:
			return false
		}
	}

	ch := st.source.Channel
	buf := make([]byte, m.chunkSize)
	for {
		n, err := st.source.Reader.Read(buf)
		if n > 0 {
			st.acc.Update(buf[:n])
			if !report(activity{channel: ch}) {
				return
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			report(activity{channel: ch, eof: true})
			return
		default:
			report(activity{channel: ch, err: err})
			return
		}
	}
}
