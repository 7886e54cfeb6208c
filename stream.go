package rtstream

import (
	"context"
	"sync/atomic"
)

// StreamState is the reconnect supervisor's observable state.
type StreamState int32

const (
	StateConnecting StreamState = iota
	StateStreaming
	StateDisconnected
	StateClosed
)

func (s StreamState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// SampleStream is a live feed of typed samples from one endpoint. Samples
// arrive on a bounded channel; the channel closes when the stream reaches
// its terminal state, after which Err reports the cause.
type SampleStream struct {
	samples chan Sample
	state   atomic.Int32
	err     error
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *SampleStream) Samples() <-chan Sample { return s.samples }

func (s *SampleStream) State() StreamState {
	return StreamState(s.state.Load())
}

// Err is valid once Samples has closed. It is nil when the remote closed
// gracefully without reconnect enabled, or when the caller cancelled.
func (s *SampleStream) Err() error {
	return s.err
}

// Close cancels the stream. It returns once the underlying transport has
// been released.
func (s *SampleStream) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *SampleStream) setState(state StreamState) {
	s.state.Store(int32(state))
}

// RawStream is the undecoded packet feed of a single transport session, with
// no reconnect wrapping.
type RawStream struct {
	packets chan RawPacket
	err     error
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *RawStream) Packets() <-chan RawPacket { return s.packets }

// Err is valid once Packets has closed.
func (s *RawStream) Err() error { return s.err }

// Close cancels the stream and releases the transport before returning.
func (s *RawStream) Close() error {
	s.cancel()
	<-s.done
	return nil
}
