package rtstream

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eyetrax/rtstream/rtspcon"
)

// decoder consumes raw packets and yields the typed samples each packet
// completed, in order. The variant is selected once per subscription.
type decoder interface {
	Decode(pkt RawPacket) []Sample
}

func newDecoder(kind SampleKind, desc *rtspcon.Descriptor) decoder {
	switch kind {
	case SampleKindVideo:
		return newVideoDecoder(desc)
	case SampleKindIMU:
		return newIMUDecoder()
	}
	return newGazeDecoder(desc)
}

// sessionOpener lets tests substitute the transport layer.
type sessionOpener func(ctx context.Context, ep Endpoint, timeout time.Duration) (packetSession, error)

func dialSession(ctx context.Context, ep Endpoint, timeout time.Duration) (packetSession, error) {
	return openSession(ctx, ep, timeout)
}

// OpenSampleStream subscribes to an endpoint and decodes its packets into
// typed samples. Connection work happens lazily on the producer side; the
// first samples (or the terminal error) arrive through the returned stream.
func OpenSampleStream(ctx context.Context, ep Endpoint, kind SampleKind, opts Options) (*SampleStream, error) {
	return openSampleStream(ctx, ep, kind, opts, dialSession)
}

// OpenGazeStream is OpenSampleStream with the gaze decoder selected.
func OpenGazeStream(ctx context.Context, ep Endpoint, opts Options) (*SampleStream, error) {
	return OpenSampleStream(ctx, ep, SampleKindGaze, opts)
}

// OpenVideoStream is OpenSampleStream with the video decoder selected.
func OpenVideoStream(ctx context.Context, ep Endpoint, opts Options) (*SampleStream, error) {
	return OpenSampleStream(ctx, ep, SampleKindVideo, opts)
}

// OpenIMUStream is OpenSampleStream with the IMU decoder selected.
func OpenIMUStream(ctx context.Context, ep Endpoint, opts Options) (*SampleStream, error) {
	return OpenSampleStream(ctx, ep, SampleKindIMU, opts)
}

func openSampleStream(ctx context.Context, ep Endpoint, kind SampleKind, opts Options, open sessionOpener) (*SampleStream, error) {
	switch kind {
	case SampleKindGaze, SampleKindVideo, SampleKindIMU:
	default:
		return nil, fmt.Errorf("rtstream: unknown sample kind %d", kind)
	}
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(ctx)
	s := &SampleStream{
		samples: make(chan Sample, opts.Buffer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.setState(StateConnecting)
	go s.run(ctx, ep, kind, opts, open)
	return s, nil
}

// run drives the Connecting -> Streaming -> Disconnected cycle until a
// terminal transition to Closed.
func (s *SampleStream) run(ctx context.Context, ep Endpoint, kind SampleKind, opts Options, open sessionOpener) {
	defer func() {
		s.setState(StateClosed)
		close(s.samples)
		close(s.done)
	}()

	for {
		s.setState(StateConnecting)
		sess, err := open(ctx, ep, opts.ConnectTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !opts.RestartOnDisconnect {
				s.err = err
				return
			}
			logger.WithFields(logrus.Fields{"url": ep.URL(), "error": err}).
				Warn("RTSP Connect Failed, Retrying")
			continue
		}

		dec := newDecoder(kind, sess.Descriptor())
		s.setState(StateStreaming)
		cause, cancelled := s.pump(ctx, sess, dec)
		sess.Close()
		if cancelled {
			return
		}

		s.setState(StateDisconnected)
		if !opts.RestartOnDisconnect {
			s.err = cause
			return
		}
		// descriptor is re-resolved from scratch on the next attempt
		logger.WithFields(logrus.Fields{"url": ep.URL(), "error": cause}).
			Info("RTSP Disconnected, Reconnecting")
	}
}

// pump feeds one session's packets through the decoder. It returns the
// session's terminal cause, or cancelled=true when the caller cancelled.
func (s *SampleStream) pump(ctx context.Context, sess packetSession, dec decoder) (cause error, cancelled bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, true
		case pkt, ok := <-sess.Packets():
			if !ok {
				return sess.Err(), false
			}
			for _, sample := range dec.Decode(pkt) {
				select {
				case s.samples <- sample:
				case <-ctx.Done():
					return nil, true
				}
			}
		}
	}
}

// OpenRawStream exposes the undecoded transport stream of an endpoint. No
// reconnection wrapping: the stream ends on first disconnect.
func OpenRawStream(ctx context.Context, ep Endpoint, opts Options) (*RawStream, error) {
	return openRawStream(ctx, ep, opts, dialSession)
}

func openRawStream(ctx context.Context, ep Endpoint, opts Options, open sessionOpener) (*RawStream, error) {
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(ctx)
	s := &RawStream{
		packets: make(chan RawPacket, opts.Buffer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx, ep, opts, open)
	return s, nil
}

func (s *RawStream) run(ctx context.Context, ep Endpoint, opts Options, open sessionOpener) {
	defer func() {
		close(s.packets)
		close(s.done)
	}()

	sess, err := open(ctx, ep, opts.ConnectTimeout)
	if err != nil {
		if ctx.Err() == nil {
			s.err = err
		}
		return
	}
	defer sess.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-sess.Packets():
			if !ok {
				s.err = sess.Err()
				return
			}
			select {
			case s.packets <- pkt:
			case <-ctx.Done():
				return
			}
		}
	}
}
