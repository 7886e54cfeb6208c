package rtstream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eyetrax/rtstream/rtspcon"
)

const sessionPacketBuffer = 100

// packetSession is one live transport session: a negotiated descriptor plus
// an arrival-ordered raw packet feed. The packet channel closes when the
// session ends; Err reports the terminal cause afterwards (nil on clean
// remote close or local cancel).
type packetSession interface {
	Descriptor() *rtspcon.Descriptor
	Packets() <-chan RawPacket
	Err() error
	Close() error
}

type session struct {
	endpoint Endpoint
	conn     net.Conn
	rtsp     *rtspcon.Conn
	reader   *rtspcon.PacketReader

	packets    chan RawPacket
	err        error
	closing    atomic.Bool
	closeOnce  sync.Once
	done       chan struct{}
	readerDone chan struct{}
}

// openSession dials the endpoint and drives the handshake to PLAY. The
// timeout bounds descriptor resolution and the handshake only; the packet
// stream itself has no deadline.
func openSession(ctx context.Context, ep Endpoint, timeout time.Duration) (*session, error) {
	logger.WithFields(logrus.Fields{"url": ep.URL()}).Info("RTSP Opening")

	conn, u, err := rtspcon.NewTCPConn(ep.URL(), timeout)
	if err != nil {
		return nil, &DescriptorUnavailableError{Endpoint: ep.URL(), Err: err}
	}

	// propagate caller cancellation into the blocking handshake reads
	handshakeDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-handshakeDone:
		}
	}()
	defer close(handshakeDone)

	_ = conn.SetDeadline(time.Now().Add(timeout))
	reader := bufio.NewReaderSize(conn, 4096)
	rw := bufio.NewReadWriter(reader, bufio.NewWriter(conn))
	rtsp := rtspcon.NewConn(rw, *u)

	if err := rtsp.Describe(); err != nil {
		conn.Close()
		return nil, &DescriptorUnavailableError{Endpoint: ep.URL(), Err: err}
	}
	if err := rtsp.PrepareStage(rtspcon.StagePlayDone); err != nil {
		conn.Close()
		return nil, classifyHandshakeErr(err)
	}
	_ = conn.SetDeadline(time.Time{})

	s := &session{
		endpoint:   ep,
		conn:       conn,
		rtsp:       rtsp,
		reader:     rtspcon.NewPacketReader(reader),
		packets:    make(chan RawPacket, sessionPacketBuffer),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *session) Descriptor() *rtspcon.Descriptor { return s.rtsp.Descriptor }

func (s *session) Packets() <-chan RawPacket { return s.packets }

// Err is valid once Packets has closed.
func (s *session) Err() error { return s.err }

// Close tears the session down and releases the connection. It returns
// after the read loop has exited, so no resource outlives the call.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		close(s.done)
		_ = s.rtsp.Teardown()
		logger.WithFields(logrus.Fields{"url": s.endpoint.URL()}).Info("Close RTSP Session")
		_ = s.conn.Close()
	})
	<-s.readerDone
	return nil
}

// readLoop run in Goroutine
func (s *session) readLoop() {
	defer func() {
		close(s.packets)
		close(s.readerDone)
	}()

	payloadType := s.rtsp.Descriptor.PayloadType
	for {
		pkt, err := s.reader.ReadPacket()
		if err != nil {
			if s.closing.Load() {
				return // local cancel, not a transport failure
			}
			if errors.Is(err, io.EOF) {
				return // remote closed gracefully
			}
			s.err = classifyTransportErr(err)
			return
		}
		if pkt.Header.PayloadType != payloadType {
			continue
		}
		raw := RawPacket{
			Payload:        pkt.Payload,
			Timestamp:      pkt.Header.Timestamp,
			SequenceNumber: pkt.Header.SequenceNumber,
			Marker:         pkt.Header.Marker,
			Arrival:        time.Now(),
		}
		select {
		case s.packets <- raw:
		case <-s.done:
			return
		}
	}
}

// classifyHandshakeErr maps a failed SETUP/PLAY exchange. An RTSP-level
// rejection is a protocol violation; I/O failures map like stream errors.
func classifyHandshakeErr(err error) *TransportError {
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return &TransportError{Reason: ReasonTimeout, Err: err}
		}
		return &TransportError{Reason: ReasonReset, Err: err}
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, net.ErrClosed):
		return &TransportError{Reason: ReasonReset, Err: err}
	}
	return &TransportError{Reason: ReasonProtocolViolation, Err: err}
}

func classifyTransportErr(err error) *TransportError {
	var nerr net.Error
	switch {
	case errors.As(err, &nerr) && nerr.Timeout():
		return &TransportError{Reason: ReasonTimeout, Err: err}
	case errors.Is(err, rtspcon.ErrInterleavedFraming):
		return &TransportError{Reason: ReasonProtocolViolation, Err: err}
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, net.ErrClosed):
		return &TransportError{Reason: ReasonReset, Err: err}
	}
	return &TransportError{Reason: ReasonReset, Err: err}
}
