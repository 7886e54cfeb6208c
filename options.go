package rtstream

import "time"

const (
	defaultConnectTimeout = 10 * time.Second
	defaultBuffer         = 64
)

// Options configure a stream subscription.
type Options struct {
	// RestartOnDisconnect makes the supervisor re-resolve the descriptor and
	// reconnect, immediately and without attempt limit, whenever the
	// transport session terminates. When false the stream ends on first
	// disconnect with the failure as its cause.
	RestartOnDisconnect bool

	// ConnectTimeout bounds descriptor resolution and the transport
	// handshake of each connection attempt. The open stream itself has no
	// deadline. Default 10s.
	ConnectTimeout time.Duration

	// Buffer is the sample channel depth. Default 64.
	Buffer int
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.Buffer <= 0 {
		o.Buffer = defaultBuffer
	}
	return o
}
