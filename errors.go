package rtstream

import "fmt"

// DescriptorUnavailableError reports that the session description for an
// endpoint could not be fetched or parsed. Terminal for the current
// connection attempt.
type DescriptorUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *DescriptorUnavailableError) Error() string {
	return fmt.Sprintf("rtstream: session descriptor unavailable for %s: %v", e.Endpoint, e.Err)
}

func (e *DescriptorUnavailableError) Unwrap() error { return e.Err }

// TransportReason classifies a transport session failure.
type TransportReason string

const (
	ReasonTimeout           TransportReason = "timeout"
	ReasonReset             TransportReason = "reset"
	ReasonProtocolViolation TransportReason = "protocol-violation"
)

// TransportError reports a handshake or packet transport failure. Terminal
// for the current connection attempt; the reconnect supervisor decides
// whether to retry.
type TransportError struct {
	Reason TransportReason
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rtstream: transport %s: %v", e.Reason, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
