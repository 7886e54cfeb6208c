package rtstream

import (
	"time"
)

// RawPacket is one RTP payload unit as read from the transport session.
// Ephemeral: produced and consumed within a single connection attempt.
type RawPacket struct {
	Payload        []byte
	Timestamp      uint32 // RTP media clock
	SequenceNumber uint16
	Marker         bool
	Arrival        time.Time
}
