package rtstream

import "time"

// rtpClock maps RTP media clock timestamps to wall-clock nanoseconds. The
// reference sample is taken from the first packet of the session: its RTP
// timestamp is paired with its arrival time. Signed 32-bit deltas keep the
// mapping stable across timestamp wraparound.
type rtpClock struct {
	rate    int
	refSet  bool
	refRTP  uint32
	refWall int64
}

func newRTPClock(rate int) rtpClock {
	return rtpClock{rate: rate}
}

func (c *rtpClock) wallNanos(ts uint32, arrival time.Time) int64 {
	if !c.refSet {
		c.refRTP = ts
		c.refWall = arrival.UnixNano()
		c.refSet = true
	}
	delta := int64(int32(ts - c.refRTP))
	return c.refWall + delta*int64(time.Second)/int64(c.rate)
}
