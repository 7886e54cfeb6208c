package rtstream

import (
	"github.com/sirupsen/logrus"

	"github.com/eyetrax/rtstream/rtspcon"
)

// videoDecoder reassembles frames that span multiple RTP packets. Packets
// are buffered per media timestamp; a frame is complete when the marker bit
// is observed, or when a packet with a newer timestamp arrives and the
// previous frame is flushed. Frames with sequence-number gaps are dropped,
// never emitted partially.
type videoDecoder struct {
	clock  rtpClock
	width  int
	height int

	nextSeq uint16
	haveSeq bool

	cur    *partialFrame
	out    []Sample
	lastNs int64
}

type partialFrame struct {
	timestamp uint32
	gap       bool
	parts     [][]byte
	size      int
	first     RawPacket // anchors the wall-clock conversion
}

func newVideoDecoder(desc *rtspcon.Descriptor) *videoDecoder {
	return &videoDecoder{
		clock:  newRTPClock(desc.ClockRate),
		width:  desc.Width,
		height: desc.Height,
	}
}

// Decode returns every frame the packet completed. A single packet can
// complete two: the buffered frame when its timestamp moves on, and its own
// when it carries the marker bit.
func (d *videoDecoder) Decode(pkt RawPacket) []Sample {
	if d.cur != nil && pkt.Timestamp != d.cur.timestamp {
		// A new frame begins, the previous one is as complete as it gets.
		// A sequence gap straddling the boundary means the tail of the
		// previous frame was lost, not the head of this one.
		if pkt.SequenceNumber != d.nextSeq {
			d.cur.gap = true
			d.haveSeq = false
		}
		d.flush()
	}
	d.append(pkt)
	if pkt.Marker {
		d.flush()
	}

	out := d.out
	d.out = nil
	return out
}

func (d *videoDecoder) append(pkt RawPacket) {
	if d.cur == nil {
		d.cur = &partialFrame{timestamp: pkt.Timestamp, first: pkt}
	}
	if d.haveSeq && pkt.SequenceNumber != d.nextSeq {
		d.cur.gap = true
	}
	d.nextSeq = pkt.SequenceNumber + 1
	d.haveSeq = true
	d.cur.parts = append(d.cur.parts, pkt.Payload)
	d.cur.size += len(pkt.Payload)
}

func (d *videoDecoder) flush() {
	f := d.cur
	d.cur = nil
	if f == nil {
		return
	}
	if f.gap {
		logger.WithFields(logrus.Fields{"timestamp": f.timestamp, "packets": len(f.parts)}).
			Warn("Drop Incomplete Video Frame")
		return
	}

	data := make([]byte, 0, f.size)
	for _, p := range f.parts {
		data = append(data, p...)
	}
	ns := d.clock.wallNanos(f.timestamp, f.first.Arrival)
	if ns < d.lastNs {
		logger.WithFields(logrus.Fields{"timestamp": f.timestamp}).
			Debug("Drop Stale Video Frame")
		return
	}
	d.lastNs = ns

	d.out = append(d.out, VideoFrame{
		Data:      data,
		Width:     d.width,
		Height:    d.height,
		Timestamp: ns,
	})
}
