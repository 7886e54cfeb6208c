package rtstream

import (
	"encoding/binary"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/eyetrax/rtstream/rtspcon"
)

// Gaze record layouts, big endian:
//
//	 9 bytes: x float32, y float32, worn uint8 (255 = worn)
//	26 bytes: 9-byte base, pupilLeft float64, pupilRight float64, valid uint8
const (
	gazeRecordLen      = 9
	gazeRecordPupilLen = 26
)

// gazeDecoder turns fixed-size gaze records into GazeSamples. Each packet
// carries exactly one record; malformed records are dropped with a warning
// and never terminate the stream.
type gazeDecoder struct {
	clock  rtpClock
	lastNs int64
}

func newGazeDecoder(desc *rtspcon.Descriptor) *gazeDecoder {
	return &gazeDecoder{clock: newRTPClock(desc.ClockRate)}
}

func (d *gazeDecoder) Decode(pkt RawPacket) []Sample {
	p := pkt.Payload
	if len(p) != gazeRecordLen && len(p) != gazeRecordPupilLen {
		logger.WithFields(logrus.Fields{"len": len(p), "seq": pkt.SequenceNumber}).
			Warn("Drop Gaze Record, Bad Length")
		return nil
	}

	x := math.Float32frombits(binary.BigEndian.Uint32(p[0:4]))
	y := math.Float32frombits(binary.BigEndian.Uint32(p[4:8]))
	if invalidCoord(x) || invalidCoord(y) {
		logger.WithFields(logrus.Fields{"x": x, "y": y, "seq": pkt.SequenceNumber}).
			Warn("Drop Gaze Record, Bad Coordinates")
		return nil
	}

	sample := GazeSample{
		X:         x,
		Y:         y,
		Worn:      p[8] == 255,
		Timestamp: d.clock.wallNanos(pkt.Timestamp, pkt.Arrival),
	}
	if len(p) == gazeRecordPupilLen {
		sample.PupilDiameterLeft = math.Float64frombits(binary.BigEndian.Uint64(p[9:17]))
		sample.PupilDiameterRight = math.Float64frombits(binary.BigEndian.Uint64(p[17:25]))
		sample.HasPupilDiameters = p[25] != 0
	}

	// out-of-order transport packets are dropped, never emitted out of order
	if sample.Timestamp < d.lastNs {
		logger.WithFields(logrus.Fields{"seq": pkt.SequenceNumber}).
			Debug("Drop Stale Gaze Record")
		return nil
	}
	d.lastNs = sample.Timestamp
	return []Sample{sample}
}

func invalidCoord(v float32) bool {
	return math.IsNaN(float64(v)) || math.IsInf(float64(v), 0)
}
