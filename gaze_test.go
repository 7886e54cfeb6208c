package rtstream

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eyetrax/rtstream/rtspcon"
)

var gazeDesc = &rtspcon.Descriptor{
	Encoding:    "com.eyetrax.gaze",
	ClockRate:   90000,
	PayloadType: 96,
}

func gazeRecord(x, y float32, worn byte) []byte {
	p := make([]byte, 0, gazeRecordLen)
	p = binary.BigEndian.AppendUint32(p, math.Float32bits(x))
	p = binary.BigEndian.AppendUint32(p, math.Float32bits(y))
	return append(p, worn)
}

func gazePupilRecord(x, y float32, worn byte, left, right float64) []byte {
	p := gazeRecord(x, y, worn)
	p = binary.BigEndian.AppendUint64(p, math.Float64bits(left))
	p = binary.BigEndian.AppendUint64(p, math.Float64bits(right))
	return append(p, 1)
}

func TestGazeDecoderBaseRecord(t *testing.T) {
	d := newGazeDecoder(gazeDesc)
	arrival := time.Now()

	out := d.Decode(RawPacket{
		Payload:        gazeRecord(0.25, 0.75, 255),
		Timestamp:      1000,
		SequenceNumber: 1,
		Arrival:        arrival,
	})
	require.Len(t, out, 1)

	g, ok := out[0].(GazeSample)
	require.True(t, ok)
	require.InDelta(t, 0.25, g.X, 1e-6)
	require.InDelta(t, 0.75, g.Y, 1e-6)
	require.True(t, g.Worn)
	require.False(t, g.HasPupilDiameters)
	require.Equal(t, arrival.UnixNano(), g.Timestamp)
}

func TestGazeDecoderPupilRecord(t *testing.T) {
	d := newGazeDecoder(gazeDesc)

	out := d.Decode(RawPacket{
		Payload:   gazePupilRecord(0.5, 0.5, 0, 3.2, 3.4),
		Timestamp: 1000,
		Arrival:   time.Now(),
	})
	require.Len(t, out, 1)

	g := out[0].(GazeSample)
	require.False(t, g.Worn)
	require.True(t, g.HasPupilDiameters)
	require.InDelta(t, 3.2, g.PupilDiameterLeft, 1e-9)
	require.InDelta(t, 3.4, g.PupilDiameterRight, 1e-9)
}

func TestGazeDecoderSurvivesTruncatedRecord(t *testing.T) {
	d := newGazeDecoder(gazeDesc)
	arrival := time.Now()

	var got []GazeSample
	payloads := [][]byte{
		gazeRecord(0.1, 0.1, 255),
		gazeRecord(0.2, 0.2, 255)[:8], // truncated
		gazeRecord(0.3, 0.3, 255),
		gazeRecord(0.4, 0.4, 255),
	}
	for i, p := range payloads {
		for _, s := range d.Decode(RawPacket{
			Payload:        p,
			Timestamp:      uint32(1000 + i*90),
			SequenceNumber: uint16(i),
			Arrival:        arrival.Add(time.Duration(i) * time.Millisecond),
		}) {
			got = append(got, s.(GazeSample))
		}
	}

	require.Len(t, got, 3)
	require.InDelta(t, 0.1, got[0].X, 1e-6)
	require.InDelta(t, 0.3, got[1].X, 1e-6)
	require.InDelta(t, 0.4, got[2].X, 1e-6)
}

func TestGazeDecoderDropsBadCoordinates(t *testing.T) {
	d := newGazeDecoder(gazeDesc)

	require.Empty(t, d.Decode(RawPacket{
		Payload:   gazeRecord(float32(math.NaN()), 0.5, 255),
		Timestamp: 1000,
		Arrival:   time.Now(),
	}))
}

func TestGazeDecoderClockMapping(t *testing.T) {
	d := newGazeDecoder(gazeDesc)
	arrival := time.Now()

	first := d.Decode(RawPacket{
		Payload:   gazeRecord(0.1, 0.1, 255),
		Timestamp: 1000,
		Arrival:   arrival,
	})
	require.Len(t, first, 1)

	// 9000 media ticks at 90kHz is 100ms, regardless of arrival jitter
	second := d.Decode(RawPacket{
		Payload:   gazeRecord(0.2, 0.2, 255),
		Timestamp: 10000,
		Arrival:   arrival.Add(130 * time.Millisecond),
	})
	require.Len(t, second, 1)

	delta := second[0].TimestampUnixNS() - first[0].TimestampUnixNS()
	require.Equal(t, int64(100*time.Millisecond), delta)
}

func TestGazeDecoderDropsStalePacket(t *testing.T) {
	d := newGazeDecoder(gazeDesc)
	arrival := time.Now()

	require.Len(t, d.Decode(RawPacket{Payload: gazeRecord(0.1, 0.1, 255), Timestamp: 10000, Arrival: arrival}), 1)

	// older media timestamp arriving late must not be emitted out of order
	require.Empty(t, d.Decode(RawPacket{Payload: gazeRecord(0.2, 0.2, 255), Timestamp: 1000, Arrival: arrival}))

	require.Len(t, d.Decode(RawPacket{Payload: gazeRecord(0.3, 0.3, 255), Timestamp: 19000, Arrival: arrival}), 1)
}
