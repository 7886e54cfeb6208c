package rtstream

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func appendFloatField(p []byte, num protowire.Number, v float32) []byte {
	p = protowire.AppendTag(p, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(p, math.Float32bits(v))
}

func appendVector3(p []byte, num protowire.Number, v Vector3) []byte {
	var b []byte
	b = appendFloatField(b, 1, v.X)
	b = appendFloatField(b, 2, v.Y)
	b = appendFloatField(b, 3, v.Z)
	p = protowire.AppendTag(p, num, protowire.BytesType)
	return protowire.AppendBytes(p, b)
}

func imuRecord(tsNs int64, accel, gyro Vector3, rot Quaternion) []byte {
	var p []byte
	p = protowire.AppendTag(p, 1, protowire.VarintType)
	p = protowire.AppendVarint(p, uint64(tsNs))
	p = appendVector3(p, 2, accel)
	p = appendVector3(p, 3, gyro)

	var q []byte
	q = appendFloatField(q, 1, rot.X)
	q = appendFloatField(q, 2, rot.Y)
	q = appendFloatField(q, 3, rot.Z)
	q = appendFloatField(q, 4, rot.W)
	p = protowire.AppendTag(p, 4, protowire.BytesType)
	return protowire.AppendBytes(p, q)
}

func TestIMUDecoderRecord(t *testing.T) {
	d := newIMUDecoder()
	tsNs := time.Now().UnixNano()

	out := d.Decode(RawPacket{
		Payload: imuRecord(tsNs,
			Vector3{X: 0.1, Y: -9.8, Z: 0.2},
			Vector3{X: 1.5, Y: 0, Z: -1.5},
			Quaternion{X: 0, Y: 0, Z: 0.707, W: 0.707}),
		SequenceNumber: 1,
	})
	require.Len(t, out, 1)

	s, ok := out[0].(IMUSample)
	require.True(t, ok)
	require.Equal(t, tsNs, s.Timestamp)
	require.InDelta(t, -9.8, s.Accel.Y, 1e-6)
	require.InDelta(t, 1.5, s.Gyro.X, 1e-6)
	require.InDelta(t, 0.707, s.Rotation.W, 1e-6)
	require.InDelta(t, 0.707, s.Rotation.Z, 1e-6)
}

func TestIMUDecoderSurvivesMalformedRecord(t *testing.T) {
	d := newIMUDecoder()
	tsNs := time.Now().UnixNano()

	require.Empty(t, d.Decode(RawPacket{Payload: []byte{0xff, 0xff, 0xff}, SequenceNumber: 1}))

	out := d.Decode(RawPacket{
		Payload:        imuRecord(tsNs, Vector3{Z: 9.8}, Vector3{}, Quaternion{W: 1}),
		SequenceNumber: 2,
	})
	require.Len(t, out, 1)
	require.Equal(t, tsNs, out[0].(IMUSample).Timestamp)
}

func TestIMUDecoderSkipsUnknownFields(t *testing.T) {
	d := newIMUDecoder()
	tsNs := time.Now().UnixNano()

	// a newer device firmware may append fields this client does not know
	p := imuRecord(tsNs, Vector3{X: 1}, Vector3{}, Quaternion{W: 1})
	p = protowire.AppendTag(p, 9, protowire.VarintType)
	p = protowire.AppendVarint(p, 42)

	out := d.Decode(RawPacket{Payload: p, SequenceNumber: 1})
	require.Len(t, out, 1)
	require.InDelta(t, 1.0, out[0].(IMUSample).Accel.X, 1e-6)
}

func TestIMUDecoderDropsStaleRecord(t *testing.T) {
	d := newIMUDecoder()
	base := time.Now().UnixNano()

	require.Len(t, d.Decode(RawPacket{Payload: imuRecord(base, Vector3{}, Vector3{}, Quaternion{W: 1})}), 1)

	// device-clock timestamps must never go backwards on the stream
	require.Empty(t, d.Decode(RawPacket{Payload: imuRecord(base-int64(time.Millisecond), Vector3{}, Vector3{}, Quaternion{W: 1})}))

	require.Len(t, d.Decode(RawPacket{Payload: imuRecord(base+int64(time.Millisecond), Vector3{}, Vector3{}, Quaternion{W: 1})}), 1)
}
