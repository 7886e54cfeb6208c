package rtstream

import (
	"math"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protowire"
)

// IMU packet wire format, a protobuf message carried whole in each RTP
// payload:
//
//	ImuPacket:  tsNs uint64 = 1, accelData Data3d = 2,
//	            gyroData Data3d = 3, rotVecData Quaternion = 4
//	Data3d:     x float = 1, y float = 2, z float = 3
//	Quaternion: x float = 1, y float = 2, z float = 3, w float = 4
//
// Decoded field by field over protowire; the schema is three fixed messages
// and unknown fields are skipped, so generated bindings buy nothing here.
type imuDecoder struct {
	lastNs int64
}

func newIMUDecoder() *imuDecoder {
	return &imuDecoder{}
}

func (d *imuDecoder) Decode(pkt RawPacket) []Sample {
	sample, err := parseIMUPacket(pkt.Payload)
	if err != nil {
		logger.WithFields(logrus.Fields{"seq": pkt.SequenceNumber, "error": err}).
			Warn("Drop IMU Record, Bad Encoding")
		return nil
	}

	// out-of-order transport packets are dropped, never emitted out of order
	if sample.Timestamp < d.lastNs {
		logger.WithFields(logrus.Fields{"seq": pkt.SequenceNumber}).
			Debug("Drop Stale IMU Record")
		return nil
	}
	d.lastNs = sample.Timestamp
	return []Sample{sample}
}

func parseIMUPacket(p []byte) (IMUSample, error) {
	var s IMUSample
	for len(p) > 0 {
		num, typ, n := protowire.ConsumeTag(p)
		if n < 0 {
			return IMUSample{}, protowire.ParseError(n)
		}
		p = p[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(p)
			if n < 0 {
				return IMUSample{}, protowire.ParseError(n)
			}
			s.Timestamp = int64(v)
			p = p[n:]
		case num == 2 && typ == protowire.BytesType:
			b, n := protowire.ConsumeBytes(p)
			if n < 0 {
				return IMUSample{}, protowire.ParseError(n)
			}
			vec, err := parseVector3(b)
			if err != nil {
				return IMUSample{}, err
			}
			s.Accel = vec
			p = p[n:]
		case num == 3 && typ == protowire.BytesType:
			b, n := protowire.ConsumeBytes(p)
			if n < 0 {
				return IMUSample{}, protowire.ParseError(n)
			}
			vec, err := parseVector3(b)
			if err != nil {
				return IMUSample{}, err
			}
			s.Gyro = vec
			p = p[n:]
		case num == 4 && typ == protowire.BytesType:
			b, n := protowire.ConsumeBytes(p)
			if n < 0 {
				return IMUSample{}, protowire.ParseError(n)
			}
			q, err := parseQuaternion(b)
			if err != nil {
				return IMUSample{}, err
			}
			s.Rotation = q
			p = p[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, p)
			if n < 0 {
				return IMUSample{}, protowire.ParseError(n)
			}
			p = p[n:]
		}
	}
	return s, nil
}

func parseVector3(p []byte) (Vector3, error) {
	var vec Vector3
	err := eachFloatField(p, func(num protowire.Number, v float32) {
		switch num {
		case 1:
			vec.X = v
		case 2:
			vec.Y = v
		case 3:
			vec.Z = v
		}
	})
	return vec, err
}

func parseQuaternion(p []byte) (Quaternion, error) {
	var q Quaternion
	err := eachFloatField(p, func(num protowire.Number, v float32) {
		switch num {
		case 1:
			q.X = v
		case 2:
			q.Y = v
		case 3:
			q.Z = v
		case 4:
			q.W = v
		}
	})
	return q, err
}

func eachFloatField(p []byte, set func(num protowire.Number, v float32)) error {
	for len(p) > 0 {
		num, typ, n := protowire.ConsumeTag(p)
		if n < 0 {
			return protowire.ParseError(n)
		}
		p = p[n:]

		if typ != protowire.Fixed32Type {
			n := protowire.ConsumeFieldValue(num, typ, p)
			if n < 0 {
				return protowire.ParseError(n)
			}
			p = p[n:]
			continue
		}
		bits, n := protowire.ConsumeFixed32(p)
		if n < 0 {
			return protowire.ParseError(n)
		}
		set(num, math.Float32frombits(bits))
		p = p[n:]
	}
	return nil
}
