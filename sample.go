package rtstream

import "time"

// Sample is a typed sensor sample decoded from the RTP stream: a GazeSample,
// VideoFrame or IMUSample depending on which decoder the subscription
// selected.
type Sample interface {
	// TimestampUnixNS is the sample time in nanoseconds since the Unix epoch.
	TimestampUnixNS() int64
}

// SampleKind selects the payload decoder for a subscription.
type SampleKind int

const (
	SampleKindGaze SampleKind = iota
	SampleKindVideo
	SampleKindIMU
)

func (k SampleKind) String() string {
	switch k {
	case SampleKindGaze:
		return "gaze"
	case SampleKindVideo:
		return "video"
	case SampleKindIMU:
		return "imu"
	}
	return "unknown"
}

// GazeSample is one decoded gaze record. Pupil diameters are only present
// in the device's extended record format (HasPupilDiameters).
type GazeSample struct {
	X    float32
	Y    float32
	Worn bool

	PupilDiameterLeft  float64
	PupilDiameterRight float64
	HasPupilDiameters  bool

	Timestamp int64 // nanoseconds since Unix epoch
}

func (s GazeSample) TimestampUnixNS() int64 { return s.Timestamp }

func (s GazeSample) Time() time.Time { return time.Unix(0, s.Timestamp) }

// VideoFrame is one reassembled scene camera frame. Data holds the encoded
// frame exactly as carried by the RTP payloads, in packet order. A frame is
// only emitted complete; partial frames are never exposed.
type VideoFrame struct {
	Data      []byte
	Width     int
	Height    int
	Timestamp int64 // nanoseconds since Unix epoch
}

func (f VideoFrame) TimestampUnixNS() int64 { return f.Timestamp }

func (f VideoFrame) Time() time.Time { return time.Unix(0, f.Timestamp) }

// Vector3 is a three-axis reading from the inertial sensor.
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

// Quaternion is the device's absolute orientation estimate.
type Quaternion struct {
	X float32
	Y float32
	Z float32
	W float32
}

// IMUSample is one decoded inertial record. Unlike gaze and video, the
// timestamp is carried inside the record by the device clock, not derived
// from the media clock.
type IMUSample struct {
	Accel    Vector3
	Gyro     Vector3
	Rotation Quaternion

	Timestamp int64 // nanoseconds since Unix epoch
}

func (s IMUSample) TimestampUnixNS() int64 { return s.Timestamp }

func (s IMUSample) Time() time.Time { return time.Unix(0, s.Timestamp) }
