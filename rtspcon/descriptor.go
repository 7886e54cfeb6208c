package rtspcon

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
)

// Descriptor is the session metadata negotiated via DESCRIBE: the media
// format of the endpoint's single track and the parameters needed to map
// its RTP stream. Immutable once resolved; one per connection attempt.
type Descriptor struct {
	Encoding    string
	ClockRate   int
	PayloadType uint8
	Control     string

	// frame size from a=framesize, zero when the media has none (gaze)
	Width  int
	Height int
}

var errNoMedia = errors.New("rtspcon: sdp carries no media description")

// ParseDescriptor parses a DESCRIBE body. Malformed or incomplete session
// metadata is an error, never defaulted: bad metadata must block session
// start instead of propagating.
func ParseDescriptor(raw []byte) (*Descriptor, error) {
	var sd sdp.SessionDescription
	if err := sd.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("rtspcon: invalid sdp: %w", err)
	}
	if len(sd.MediaDescriptions) == 0 {
		return nil, errNoMedia
	}
	media := sd.MediaDescriptions[0]

	rtpmap, ok := media.Attribute("rtpmap")
	if !ok {
		return nil, errors.New("rtspcon: sdp media has no rtpmap")
	}
	fields := strings.Fields(rtpmap)
	if len(fields) != 2 {
		return nil, fmt.Errorf("rtspcon: malformed rtpmap %q", rtpmap)
	}
	payloadType, err := strconv.ParseUint(fields[0], 10, 7)
	if err != nil {
		return nil, fmt.Errorf("rtspcon: malformed rtpmap payload type %q", fields[0])
	}
	encParts := strings.Split(fields[1], "/")
	if len(encParts) < 2 || encParts[0] == "" {
		return nil, fmt.Errorf("rtspcon: malformed rtpmap encoding %q", fields[1])
	}
	clockRate, err := strconv.Atoi(encParts[1])
	if err != nil || clockRate <= 0 {
		return nil, fmt.Errorf("rtspcon: malformed rtpmap clock rate %q", fields[1])
	}

	desc := &Descriptor{
		Encoding:    encParts[0],
		ClockRate:   clockRate,
		PayloadType: uint8(payloadType),
	}
	desc.Control, _ = media.Attribute("control")

	// a=framesize:<pt> <width>-<height>, RFC 6064
	if framesize, ok := media.Attribute("framesize"); ok {
		fields := strings.Fields(framesize)
		if len(fields) != 2 {
			return nil, fmt.Errorf("rtspcon: malformed framesize %q", framesize)
		}
		dims := strings.Split(fields[1], "-")
		if len(dims) != 2 {
			return nil, fmt.Errorf("rtspcon: malformed framesize %q", framesize)
		}
		if desc.Width, err = strconv.Atoi(dims[0]); err != nil {
			return nil, fmt.Errorf("rtspcon: malformed framesize %q", framesize)
		}
		if desc.Height, err = strconv.Atoi(dims[1]); err != nil {
			return nil, fmt.Errorf("rtspcon: malformed framesize %q", framesize)
		}
	}

	return desc, nil
}
