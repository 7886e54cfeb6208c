package rtspcon

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pion/rtp"
)

//ErrInterleavedFraming means the interleaved byte stream is out of sync and
//the session cannot be trusted anymore.
var ErrInterleavedFraming = errors.New("rtspcon: bad interleaved framing")

//PacketReader reads $-framed interleaved blocks from the control connection
//after PLAY and yields RTP packets in arrival order. RTCP channel blocks and
//malformed RTP blocks are skipped.
type PacketReader struct {
	reader *bufio.Reader
}

//NewPacketReader Constructor for PacketReader. The reader must be the same
//buffered reader the RTSP handshake ran on.
func NewPacketReader(reader *bufio.Reader) *PacketReader {
	return &PacketReader{reader: reader}
}

/*
https://www.ietf.org/rfc/rfc2326.txt

10.12 Embedded (Interleaved) Binary Data
   Stream data such as RTP packets is encapsulated by an ASCII dollar
   sign (24 hexadecimal), followed by a one-byte channel identifier,
   followed by the length of the encapsulated binary data as a binary,
   two-byte integer in network byte order.

S->C: $\000{2 byte length}{"length" bytes data, w/RTP header}

	even channel num -> RTP (packets)
	odd channel num  -> RTCP (control)
*/
func (r *PacketReader) ReadPacket() (*rtp.Packet, error) {
	for {
		magic, err := r.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if magic != '$' {
			return nil, fmt.Errorf("%w: expected $, got 0x%02x", ErrInterleavedFraming, magic)
		}
		header := make([]byte, 3)
		if _, err := io.ReadFull(r.reader, header); err != nil {
			return nil, err
		}
		length := binary.BigEndian.Uint16(header[1:3])
		raw := make([]byte, length)
		if _, err := io.ReadFull(r.reader, raw); err != nil {
			return nil, err
		}
		if header[0]%2 == 1 {
			// RTCP channel
			continue
		}
		pkt := &rtp.Packet{}
		if err := pkt.Unmarshal(raw); err != nil {
			// one corrupt block, framing is still intact
			continue
		}
		return pkt, nil
	}
}
