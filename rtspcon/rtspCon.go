package rtspcon

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

const statusLinePrefix = "RTSP/1.0 "

const (
	//StageIdle RTSP Idle stage
	StageIdle = 0
	//StageDescribeDone RTSP Describe stage
	StageDescribeDone = iota + 1
	//StageSetupDone RTSP Setup stage
	StageSetupDone
	//StagePlayDone RTSP Play stage
	StagePlayDone
)

//Conn manages the RTSP control exchange with a device media endpoint.
type Conn struct {
	url           url.URL
	tcpReadWriter *bufio.ReadWriter

	sequenceNum uint
	sessionKey  string

	Descriptor *Descriptor

	Stage int
}

type request struct {
	header []string
	uri    string
	method string
}

type response struct {
	status  int
	headers map[string]string
	body    []byte
}

//NewConn Constructor for Conn.
func NewConn(rw *bufio.ReadWriter, url url.URL) *Conn {
	return &Conn{
		tcpReadWriter: rw,
		url:           url,
	}
}

//writeRequest write RTSP request to connection.
func (conn *Conn) writeRequest(req request) error {
	conn.sequenceNum++

	fmt.Fprintf(conn.tcpReadWriter, "%s %s RTSP/1.0\r\n", req.method, req.uri)
	fmt.Fprintf(conn.tcpReadWriter, "CSeq: %d\r\n", conn.sequenceNum)

	for _, s := range req.header {
		io.WriteString(conn.tcpReadWriter, s)
		io.WriteString(conn.tcpReadWriter, "\r\n")
	}
	io.WriteString(conn.tcpReadWriter, "\r\n")
	return conn.tcpReadWriter.Flush()
}

func trimURLUser(url url.URL) string {
	newURL := url
	newURL.User = nil
	return newURL.String()
}

//readResponse read one RTSP response, including the Content-Length body.
func (conn *Conn) readResponse() (*response, error) {
	line, err := conn.readLine()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(line, statusLinePrefix) {
		return nil, fmt.Errorf("rtspcon: malformed status line %q", line)
	}
	fields := strings.SplitN(line[len(statusLinePrefix):], " ", 2)
	status, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("rtspcon: malformed status line %q", line)
	}

	resp := &response{status: status, headers: make(map[string]string)}
	for {
		line, err := conn.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		keyval := strings.SplitN(line, ":", 2)
		if len(keyval) != 2 {
			return nil, fmt.Errorf("rtspcon: malformed header line %q", line)
		}
		resp.headers[strings.TrimSpace(keyval[0])] = strings.TrimSpace(keyval[1])
	}

	if cl := resp.headers["Content-Length"]; cl != "" {
		length, err := strconv.Atoi(cl)
		if err != nil {
			return nil, fmt.Errorf("rtspcon: malformed Content-Length %q", cl)
		}
		resp.body = make([]byte, length)
		if _, err := io.ReadFull(conn.tcpReadWriter, resp.body); err != nil {
			return nil, err
		}
	}

	if sess := resp.headers["Session"]; sess != "" && conn.sessionKey == "" {
		conn.sessionKey = strings.Split(sess, ";")[0]
	}
	return resp, nil
}

func (conn *Conn) readLine() (string, error) {
	line, err := conn.tcpReadWriter.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
