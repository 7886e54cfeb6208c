package rtspcon

import (
	"fmt"
	"strings"
)

//Describe RTSP Describe command. Resolves the session descriptor; any
//failure here blocks session start.
func (conn *Conn) Describe() error {
	req := request{
		method: "DESCRIBE",
		uri:    trimURLUser(conn.url),
		header: []string{"Accept: application/sdp"},
	}
	if err := conn.writeRequest(req); err != nil {
		return err
	}
	resp, err := conn.readResponse()
	if err != nil {
		return err
	}
	if resp.status != 200 {
		return fmt.Errorf("rtspcon: describe rejected with status %d", resp.status)
	}
	if len(resp.body) == 0 {
		return fmt.Errorf("rtspcon: describe returned no session description")
	}
	desc, err := ParseDescriptor(resp.body)
	if err != nil {
		return err
	}
	conn.Descriptor = desc
	conn.Stage = StageDescribeDone
	return nil
}

//Setup RTSP command. Requests interleaved RTP over the control connection,
//channels 0 (RTP) and 1 (RTCP).
func (conn *Conn) Setup() error {
	if err := conn.PrepareStage(StageDescribeDone); err != nil {
		return err
	}
	uri := trimURLUser(conn.url)
	if control := conn.Descriptor.Control; control != "" {
		if strings.HasPrefix(control, "rtsp://") {
			uri = control
		} else {
			uri = uri + "/" + control
		}
	}
	req := request{method: "SETUP", uri: uri}
	req.header = append(req.header, "Transport: RTP/AVP/TCP;unicast;interleaved=0-1")
	if conn.sessionKey != "" {
		req.header = append(req.header, "Session: "+conn.sessionKey)
	}
	if err := conn.writeRequest(req); err != nil {
		return err
	}
	resp, err := conn.readResponse()
	if err != nil {
		return err
	}
	if resp.status != 200 {
		return fmt.Errorf("rtspcon: setup rejected with status %d", resp.status)
	}
	conn.Stage = StageSetupDone
	return nil
}

//Play RTSP command.
func (conn *Conn) Play() error {
	if err := conn.PrepareStage(StageSetupDone); err != nil {
		return err
	}
	req := request{
		method: "PLAY",
		uri:    trimURLUser(conn.url),
	}
	req.header = append(req.header, "Session: "+conn.sessionKey)
	if err := conn.writeRequest(req); err != nil {
		return err
	}
	resp, err := conn.readResponse()
	if err != nil {
		return err
	}
	if resp.status != 200 {
		return fmt.Errorf("rtspcon: play rejected with status %d", resp.status)
	}
	conn.Stage = StagePlayDone
	return nil
}

//Teardown RTSP command. Best effort: the response is not awaited, the
//transport is closed right after.
func (conn *Conn) Teardown() error {
	if conn.Stage < StageSetupDone {
		return nil
	}
	req := request{
		method: "TEARDOWN",
		uri:    trimURLUser(conn.url),
	}
	req.header = append(req.header, "Session: "+conn.sessionKey)
	conn.Stage = StageIdle
	return conn.writeRequest(req)
}

//PrepareStage given RTSP stage
func (conn *Conn) PrepareStage(stage int) error {
	for conn.Stage < stage {
		switch conn.Stage {
		case StageIdle:
			if err := conn.Describe(); err != nil {
				return err
			}
		case StageDescribeDone:
			if err := conn.Setup(); err != nil {
				return err
			}
		case StageSetupDone:
			if err := conn.Play(); err != nil {
				return err
			}
		}
	}
	return nil
}
