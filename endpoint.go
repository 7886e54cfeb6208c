package rtstream

import (
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
)

// Endpoint identifies a single RTSP media endpoint exposed by the device,
// e.g. rtsp://192.168.1.21:8086/?camera=gaze. It is constructed by the
// status/discovery layer and stays disconnected until a stream is opened.
type Endpoint struct {
	Host   string
	Port   int
	Params string
}

func NewEndpoint(host string, port int, params string) Endpoint {
	return Endpoint{Host: host, Port: port, Params: params}
}

// ParseEndpoint parses an rtsp:// URL into an Endpoint.
func ParseEndpoint(raw string) (Endpoint, error) {
	u, err := neturl.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint: %w", err)
	}
	if u.Scheme != "rtsp" {
		return Endpoint{}, fmt.Errorf("endpoint: unsupported scheme %q", u.Scheme)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		host = u.Host
		portStr = "554"
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("endpoint: missing host in %q", raw)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint: invalid port %q", portStr)
	}
	return Endpoint{Host: host, Port: port, Params: u.RawQuery}, nil
}

// URL renders the endpoint in the device's rtsp://host:port/?params form.
func (e Endpoint) URL() string {
	u := neturl.URL{
		Scheme:   "rtsp",
		Host:     net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:     "/",
		RawQuery: e.Params,
	}
	return u.String()
}
