package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const infoVerb = "INFO"

// ServerInfo is the server's greeting: the first protocol line it sends after
// accepting a connection, announcing its identity and the capabilities the
// client must negotiate against (most importantly whether TLS is mandatory).
type ServerInfo struct {
	ServerID     string `json:"server_id"`
	Version      string `json:"version"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ProtoVersion int    `json:"proto"`
	TLSRequired  bool   `json:"tls_required"`
	TLSAvailable bool   `json:"tls_available"`
	AuthRequired bool   `json:"auth_required"`
	MaxPayload   int64  `json:"max_payload"`
}

// ParseServerInfo parses a complete greeting line of the form
//
//	INFO {"server_id":"...","tls_required":true,...}
//
// as extracted by ExtractLine (no trailing CRLF).
func ParseServerInfo(line []byte) (*ServerInfo, error) {
	verb, payload, found := bytes.Cut(line, []byte(" "))
	if !found || !bytes.EqualFold(verb, []byte(infoVerb)) {
		return nil, fmt.Errorf("expected %s greeting but got %q", infoVerb, Render(line))
	}

	var info ServerInfo
	if err := json.Unmarshal(bytes.TrimSpace(payload), &info); err != nil {
		return nil, fmt.Errorf("malformed %s payload %q: %w", infoVerb, Render(payload), err)
	}

	return &info, nil
}
