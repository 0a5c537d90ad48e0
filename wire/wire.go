/*
The wire package holds the byte-level pieces of the ferrite client protocol
that the transport depends on: detecting complete protocol lines inside an
accumulating buffer, parsing the server's INFO greeting, and rendering raw
frames for trace logging. Everything here is a pure function over byte slices
so it can be exercised without a live connection.
*/
package wire

import (
	"bytes"
	"strings"
)

// Protocol lines are CRLF terminated
var crlf = []byte("\r\n")

// OKFrame is the fixed acknowledgment the server discards. The transport
// writes it once on clean shutdown purely to flush the socket's write buffer
// before tearing the socket down.
var OKFrame = []byte("+OK\r\n")

// ExtractLine returns the first complete protocol line in buf (without its
// CRLF terminator) and the unconsumed remainder. It never modifies buf, so
// calling it again on the same buffer yields the same result.
func ExtractLine(buf []byte) (line []byte, rest []byte, ok bool) {
	idx := bytes.Index(buf, crlf)
	if idx < 0 {
		return nil, buf, false
	}
	return buf[:idx], buf[idx+len(crlf):], true
}

// Render makes a raw frame printable for trace logs by surfacing the CRLF
// pairs that delimit protocol lines.
func Render(frame []byte) string {
	s := string(frame)
	s = strings.ReplaceAll(s, "\r", "␍")
	s = strings.ReplaceAll(s, "\n", "␊")
	return s
}
