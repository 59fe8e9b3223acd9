// Package logging parses the structured log lines written by the binaries
// under test so end-to-end tests can assert on them.
package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
)

// Line is one decoded log record. Level, Msg and Time are always present;
// everything else lands in Fields.
type Line struct {
	Level  string
	Msg    string
	Time   string
	Fields map[string]any
}

var errNotObject = errors.New("log line is not a JSON object")

// ParseLine decodes a single JSON log line.
func ParseLine(line string) (*Line, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return nil, errNotObject
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode log line: %w", err)
	}

	out := &Line{Fields: make(map[string]any)}
	for _, key := range []string{"level", "msg", "time"} {
		v, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("log line is missing %q", key)
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("log line field %q is not a string", key)
		}
		switch key {
		case "level":
			out.Level = s
		case "msg":
			out.Msg = s
		case "time":
			out.Time = s
		}
		delete(raw, key)
	}
	for k, v := range raw {
		out.Fields[k] = v
	}
	return out, nil
}

// ParseOutput decodes every log line in out, skipping anything that is not a
// valid record.
func ParseOutput(out string) []*Line {
	var lines []*Line
	scanner := bufio.NewScanner(strings.NewReader(stripansi.Strip(out)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		l, err := ParseLine(scanner.Text())
		if err != nil {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Find returns the first line with the given level and message.
func Find(lines []*Line, level, msg string) (*Line, bool) {
	for _, l := range lines {
		if l.Level == level && l.Msg == msg {
			return l, true
		}
	}
	return nil, false
}

// Timestamp parses Time as RFC 3339.
func (l *Line) Timestamp() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, l.Time)
}
