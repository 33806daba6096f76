package commerce

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NA is rendered in place of a missing value.
const NA = "N/A"

// Text is a scalar the API may send as a string, number, bool or null.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	default:
		// Numbers, bools and nested values are kept verbatim.
		*t = Text(data)
		return nil
	}
}

func (t Text) String() string { return string(t) }

// OrNA returns the text, or NA when it is blank.
func (t Text) OrNA() string {
	if strings.TrimSpace(string(t)) == "" {
		return NA
	}
	return string(t)
}

// Lines is an ordered list of deliverables. The API sends either an array or
// one newline-separated string.
type Lines []string

func (l *Lines) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitLines(s)
		return nil
	}
	var raw []Text
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Lines, 0, len(raw))
	for _, v := range raw {
		out = append(out, string(v))
	}
	*l = out
	return nil
}

// SplitLines splits s on \n, \r\n or \r and drops blank and whitespace-only
// lines. The rest are kept as entered. The result is never nil.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	out := make([]string, 0, strings.Count(s, "\n")+1)
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
