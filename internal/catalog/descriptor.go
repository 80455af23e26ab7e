package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RowDescriptor is one bulk-import row after its shape has been resolved.
// It accepts either an object
//
//	{"col1": "..", "col2": "..", "audio": "moon.wav"}
//	{"col1": "..", "col2": "..", "audio_id": 7}
//
// or a positional array whose third slot is an id or a filename
//
//	["col1", "col2", "moon.wav"]
//	["col1", "col2", 7]
type RowDescriptor struct {
	Col1     string
	Col2     string
	AudioID  *int64
	Filename string // raw candidate; whitespace-only still counts and never matches
}

// filenameKeys are checked in order; the first non-empty one wins
var filenameKeys = []string{"audio", "audio_filename", "filename"}

// UnmarshalJSON decodes either descriptor shape. Values of any other JSON
// type produce an empty descriptor.
func (d *RowDescriptor) UnmarshalJSON(data []byte) error {
	*d = RowDescriptor{}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		d.fromObject(v)
	case []interface{}:
		d.fromPositional(v)
	}
	return nil
}

func (d *RowDescriptor) fromObject(obj map[string]interface{}) {
	d.Col1 = textValue(obj["col1"])
	d.Col2 = textValue(obj["col2"])
	if id, ok := idValue(obj["audio_id"]); ok {
		d.AudioID = &id
	}
	for _, key := range filenameKeys {
		if s, ok := obj[key].(string); ok && s != "" {
			d.Filename = s
			break
		}
	}
}

func (d *RowDescriptor) fromPositional(items []interface{}) {
	if len(items) > 0 {
		d.Col1 = textValue(items[0])
	}
	if len(items) > 1 {
		d.Col2 = textValue(items[1])
	}
	if len(items) > 2 {
		third := items[2]
		if id, ok := idValue(third); ok {
			d.AudioID = &id
		} else if s, ok := third.(string); ok {
			d.Filename = s
		}
	}
}

// textValue renders a scalar JSON value as column text; null and composite
// values become "".
func textValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// idValue extracts an integer id from a JSON number or an all-digit string
func idValue(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if id, err := t.Int64(); err == nil {
			return id, true
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	case string:
		return parseDigits(strings.TrimSpace(t))
	}
	return 0, false
}

func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseAudioReference interprets an explicit audio reference from a single
// row edit. An empty string clears the reference (nil, nil); digits set it;
// anything else is ErrMalformedIdentifier.
func ParseAudioReference(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, ok := parseDigits(s)
	if !ok {
		return nil, ErrMalformedIdentifier
	}
	return &id, nil
}
