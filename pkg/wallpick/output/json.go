package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jamesainslie/wallpick/pkg/wallpick/manifest"
)

type jsonOutput struct {
	Entries []jsonEntry `json:"entries"`
	Meta    jsonMeta    `json:"meta"`
}

type jsonEntry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Mode      manifest.Mode `json:"mode"`
	Path      string        `json:"path"`
	Command   []string      `json:"command,omitempty"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
}

type jsonMeta struct {
	Dir    string `json:"dir,omitempty"`
	Total  int    `json:"total"`
	Failed int    `json:"failed"`
}

func toJSONEntry(e manifest.Entry) jsonEntry {
	return jsonEntry{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Mode:      e.Mode,
		Path:      e.Path,
		Command:   e.Command,
		Status:    status(e),
		Error:     e.Error,
	}
}

// JSONFormatter writes one indented JSON document with entries and meta.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	out := jsonOutput{
		Entries: make([]jsonEntry, len(r.Entries)),
		Meta: jsonMeta{
			Dir:    r.Dir,
			Total:  len(r.Entries),
			Failed: r.Failed(),
		},
	}
	for i, e := range r.Entries {
		out.Entries[i] = toJSONEntry(e)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// JSONLFormatter writes one compact JSON object per entry, for jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	for _, e := range r.Entries {
		if err := enc.Encode(toJSONEntry(e)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
	Register("jsonl", func() Formatter { return &JSONLFormatter{} })
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*JSONLFormatter)(nil)
)
