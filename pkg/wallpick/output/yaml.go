package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

type yamlOutput struct {
	Entries []yamlEntry `yaml:"entries"`
	Meta    yamlMeta    `yaml:"meta"`
}

type yamlEntry struct {
	ID        string    `yaml:"id"`
	Timestamp time.Time `yaml:"timestamp"`
	Mode      string    `yaml:"mode"`
	Path      string    `yaml:"path"`
	Command   []string  `yaml:"command,omitempty"`
	Status    string    `yaml:"status"`
	Error     string    `yaml:"error,omitempty"`
}

type yamlMeta struct {
	Dir    string `yaml:"dir,omitempty"`
	Total  int    `yaml:"total"`
	Failed int    `yaml:"failed"`
}

// YAMLFormatter writes the same structure as JSONFormatter in YAML.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	out := yamlOutput{
		Entries: make([]yamlEntry, len(r.Entries)),
		Meta: yamlMeta{
			Dir:    r.Dir,
			Total:  len(r.Entries),
			Failed: r.Failed(),
		},
	}
	for i, e := range r.Entries {
		out.Entries[i] = yamlEntry{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Mode:      string(e.Mode),
			Path:      e.Path,
			Command:   e.Command,
			Status:    status(e),
			Error:     e.Error,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	Register("yaml", func() Formatter { return &YAMLFormatter{} })
}

var _ Formatter = (*YAMLFormatter)(nil)
