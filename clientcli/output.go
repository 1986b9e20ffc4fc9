package clientcli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sagarc03/sfs"
)

// Output formats accepted by NewFormatter.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formatter formats invocation outcomes for output.
type Formatter interface {
	FormatResult(w io.Writer, op sfs.Operation, result *sfs.Result) error
	FormatFailure(w io.Writer, failure *sfs.Failure) error
}

// NewFormatter returns the formatter for format. An empty format is human.
func NewFormatter(format string, quiet bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatHuman:
		return &HumanFormatter{Quiet: quiet}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s (valid formats: human, json, yaml)", ErrUnknownFormat, format)
	}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatResult formats a success result as human-readable text.
func (f *HumanFormatter) FormatResult(w io.Writer, op sfs.Operation, result *sfs.Result) error {
	if f.Quiet && op.Mutates() {
		return nil
	}

	switch op {
	case sfs.OpListFiles:
		records, err := sfs.ParseListing(result.Listing)
		if err != nil {
			return writeIndented(w, result.Listing)
		}
		formatRecords(w, records)
		return nil
	case sfs.OpFileMostRecent:
		return writeIndented(w, result.FileMostRecent)
	case sfs.OpListContexts:
		contexts, err := parseContexts(result.Listing)
		if err != nil {
			return writeIndented(w, result.Listing)
		}
		formatContexts(w, contexts)
		return nil
	}

	_, _ = fmt.Fprintf(w, "%s: ok (code %d, changed %t)\n", op, result.Code, result.Changed)
	if len(result.Response) > 0 && string(result.Response) != "null" {
		return writeIndented(w, result.Response)
	}
	return nil
}

// FormatFailure formats a failure as human-readable text.
func (f *HumanFormatter) FormatFailure(w io.Writer, failure *sfs.Failure) error {
	_, _ = fmt.Fprintf(w, "Error: %s\n", failure.Msg)
	if failure.Code != 0 {
		_, _ = fmt.Fprintf(w, "  Code: %d\n", failure.Code)
	}
	if failure.URL != "" {
		_, _ = fmt.Fprintf(w, "  URL: %s\n", failure.URL)
	}
	if failure.Response != "" {
		_, _ = fmt.Fprintf(w, "  Response: %s\n", failure.Response)
	}
	return nil
}

func formatRecords(w io.Writer, records []sfs.FileRecord) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No files found")
		return
	}

	type row struct{ name, date, size string }
	rows := make([]row, len(records))

	maxNameLen := 4 // "NAME"
	for i, r := range records {
		var summary fileSummary
		_ = json.Unmarshal(r.Raw, &summary)

		rows[i] = row{name: summary.Name, date: "-", size: "-"}
		if r.Date != nil {
			rows[i].date = fmt.Sprint(r.Date)
		}
		if summary.Size != nil {
			rows[i].size = formatSize(*summary.Size)
		}
		maxNameLen = max(maxNameLen, len(summary.Name))
	}
	maxNameLen = min(maxNameLen, 60)

	_, _ = fmt.Fprintf(w, "%-*s  %-20s  %s\n", maxNameLen, "NAME", "DATE", "SIZE")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 20), strings.Repeat("-", 10))

	for _, r := range rows {
		name := r.name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-*s  %-20s  %s\n", maxNameLen, name, r.date, r.size)
	}

	_, _ = fmt.Fprintf(w, "\n%d file(s)\n", len(records))
}

func formatContexts(w io.Writer, contexts []contextSummary) {
	if len(contexts) == 0 {
		_, _ = fmt.Fprintln(w, "No contexts found")
		return
	}

	maxOrgLen := 3 // "ORG"
	for _, c := range contexts {
		maxOrgLen = max(maxOrgLen, len(c.Org))
	}

	_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxOrgLen, "ORG", "CONTEXT")
	for _, c := range contexts {
		org := c.Org
		if org == "" {
			org = "-"
		}
		_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxOrgLen, org, c.Name)
	}

	_, _ = fmt.Fprintf(w, "\n%d context(s)\n", len(contexts))
}

// formatSize formats bytes as human-readable size.
func formatSize(n int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case n >= GB:
		return fmt.Sprintf("%.1f GB", float64(n)/GB)
	case n >= MB:
		return fmt.Sprintf("%.1f MB", float64(n)/MB)
	case n >= KB:
		return fmt.Sprintf("%.1f KB", float64(n)/KB)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func writeIndented(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatResult formats a success result as JSON.
func (f *JSONFormatter) FormatResult(w io.Writer, _ sfs.Operation, result *sfs.Result) error {
	return writeJSON(w, result)
}

// FormatFailure formats a failure as JSON.
func (f *JSONFormatter) FormatFailure(w io.Writer, failure *sfs.Failure) error {
	return writeJSON(w, failure)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAMLFormatter outputs YAML.
type YAMLFormatter struct{}

// FormatResult formats a success result as YAML.
func (f *YAMLFormatter) FormatResult(w io.Writer, _ sfs.Operation, result *sfs.Result) error {
	return writeYAML(w, result)
}

// FormatFailure formats a failure as YAML.
func (f *YAMLFormatter) FormatFailure(w io.Writer, failure *sfs.Failure) error {
	return writeYAML(w, failure)
}

// writeYAML round-trips v through JSON so embedded raw payloads become
// structured YAML instead of byte strings.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
