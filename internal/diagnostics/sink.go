package diagnostics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/storage"
)

// OutputStdout prints each row as it is produced instead of buffering it.
const OutputStdout = "stdout"

// Stdout is where stdout sinks print. Tests may replace it.
var Stdout io.Writer = os.Stdout

type sink interface {
	WriteRow(row []float64) error
	Flush() error
}

type stdoutSink struct {
	w     io.Writer
	label string
}

func (s *stdoutSink) WriteRow(row []float64) error {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	_, err := fmt.Fprintf(s.w, "%s: %s\n", s.label, strings.Join(fields, " "))
	return err
}

func (s *stdoutSink) Flush() error { return nil }

// output holds the sink settings shared by every diagnostic.
type output struct {
	kind      string
	format    string
	directory string
	filename  string
}

func parseOutput(kind string, cfg dynamo.Config, defaultFilename string) (output, error) {
	o := output{kind: kind}
	var err error
	if o.format, err = cfg.StringOr("output_type", string(storage.CSV)); err != nil {
		return o, err
	}
	o.format = strings.ToLower(o.format)
	if o.directory, err = cfg.StringOr("directory", ""); err != nil {
		return o, err
	}
	if o.filename, err = cfg.StringOr("filename", defaultFilename); err != nil {
		return o, err
	}

	if o.format == OutputStdout {
		return o, nil
	}
	if _, err := storage.ParseFormat(o.format); err != nil {
		return o, fmt.Errorf("%s output_type: %w", kind, err)
	}
	if o.filename == "" {
		return o, fmt.Errorf("%w: %s diagnostic %q", dynamo.ErrMissingKey, kind, "filename")
	}
	return o, nil
}

// Path is the file the output is written to, or "" for stdout.
func (o output) Path() string {
	if o.format == OutputStdout {
		return ""
	}
	return filepath.Join(o.directory, o.filename)
}

// open creates the sink for rows of the given width. Buffered sinks hold one
// row per clock step plus the final dump.
func (o output) open(rows, width int) (sink, *storage.OutputBuffer, error) {
	if o.format == OutputStdout {
		return &stdoutSink{w: Stdout, label: o.kind}, nil, nil
	}
	buf, err := storage.NewOutputBuffer(o.Path(), storage.Format(o.format), rows, width)
	if err != nil {
		return nil, nil, err
	}
	return buf, buf, nil
}

func (o output) records(buf *storage.OutputBuffer) []storage.OutputRecord {
	if buf == nil {
		return nil
	}
	return []storage.OutputRecord{{
		Diagnostic: o.kind,
		Path:       buf.Filename(),
		Format:     string(buf.Format()),
		Rows:       buf.Index(),
		Width:      buf.Width(),
	}}
}
