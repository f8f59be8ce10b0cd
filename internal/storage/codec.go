package storage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var ErrBadNPY = errors.New("storage: malformed npy data")

const (
	npyMagic     = "\x93NUMPY"
	npyAlignment = 64

	// maxNPYElements bounds the shape a header may declare, 2 GiB of float64.
	maxNPYElements = 1 << 28
	// npyRowChunk caps the rows preallocated before the payload is read.
	npyRowChunk = 4096
)

var (
	npyDescr = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	npyOrder = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	npyShape = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// WriteCSV writes one comma-separated line per row using the shortest
// representation that parses back to the same float64.
func WriteCSV(w io.Writer, rows [][]float64) error {
	cw := csv.NewWriter(w)
	record := make([]string, 0)
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, 0, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %d: %w", i+1, j+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteNPY writes rows as a version 1.0 NumPy array of little-endian float64
// with shape (len(rows), width).
func WriteNPY(w io.Writer, rows [][]float64, width int) error {
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d), }", len(rows), width)
	pad := (npyAlignment - (len(npyMagic)+4+len(header)+1)%npyAlignment) % npyAlignment
	header += strings.Repeat(" ", pad) + "\n"

	bw := bufio.NewWriter(w)
	bw.WriteString(npyMagic)
	bw.Write([]byte{1, 0})
	if err := binary.Write(bw, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	bw.WriteString(header)

	var word [8]byte
	for _, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(row), width)
		}
		for _, v := range row {
			binary.LittleEndian.PutUint64(word[:], math.Float64bits(v))
			bw.Write(word[:])
		}
	}
	return bw.Flush()
}

// ReadNPY reads a C-ordered float64 NumPy array of rank 1 or 2. A vector is
// returned as a single column.
func ReadNPY(r io.Reader) ([][]float64, error) {
	br := bufio.NewReader(r)

	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, prefix); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadNPY, err)
	}
	if string(prefix[:len(npyMagic)]) != npyMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadNPY)
	}

	var headerLen int
	switch major := prefix[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadNPY, err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadNPY, err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadNPY, major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadNPY, err)
	}

	rows, width, err := parseNPYHeader(header)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, 0, min(rows, npyRowChunk))
	var word [8]byte
	for i := 0; i < rows; i++ {
		row := make([]float64, width)
		for j := range row {
			if _, err := io.ReadFull(br, word[:]); err != nil {
				return nil, fmt.Errorf("%w: short payload at row %d: %v", ErrBadNPY, i, err)
			}
			row[j] = math.Float64frombits(binary.LittleEndian.Uint64(word[:]))
		}
		out = append(out, row)
	}
	return out, nil
}

func parseNPYHeader(header []byte) (rows, width int, err error) {
	descr := npyDescr.FindSubmatch(header)
	if descr == nil || string(descr[1]) != "<f8" {
		return 0, 0, fmt.Errorf("%w: only little-endian float64 is supported", ErrBadNPY)
	}
	if order := npyOrder.FindSubmatch(header); order == nil || string(order[1]) != "False" {
		return 0, 0, fmt.Errorf("%w: fortran order is not supported", ErrBadNPY)
	}
	shape := npyShape.FindSubmatch(header)
	if shape == nil {
		return 0, 0, fmt.Errorf("%w: missing shape", ErrBadNPY)
	}

	dims := make([]int, 0, 2)
	for _, part := range bytes.Split(shape[1], []byte(",")) {
		part = bytes.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		d, err := strconv.Atoi(string(part))
		if err != nil || d < 0 {
			return 0, 0, fmt.Errorf("%w: bad dimension %q", ErrBadNPY, part)
		}
		dims = append(dims, d)
	}

	switch len(dims) {
	case 1:
		rows, width = dims[0], 1
	case 2:
		rows, width = dims[0], dims[1]
	default:
		return 0, 0, fmt.Errorf("%w: rank %d arrays are not supported", ErrBadNPY, len(dims))
	}
	if rows > maxNPYElements || width > maxNPYElements || rows*width > maxNPYElements {
		return 0, 0, fmt.Errorf("%w: shape (%d, %d) exceeds %d elements", ErrBadNPY, rows, width, maxNPYElements)
	}
	return rows, width, nil
}

// ReadFile loads an output file, choosing the decoder from its extension.
func ReadFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")) {
	case CSV:
		return ReadCSV(f)
	case NPY:
		return ReadNPY(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
