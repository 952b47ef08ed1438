package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Banner is the first comment line of every CSV export.
const Banner = "SDOF Vibration Analysis Export"

// Note is one "# key: value" metadata line.
type Note struct {
	Key   string
	Value string
}

// Notef formats a note value.
func Notef(key, format string, args ...any) Note {
	return Note{Key: key, Value: fmt.Sprintf(format, args...)}
}

// WriteCSV writes the banner, the generation time, the notes and a bare
// "#" separator as comment lines, then the header and one row per sample.
func WriteCSV(w io.Writer, t *Table, notes []Note) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", Banner)
	fmt.Fprintf(bw, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	if t.Title != "" {
		fmt.Fprintf(bw, "# title: %s\n", t.Title)
	}
	for _, n := range notes {
		fmt.Fprintf(bw, "# %s: %s\n", n.Key, n.Value)
	}
	bw.WriteString("#\n")

	cw := csv.NewWriter(bw)
	if err := cw.Write(t.Headers()); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for i := 0; i < t.Rows(); i++ {
		for j, c := range t.Columns {
			record[j] = strconv.FormatFloat(c.Values[i], 'g', 10, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadCSV parses a file written by WriteCSV. Comment lines of the form
// "# key: value" come back as notes; the banner and separator are skipped.
func ReadCSV(r io.Reader) (*Table, []Note, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	t := &Table{}
	var notes []Note
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "#") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ": ")
		switch {
		case !ok:
			continue
		case key == "title":
			t.Title = value
		default:
			notes = append(notes, Note{Key: key, Value: value})
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comment = '#'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv has no header")
	}

	for _, h := range records[0] {
		name, unit := parseHeader(h)
		t.Columns = append(t.Columns, Column{Name: name, Unit: unit, Values: make([]float64, 0, len(records)-1)})
	}
	for line, rec := range records[1:] {
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %q: %w", line+1, t.Columns[j].Name, err)
			}
			t.Columns[j].Values = append(t.Columns[j].Values, v)
		}
	}
	return t, notes, nil
}
