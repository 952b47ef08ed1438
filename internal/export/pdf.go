package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Report is a one-document summary of an analysis.
type Report struct {
	Title   string
	Notes   []Note
	Summary []Note
	Table   *Table
	// MaxRows limits the printed table; rows are decimated evenly. Zero
	// prints every row.
	MaxRows int
}

// WritePDF renders the report on A4 pages.
func WritePDF(w io.Writer, r Report) error {
	title := r.Title
	if title == "" {
		title = "SDOF Vibration Analysis"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(8)

	section := func(name string, notes []Note) {
		if len(notes) == 0 {
			return
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, name)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, n := range notes {
			pdf.CellFormat(60, 6, n.Key, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, n.Value, "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}
	section("Parameters", r.Notes)
	section("Results", r.Summary)

	if r.Table != nil && len(r.Table.Columns) > 0 && r.Table.Rows() > 0 {
		writeTable(pdf, r.Table, r.MaxRows)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func writeTable(pdf *gofpdf.Fpdf, t *Table, maxRows int) {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(t.Columns))

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		for _, h := range t.Headers() {
			pdf.CellFormat(colW, 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, t.Title)
	pdf.Ln(8)
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, i := range decimate(t.Rows(), maxRows) {
		if pdf.GetY()+6 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for _, v := range t.Row(i) {
			pdf.CellFormat(colW, 5, strconv.FormatFloat(v, 'g', 6, 64), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// decimate picks at most limit evenly spaced indices from [0, n), always
// including the first and last.
func decimate(n, limit int) []int {
	if limit <= 0 || n <= limit {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if limit == 1 {
		return []int{0}
	}
	idx := make([]int, limit)
	for i := range idx {
		idx[i] = i * (n - 1) / (limit - 1)
	}
	return idx
}
