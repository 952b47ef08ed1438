package export

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Palette is the stroke colour cycle for value columns.
var Palette = []string{"#00ff00", "#00bfff", "#ff8c00", "#ff4500", "#da70d6", "#ffd700"}

type SVGOptions struct {
	Width, Height int
	// LogX plots the abscissa on a log10 scale. Non-positive samples are
	// dropped.
	LogX bool
}

// WriteSVG draws every value column of t as a polyline against the
// abscissa, with a legend built from the column headers.
func WriteSVG(w io.Writer, t *Table, opts SVGOptions) error {
	_, err := io.WriteString(w, TableToSVG(t, opts))
	return err
}

// TableToSVG renders the table, or "" when it has no value column or
// fewer than two rows.
func TableToSVG(t *Table, opts SVGOptions) string {
	if len(t.Columns) < 2 || t.Rows() < 2 {
		return ""
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}

	xs := t.Columns[0].Values
	tx := func(x float64) (float64, bool) {
		if !opts.LogX {
			return x, true
		}
		if x <= 0 {
			return 0, false
		}
		return math.Log10(x), true
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, x := range xs {
		px, ok := tx(x)
		if !ok {
			continue
		}
		minX, maxX = math.Min(minX, px), math.Max(maxX, px)
		for _, c := range t.Columns[1:] {
			minY, maxY = math.Min(minY, c.Values[i]), math.Max(maxY, c.Values[i])
		}
	}
	if math.IsInf(minX, 0) {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
	if t.Title != "" {
		fmt.Fprintf(&sb, `<text x="8" y="16" fill="#cccccc" font-family="monospace" font-size="12">%s</text>
`, escape(t.Title))
	}

	for j, c := range t.Columns[1:] {
		color := Palette[j%len(Palette)]
		sb.WriteString(`<path fill="none" stroke="` + color + `" stroke-width="1.5" d="`)
		first := true
		for i, x := range xs {
			px, ok := tx(x)
			if !ok {
				continue
			}
			sx := (px - minX) / rangeX * float64(width)
			sy := float64(height) - (c.Values[i]-minY)/rangeY*float64(height)
			if first {
				fmt.Fprintf(&sb, "M%.1f,%.1f", sx, sy)
				first = false
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", sx, sy)
			}
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="11">%s</text>
`, width-180, 16+14*(j+1), color, escape(c.Header()))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
