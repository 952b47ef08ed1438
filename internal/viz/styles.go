package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary)
}

func label() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
}

func value() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Text)
}

// Heading renders a section title with an underline.
func Heading(text string) string {
	return title().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(CurrentTheme.Border).
		Render(text)
}

// KV is one label/value line of a summary.
type KV struct {
	Label string
	Value string
}

// KVf formats the value of a summary line.
func KVf(label, format string, args ...any) KV {
	return KV{Label: label, Value: fmt.Sprintf(format, args...)}
}

// Summary aligns labels and renders them in a rounded panel.
func Summary(heading string, rows []KV) string {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Label))
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(r.Label))
		lines[i] = label().Render(r.Label+pad) + "  " + value().Render(r.Value)
	}
	body := strings.Join(lines, "\n")
	if heading != "" {
		body = title().Render(heading) + "\n" + body
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Border).
		Padding(0, 1).
		Render(body)
}

// Verdict renders PASS or FAIL followed by the detail text.
func Verdict(ok bool, detail string) string {
	if ok {
		return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Success).Render("PASS") + " " + detail
	}
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Error).Render("FAIL") + " " + detail
}

// Warning renders a highlighted warning line.
func Warning(text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Warning).Render("! " + text)
}

// Muted renders secondary text.
func Muted(text string) string {
	return label().Render(text)
}

// Sparkline renders values as block characters, sampled down to width.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var sb strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		sb.WriteRune(chars[idx])
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(sb.String())
}

// Separator is a muted horizontal rule.
func Separator(width int) string {
	if width < 8 {
		return label().Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return label().Render(strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-1))
}
