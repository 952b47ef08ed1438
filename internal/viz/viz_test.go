package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestGetTheme(t *testing.T) {
	if got := GetTheme("ocean"); got.Name != "ocean" {
		t.Errorf("expected ocean, got %s", got.Name)
	}
	if got := GetTheme("nope"); got.Name != ThemeCyberpunk.Name {
		t.Errorf("expected fallback to cyberpunk, got %s", got.Name)
	}
	if n := len(ThemeNames()); n != len(Themes) {
		t.Errorf("expected %d names, got %d", len(Themes), n)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme(ThemeCyberpunk.Name)
	SetTheme("minimal")
	if CurrentTheme.Name != "minimal" {
		t.Errorf("expected minimal, got %s", CurrentTheme.Name)
	}
}

func TestSummary(t *testing.T) {
	out := Summary("modal", []KV{KVf("fn", "%.3f Hz", 5.0329), {Label: "regime", Value: "underdamped"}})
	for _, want := range []string{"modal", "fn", "5.033 Hz", "underdamped"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestVerdict(t *testing.T) {
	if !strings.Contains(Verdict(true, "peak 1.2 mm"), "PASS") {
		t.Error("expected PASS")
	}
	if !strings.Contains(Verdict(false, "peak 9 mm"), "FAIL") {
		t.Error("expected FAIL")
	}
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	if w := lipgloss.Width(out); w != 8 {
		t.Errorf("expected width 8, got %d", w)
	}
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("expected lowest and highest blocks in %q", out)
	}

	if flat := Sparkline(nil, 4); flat != "────" {
		t.Errorf("expected flat line, got %q", flat)
	}
	if Sparkline([]float64{1}, 0) != "" {
		t.Error("expected empty sparkline for zero width")
	}
}

func TestSeparator(t *testing.T) {
	if w := lipgloss.Width(Separator(20)); w != 20 {
		t.Errorf("expected width 20, got %d", w)
	}
}
