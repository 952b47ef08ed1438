package analysis

import (
	"strings"

	"github.com/san-kum/sdofsim/internal/dynamo"
)

// PhasePortrait2D is a displacement-velocity trajectory.
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []dynamo.Point
}

// PhasePortrait pairs displacement (mm) with velocity (m/s) for every
// recorded state of a run.
func PhasePortrait(r *dynamo.Result) *PhasePortrait2D {
	if r == nil {
		return nil
	}
	portrait := &PhasePortrait2D{
		XLabel: "x [mm]",
		YLabel: "v [m/s]",
		Points: make([]dynamo.Point, len(r.States)),
	}
	for i, s := range r.States {
		portrait.Points[i] = dynamo.Point{X: s.X * dynamo.MillimetersPerMeter, Y: s.V}
	}
	return portrait
}

// PhasePortraitToASCII rasterises the portrait onto a width×height grid of
// runes, drawing the axes where they are in view.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
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

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
