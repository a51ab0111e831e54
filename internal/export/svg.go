package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Palette is used in order for successive series.
var Palette = []string{"#ff5f5f", "#5fff87", "#ffd75f", "#5fafff", "#ff87ff", "#5fffff"}

// Series is one named line of a plot, sampled at shared x positions.
type Series struct {
	Name   string
	Values []float64
}

// SeriesToSVG draws every series as a polyline against xs, with a legend
// in the top left corner. Non-finite values break the line.
func SeriesToSVG(xs []float64, series []Series, width, height int, title string) string {
	if len(xs) < 2 || len(series) == 0 {
		return ""
	}

	minX, maxX := xs[0], xs[len(xs)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 0) {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = math.Max(math.Abs(maxY), 1)
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="%d" y="16" fill="#bcbcbc" font-family="monospace" font-size="12" text-anchor="middle">%s</text>
<text x="4" y="%d" fill="#808080" font-family="monospace" font-size="10">%.4g</text>
<text x="4" y="%d" fill="#808080" font-family="monospace" font-size="10">%.4g</text>
`, width, height, width, height, width/2, escape(title), 28, maxY, height-4, minY))

	for i, s := range series {
		color := Palette[i%len(Palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))
		pen := false
		for k, v := range s.Values {
			if k >= len(xs) {
				break
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = false
				continue
			}
			x := (xs[k] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if pen {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
				pen = true
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="11">%s</text>
`, width-120, 34+14*i, color, escape(s.Name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func WriteSVG(w io.Writer, xs []float64, series []Series, width, height int, title string) error {
	svg := SeriesToSVG(xs, series, width, height, title)
	if svg == "" {
		return fmt.Errorf("export: nothing to draw")
	}
	_, err := io.WriteString(w, svg)
	return err
}

func SaveSVG(path string, xs []float64, series []Series, width, height int, title string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSVG(file, xs, series, width, height, title)
}
