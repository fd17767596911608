package report

import (
	"fmt"
	"strings"

	"github.com/awtools/aw-analyzer/timeline"
)

// Heatmap geometry. Hours run across, days run down.
const (
	heatCell   = 16
	heatGap    = 3
	heatLeft   = 78 // room for the date labels
	heatTop    = 22 // room for the hour labels
	heatRight  = 10
	heatLegend = 34
)

// heatColors is the activity ramp from an idle hour to a full one.
var heatColors = [5]string{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"}

// HeatmapSVG renders per-day hourly activity as an SVG grid. Output is
// deterministic for a given input.
func HeatmapSVG(bins []timeline.DayBins) []byte {
	width := heatLeft + 24*(heatCell+heatGap) + heatRight
	height := heatTop + len(bins)*(heatCell+heatGap) + heatLegend

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>` + "\n")

	// Hour axis, one label every three hours
	for h := 0; h < 24; h += 3 {
		x := heatLeft + h*(heatCell+heatGap)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="monospace" font-size="10" fill="#57606a">%02d</text>`+"\n",
			x, heatTop-8, h)
	}

	for i, day := range bins {
		y := heatTop + i*(heatCell+heatGap)
		fmt.Fprintf(&b, `<text x="4" y="%d" font-family="monospace" font-size="10" fill="#57606a">%s</text>`+"\n",
			y+heatCell-4, day.Date)
		for h := 0; h < 24; h++ {
			x := heatLeft + h*(heatCell+heatGap)
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s"/>`+"\n",
				x, y, heatCell, heatCell, heatColor(day.Hours[h].ActiveSeconds/3600))
		}
	}

	legendY := heatTop + len(bins)*(heatCell+heatGap) + 10
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="monospace" font-size="10" fill="#57606a">Less</text>`+"\n",
		heatLeft, legendY+heatCell-4)
	swatchX := heatLeft + 34
	for _, c := range heatColors {
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s"/>`+"\n",
			swatchX, legendY, heatCell, heatCell, c)
		swatchX += heatCell + heatGap
	}
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="monospace" font-size="10" fill="#57606a">More</text>`+"\n",
		swatchX+4, legendY+heatCell-4)

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// heatColor maps an active-seconds ratio onto the ramp. A full hour is
// ratio 1; clip rounding can nudge it slightly past.
func heatColor(ratio float64) string {
	switch {
	case ratio <= 0:
		return heatColors[0]
	case ratio < 0.25:
		return heatColors[1]
	case ratio < 0.5:
		return heatColors[2]
	case ratio < 0.75:
		return heatColors[3]
	default:
		return heatColors[4]
	}
}
