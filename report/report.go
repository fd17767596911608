// Package report composes the daily and weekly Slack reports. The block
// layouts are fixed so a reader can scan the same message shape every
// day; the heatmap is rendered as SVG and converted to PNG by an
// external tool before upload.
package report

import (
	"github.com/awtools/aw-analyzer/internal/util"
)

const dateLayout = "2006-01-02"

// rankMarkers decorate the top three rows of a ranking.
var rankMarkers = []string{"🥇", "🥈", "🥉"}

// rankMarker returns the medal for podium ranks and a bullet below them.
func rankMarker(i int) string {
	if i < len(rankMarkers) {
		return rankMarkers[i]
	}
	return "•"
}

// clockOrDash renders an average minute-of-day as HH:MM, or "--" when no
// day in the window produced a value.
func clockOrDash(minutes *float64) string {
	if minutes == nil {
		return "--"
	}
	return util.FormatClockMinute(int(*minutes + 0.5))
}
