package report

import (
	"fmt"
	"strings"

	"github.com/awtools/aw-analyzer/ai"
	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/internal/util"
	"github.com/awtools/aw-analyzer/slack"
)

// DailyData carries everything the daily layout renders.
type DailyData struct {
	Date         string // YYYY-MM-DD being reported
	Metrics      aw.DailyMetrics
	Analysis     *ai.DailyAnalysis // nil renders a metrics-only message
	DashboardURL string            // ActivityWatch web UI base, empty = no links section
	Hostname     string            // host segment of the dashboard deep links
}

// Daily renders the daily report. The block order is fixed: header,
// optional summary, key metrics, top apps, then insights, tip and
// dashboard links when present.
func Daily(data DailyData) slack.Message {
	blocks := []*slack.Block{
		slack.Header(fmt.Sprintf("📊 Daily Report %s", data.Date)),
	}

	if data.Analysis != nil && data.Analysis.Summary != "" {
		blocks = append(blocks, slack.Section(slack.Escape(data.Analysis.Summary)))
	}

	blocks = append(blocks,
		slack.Divider(),
		slack.FieldsSection(
			"*Work*\n"+util.FormatSeconds(data.Metrics.WorkSeconds),
			"*Max continuous*\n"+util.FormatSeconds(data.Metrics.MaxContinuousSeconds),
			"*Night work*\n"+util.FormatSeconds(data.Metrics.NightWorkSeconds),
			"*Date*\n"+data.Date,
		),
		slack.Divider(),
		slack.Section(topAppsText(data.Metrics.TopApps)),
	)

	if data.Analysis != nil && len(data.Analysis.Insights) > 0 {
		var b strings.Builder
		b.WriteString("*Insights*")
		for _, insight := range data.Analysis.Insights {
			b.WriteString("\n• ")
			b.WriteString(slack.Escape(insight))
		}
		blocks = append(blocks, slack.Divider(), slack.Section(b.String()))
	}

	if data.Analysis != nil && data.Analysis.Tip != "" {
		blocks = append(blocks,
			slack.Divider(),
			slack.Context("💡 "+slack.Escape(data.Analysis.Tip)))
	}

	if data.DashboardURL != "" {
		blocks = append(blocks,
			slack.Divider(),
			slack.Section(dashboardLinks(data.DashboardURL, data.Hostname)))
	}

	return slack.Message{
		Text:   fmt.Sprintf("Daily Report %s: %s active", data.Date, util.FormatSeconds(data.Metrics.WorkSeconds)),
		Blocks: blocks,
	}
}

// topAppsText ranks applications, medals for the podium.
func topAppsText(apps []aw.AppTotal) string {
	if len(apps) == 0 {
		return "*Top Apps*\nNo application activity recorded."
	}

	var b strings.Builder
	b.WriteString("*Top Apps*")
	for i, app := range apps {
		fmt.Fprintf(&b, "\n%s %s (%s)",
			rankMarker(i), slack.Escape(app.App), util.FormatSeconds(app.Seconds))
	}
	return b.String()
}

// dashboardLinks deep-links into the local ActivityWatch web UI. The
// activity view needs the bucket hostname; without one only the
// timeline link is emitted.
func dashboardLinks(baseURL, hostname string) string {
	base := strings.TrimRight(baseURL, "/")

	links := make([]string, 0, 2)
	if hostname != "" {
		links = append(links, fmt.Sprintf("<%s/#/activity/%s|Activity>", base, hostname))
	}
	links = append(links, fmt.Sprintf("<%s/#/timeline|Timeline>", base))

	return "*Dashboards*\n" + strings.Join(links, " · ")
}
