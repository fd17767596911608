package report

import (
	"fmt"
	"strings"

	"github.com/awtools/aw-analyzer/ai"
	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/internal/util"
	"github.com/awtools/aw-analyzer/slack"
	"github.com/awtools/aw-analyzer/timeline"
)

// weeklyTextLimit bounds the mrkdwn digest used as the message text and
// as the upload caption.
const weeklyTextLimit = 3500

// WeeklyImage points the weekly layout at the rendered heatmap. Source
// preference is FileID, then FileURL, then URL.
type WeeklyImage struct {
	FileID  string // uploaded file ID
	FileURL string // permalink to the uploaded file
	URL     string // public image URL
	Alt     string
}

// WeeklyData carries everything the weekly layout renders.
type WeeklyData struct {
	StartDate string // oldest date in the window
	EndDate   string // newest date in the window
	Summary   timeline.Summary
	Sleep     timeline.SleepWakeResult
	Projects  []aw.ProjectTotal
	Analysis  *ai.WeeklyAnalysis
	Image     *WeeklyImage // nil posts without the heatmap
}

// Weekly renders the weekly report. The block order is fixed: header,
// totals, project ranking, the heatmap when available, then the
// analysis with its next action as the footer.
func Weekly(data WeeklyData) slack.Message {
	blocks := []*slack.Block{
		slack.Header(fmt.Sprintf("📈 Weekly Report %s to %s", data.StartDate, data.EndDate)),
		slack.Divider(),
		slack.FieldsSection(
			"*Total*\n"+util.FormatSeconds(data.Summary.TotalNotAfkSeconds),
			fmt.Sprintf("*Avg/day*\n%s (%d of %d days)",
				util.FormatSeconds(data.Summary.AvgNotAfkSecondsPerDay),
				data.Summary.DaysWithData, data.Summary.Days),
			"*Avg wake*\n"+clockOrDash(data.Sleep.AvgWakeMinutes),
			"*Avg sleep*\n"+clockOrDash(data.Sleep.AvgSleepMinutes),
		),
		slack.Section(projectsText(data.Projects)),
	}

	if img := imageBlock(data.Image); img != nil {
		blocks = append(blocks, img)
	}

	if a := data.Analysis; a != nil {
		if a.Summary != "" {
			text := slack.Escape(a.Summary)
			if a.Title != "" {
				text = "*" + slack.Escape(a.Title) + "*\n" + text
			}
			blocks = append(blocks, slack.Divider(), slack.Section(text))
		}
		if len(a.Insights) > 0 {
			var b strings.Builder
			b.WriteString("*Insights*")
			for _, insight := range a.Insights {
				b.WriteString("\n• ")
				b.WriteString(slack.Escape(insight))
			}
			blocks = append(blocks, slack.Section(b.String()))
		}
		if a.NextAction != "" {
			blocks = append(blocks, slack.Context("👉 "+slack.Escape(a.NextAction)))
		}
	}

	return slack.Message{
		Text:   WeeklyText(data),
		Blocks: blocks,
	}
}

// WeeklyText renders the weekly report as a single mrkdwn string for
// text-only delivery paths and upload captions.
func WeeklyText(data WeeklyData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Weekly Report %s to %s*\n", data.StartDate, data.EndDate)
	fmt.Fprintf(&b, "Total %s across %d of %d days (avg %s/day)\n",
		util.FormatSeconds(data.Summary.TotalNotAfkSeconds),
		data.Summary.DaysWithData, data.Summary.Days,
		util.FormatSeconds(data.Summary.AvgNotAfkSecondsPerDay))
	fmt.Fprintf(&b, "Wake %s · Sleep %s\n",
		clockOrDash(data.Sleep.AvgWakeMinutes), clockOrDash(data.Sleep.AvgSleepMinutes))

	if len(data.Projects) > 0 {
		parts := make([]string, 0, len(data.Projects))
		for _, p := range data.Projects {
			parts = append(parts, fmt.Sprintf("%s (%s)",
				slack.Escape(p.Project), util.FormatSeconds(p.Seconds)))
		}
		fmt.Fprintf(&b, "Projects: %s\n", strings.Join(parts, ", "))
	}

	if a := data.Analysis; a != nil {
		if a.Summary != "" {
			if a.Title != "" {
				fmt.Fprintf(&b, "*%s*\n", slack.Escape(a.Title))
			}
			b.WriteString(slack.Escape(a.Summary))
			b.WriteString("\n")
		}
		for _, insight := range a.Insights {
			fmt.Fprintf(&b, "• %s\n", slack.Escape(insight))
		}
		if a.NextAction != "" {
			fmt.Fprintf(&b, "Next: %s", slack.Escape(a.NextAction))
		}
	}

	return util.TruncateRunes(strings.TrimRight(b.String(), "\n"), weeklyTextLimit)
}

// projectsText ranks editor projects, medals for the podium.
func projectsText(projects []aw.ProjectTotal) string {
	if len(projects) == 0 {
		return "*Projects*\nNo editor activity recorded."
	}

	var b strings.Builder
	b.WriteString("*Projects*")
	for i, p := range projects {
		fmt.Fprintf(&b, "\n%s %s (%s)",
			rankMarker(i), slack.Escape(p.Project), util.FormatSeconds(p.Seconds))
	}
	return b.String()
}

// imageBlock picks the best available image source, nil when none is.
func imageBlock(img *WeeklyImage) *slack.Block {
	if img == nil {
		return nil
	}

	alt := img.Alt
	if alt == "" {
		alt = "Weekly activity heatmap"
	}

	switch {
	case img.FileID != "":
		return slack.ImageFromFile(img.FileID, alt)
	case img.FileURL != "":
		return &slack.Block{
			Type:      slack.BlockTypeImage,
			AltText:   alt,
			SlackFile: &slack.FileRef{URL: img.FileURL},
		}
	case img.URL != "":
		return slack.ImageFromURL(img.URL, alt)
	default:
		return nil
	}
}
