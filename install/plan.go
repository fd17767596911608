package install

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
)

// DefaultLabel names the launch agent when the config leaves it empty
const DefaultLabel = "com.awtools.aw-analyzer"

// secretEnvKeys are masked in every dry-run rendering
var secretEnvKeys = map[string]bool{
	"OPENROUTER_API_KEY": true,
	"SLACK_WEBHOOK_URL":  true,
	"SLACK_BOT_TOKEN":    true,
}

// Plan is everything Install and Uninstall need, resolved up front so a
// dry run can print exactly what a real run would do.
type Plan struct {
	Label           string
	Executable      string
	PlistPath       string
	IntervalSeconds int
	StdoutLog       string
	StderrLog       string
	Env             map[string]string
}

// NewPlan resolves the agent plan from the effective config. The
// interval is clamped to 1..1440 minutes; secrets bound through the
// environment ride along so launchd-started ticks see them even though
// launchd never sources the user's shell profile.
func NewPlan(cfg *config.Config) (*Plan, error) {
	label := cfg.Install.Label
	if label == "" {
		label = DefaultLabel
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "resolving executable path")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "resolving home directory")
	}

	env := map[string]string{}
	if cfg.OpenRouter.APIKey != "" {
		env["OPENROUTER_API_KEY"] = cfg.OpenRouter.APIKey
	}
	if cfg.Slack.WebhookURL != "" {
		env["SLACK_WEBHOOK_URL"] = cfg.Slack.WebhookURL
	}
	if cfg.Slack.BotToken != "" {
		env["SLACK_BOT_TOKEN"] = cfg.Slack.BotToken
	}
	if cfg.Slack.ChannelID != "" {
		env["SLACK_CHANNEL_ID"] = cfg.Slack.ChannelID
	}

	logDir := filepath.Join(config.Dir(), "log")
	return &Plan{
		Label:           label,
		Executable:      exe,
		PlistPath:       filepath.Join(home, "Library", "LaunchAgents", label+".plist"),
		IntervalSeconds: util.ClampInt(cfg.Install.IntervalMinutes, 1, 1440) * 60,
		StdoutLog:       filepath.Join(logDir, label+".out.log"),
		StderrLog:       filepath.Join(logDir, label+".err.log"),
		Env:             env,
	}, nil
}

// redacted returns a copy of the plan with secret env values masked
func (p *Plan) redacted() *Plan {
	out := *p
	out.Env = make(map[string]string, len(p.Env))
	for k, v := range p.Env {
		if secretEnvKeys[k] {
			v = "****"
		}
		out.Env[k] = v
	}
	return &out
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var plistTemplate = template.Must(template.New("plist").
	Funcs(template.FuncMap{"xml": xmlEscaper.Replace}).
	Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label | xml}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.Executable | xml}}</string>
		<string>tick</string>
	</array>
	<key>StartInterval</key>
	<integer>{{.IntervalSeconds}}</integer>
	<key>RunAtLoad</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.StdoutLog | xml}}</string>
	<key>StandardErrorPath</key>
	<string>{{.StderrLog | xml}}</string>
{{- if .Env}}
	<key>EnvironmentVariables</key>
	<dict>
{{- range $k, $v := .Env}}
		<key>{{$k | xml}}</key>
		<string>{{$v | xml}}</string>
{{- end}}
	</dict>
{{- end}}
</dict>
</plist>
`))

// renderPlist renders the plan into launchd property-list XML. Template
// map iteration is key-sorted, so the output is deterministic.
func renderPlist(plan *Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := plistTemplate.Execute(&buf, plan); err != nil {
		return nil, errors.Wrap(err, "rendering launch agent plist")
	}
	return buf.Bytes(), nil
}
