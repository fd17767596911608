package report

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/errors"
)

// DefaultRendererCommand converts SVG on stdin to PNG on stdout.
const DefaultRendererCommand = "rsvg-convert -f png"

// Renderer turns a heatmap SVG into PNG bytes.
type Renderer interface {
	Render(ctx context.Context, svg []byte) ([]byte, error)
}

// ExecRenderer pipes SVG through an external converter process.
type ExecRenderer struct {
	argv   []string
	logger *zap.SugaredLogger
}

// NewExecRenderer parses command with shell-style quoting. An empty
// command selects rsvg-convert.
func NewExecRenderer(command string, logger *zap.SugaredLogger) (*ExecRenderer, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if strings.TrimSpace(command) == "" {
		command = DefaultRendererCommand
	}

	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid renderer command %q", command)
	}
	if len(argv) == 0 {
		return nil, errors.Newf("renderer command %q is empty", command)
	}

	return &ExecRenderer{argv: argv, logger: logger}, nil
}

// Render executes the converter. A missing binary surfaces as an error
// so the caller can degrade to an imageless message.
func (r *ExecRenderer) Render(ctx context.Context, svg []byte) ([]byte, error) {
	if _, err := exec.LookPath(r.argv[0]); err != nil {
		return nil, errors.Wrapf(err, "renderer %q not available", r.argv[0])
	}

	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Stdin = bytes.NewReader(svg)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "%s: %s", r.argv[0], msg)
		}
		return nil, errors.Wrapf(err, "%s failed", r.argv[0])
	}

	r.logger.Debugw("Rendered heatmap",
		"renderer", r.argv[0],
		"svg_bytes", len(svg),
		"png_bytes", stdout.Len())
	return stdout.Bytes(), nil
}

var _ Renderer = (*ExecRenderer)(nil)
