package report

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewExecRenderer(t *testing.T) {
	t.Run("empty command selects the default", func(t *testing.T) {
		r, err := NewExecRenderer("", zap.NewNop().Sugar())
		if err != nil {
			t.Fatalf("NewExecRenderer failed: %v", err)
		}
		want := []string{"rsvg-convert", "-f", "png"}
		if !reflect.DeepEqual(r.argv, want) {
			t.Errorf("Expected %v, got %v", want, r.argv)
		}
	})

	t.Run("quoted arguments split shell-style", func(t *testing.T) {
		r, err := NewExecRenderer(`convert --density '96 dpi' svg:- png:-`, nil)
		if err != nil {
			t.Fatalf("NewExecRenderer failed: %v", err)
		}
		want := []string{"convert", "--density", "96 dpi", "svg:-", "png:-"}
		if !reflect.DeepEqual(r.argv, want) {
			t.Errorf("Expected %v, got %v", want, r.argv)
		}
	})

	t.Run("unterminated quote is rejected", func(t *testing.T) {
		if _, err := NewExecRenderer(`rsvg-convert 'oops`, nil); err == nil {
			t.Error("Expected error for unterminated quote")
		}
	})
}

func TestExecRendererRender(t *testing.T) {
	t.Run("pipes stdin to stdout", func(t *testing.T) {
		r, err := NewExecRenderer("cat", nil)
		if err != nil {
			t.Fatalf("NewExecRenderer failed: %v", err)
		}

		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
		out, err := r.Render(context.Background(), svg)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if string(out) != string(svg) {
			t.Errorf("Expected passthrough output, got %q", out)
		}
	})

	t.Run("missing binary reports unavailable", func(t *testing.T) {
		r, err := NewExecRenderer("aw-analyzer-no-such-renderer", nil)
		if err != nil {
			t.Fatalf("NewExecRenderer failed: %v", err)
		}

		_, err = r.Render(context.Background(), []byte("<svg/>"))
		if err == nil {
			t.Fatal("Expected error for missing binary")
		}
		if !strings.Contains(err.Error(), "not available") {
			t.Errorf("Expected availability error, got: %v", err)
		}
	})

	t.Run("converter failure carries stderr", func(t *testing.T) {
		r, err := NewExecRenderer(`sh -c "echo conversion failed >&2; exit 3"`, nil)
		if err != nil {
			t.Fatalf("NewExecRenderer failed: %v", err)
		}

		_, err = r.Render(context.Background(), []byte("<svg/>"))
		if err == nil {
			t.Fatal("Expected error from failing converter")
		}
		if !strings.Contains(err.Error(), "conversion failed") {
			t.Errorf("Expected stderr in error, got: %v", err)
		}
	})
}
