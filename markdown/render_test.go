package markdown

import (
	"strings"
	"testing"
)

func TestRenderProducesHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("# Hello\n\nSome **bold** text.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{`<h1 id="hello">Hello</h1>`, "<strong>bold</strong>", "<table>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderStripsScripts(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("hello\n\n<script>alert('x')</script>\n\n[link](javascript:alert(1))")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Fatalf("unsafe content survived sanitization:\n%s", out)
	}
}
