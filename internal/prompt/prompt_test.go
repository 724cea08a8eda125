package prompt

import (
	"strings"
	"testing"
)

func TestExplain(t *testing.T) {
	p := Explain("  black holes ", "watercolor", 5)
	if !strings.Contains(p, "black holes") {
		t.Fatalf("topic missing from prompt: %s", p)
	}
	if !strings.Contains(p, "exactly 5 short sections") {
		t.Fatalf("slide target missing: %s", p)
	}
	if !strings.Contains(p, "watercolor") {
		t.Fatalf("style missing: %s", p)
	}
}

func TestExplainDefaults(t *testing.T) {
	p := Explain("x", "", 0)
	if !strings.Contains(p, "doodle-style") {
		t.Fatalf("default style missing: %s", p)
	}
	if !strings.Contains(p, "exactly 1 short sections") {
		t.Fatalf("slide target floor missing: %s", p)
	}
}
