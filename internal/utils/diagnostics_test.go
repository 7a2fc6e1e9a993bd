package utils

import (
	"bytes"
	"strings"
	"testing"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level).SetOutput(&out, &errOut).SetColors(false).SetShowTime(false)
	return d, &out, &errOut
}

func TestDiagnostics_Levels(t *testing.T) {
	tests := []struct {
		level     DiagnosticLevel
		wantOut   []string
		wantErr   []string
		notOutput []string
	}{
		{
			level:     DiagnosticSilent,
			notOutput: []string{"[ERROR]", "[WARN]", "[INFO]"},
		},
		{
			level:     DiagnosticError,
			wantErr:   []string{"[ERROR] broken"},
			notOutput: []string{"[WARN]", "[INFO]"},
		},
		{
			level:     DiagnosticInfo,
			wantOut:   []string{"[INFO] hello 1", "[SUCCESS] done"},
			wantErr:   []string{"[ERROR] broken", "[WARN] careful"},
			notOutput: []string{"[VERBOSE]", "[DEBUG]"},
		},
		{
			level:   DiagnosticDebug,
			wantOut: []string{"[VERBOSE] detail", "[DEBUG] trace"},
		},
	}

	for _, tt := range tests {
		d, out, errOut := newTestDiagnostics(tt.level)
		d.Error("broken")
		d.Warn("careful")
		d.Info("hello %d", 1)
		d.Success("done")
		d.Verbose("detail")
		d.Debug("trace")

		all := out.String() + errOut.String()
		for _, s := range tt.wantOut {
			if !strings.Contains(out.String(), s) {
				t.Errorf("level %d: output missing %q in %q", tt.level, s, out.String())
			}
		}
		for _, s := range tt.wantErr {
			if !strings.Contains(errOut.String(), s) {
				t.Errorf("level %d: error output missing %q in %q", tt.level, s, errOut.String())
			}
		}
		for _, s := range tt.notOutput {
			if strings.Contains(all, s) {
				t.Errorf("level %d: unexpected %q", tt.level, s)
			}
		}
	}
}

func TestDiagnostics_IndentAndList(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Indent()
	d.Info("nested")
	d.List("item %s", "a")
	d.Unindent()
	d.Unindent()
	d.Info("top")

	want := "  [INFO] nested\n  - item a\n[INFO] top\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestDiagnostics_SummaryIsSorted(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Summary("Result", map[string]interface{}{
		"types":     3,
		"functions": 2,
		"headers":   1,
	})

	want := "\nResult\n   functions: 2\n   headers: 1\n   types: 3\n\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestDiagnostics_Phases(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Banner("generating Zlib")
	d.PhaseHeader("Parsing")
	d.PhaseItem("zlib.h")
	d.PhaseProgress("Writing zlib.sapi.h")
	d.PhaseProgress("3 functions")
	d.GenerationComplete()

	want := "sapigen: generating Zlib\nParsing:\n✓ zlib.h\n✏ Writing zlib.sapi.h\n- 3 functions\n\nsapigen: Generation complete!\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}

	quiet := NewQuietDiagnostics()
	var buf bytes.Buffer
	quiet.SetOutput(&buf, &buf)
	quiet.Banner("hidden")
	quiet.PhaseItem("hidden")
	if buf.Len() != 0 {
		t.Errorf("quiet diagnostics printed %q", buf.String())
	}
}

func TestDiagnostics_Colors(t *testing.T) {
	d, _, errOut := newTestDiagnostics(DiagnosticError)
	d.SetColors(true)
	d.Error("red")

	if !strings.Contains(errOut.String(), "\x1b[") {
		t.Errorf("expected ANSI sequence, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "red\n") {
		t.Errorf("expected message, got %q", errOut.String())
	}
	if NewVerboseDiagnostics().Level() != DiagnosticVerbose {
		t.Error("expected verbose level")
	}
}
