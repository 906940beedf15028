package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlainPrinterHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Success("Report saved at %s", "docscribe/outputs/local/report.md")
	p.Error("Document %s not found!", "missing")

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain printer emitted ANSI escapes: %q", out)
	}
	if !strings.Contains(out, "Report saved at docscribe/outputs/local/report.md\n") {
		t.Errorf("missing success line in %q", out)
	}
	if !strings.Contains(out, "Error: Document missing not found!\n") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestColorPrinterWrapsMessage(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{out: &buf, color: true}

	p.Success("done")
	if got, want := buf.String(), ansiGreen+"done"+ansiReset+"\n"; got != want {
		t.Errorf("Success() = %q, want %q", got, want)
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Table([]string{"Name", "Type"}, [][]string{{"local", "local"}, {"archive", "s3"}})

	out := buf.String()
	for _, want := range []string{"NAME", "TYPE", "archive", "s3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}
