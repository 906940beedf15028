package prompt

import (
	"errors"
	"io"
	"strings"
	"testing"

	"docscribe/internal/model"
)

func TestAsk(t *testing.T) {
	p := NewTerminal(strings.NewReader("\nsample\n\n"), io.Discard)

	// Empty answer without default is rejected, the next line is taken.
	got, err := p.Ask("Enter the name of the exporter", "")
	if err != nil {
		t.Fatalf("Ask() returned error: %v", err)
	}
	if got != "sample" {
		t.Errorf("Ask() = %q, want %q", got, "sample")
	}

	got, err = p.Ask("Prefix", "reports")
	if err != nil {
		t.Fatalf("Ask() with default returned error: %v", err)
	}
	if got != "reports" {
		t.Errorf("Ask() with empty answer = %q, want default %q", got, "reports")
	}
}

func TestAskDefault(t *testing.T) {
	var out strings.Builder
	p := NewTerminal(strings.NewReader("\n\nJune\n"), &out)

	got, err := p.AskDefault("Please enter the value for note", "")
	if err != nil {
		t.Fatalf("AskDefault() with empty default returned error: %v", err)
	}
	if got != "" {
		t.Errorf("AskDefault() = %q, want empty", got)
	}
	if got, _ := p.AskDefault("Month", "May"); got != "May" {
		t.Errorf("AskDefault() with empty answer = %q, want May", got)
	}
	if got, _ := p.AskDefault("Month", "May"); got != "June" {
		t.Errorf("AskDefault() = %q, want June", got)
	}
	if !strings.HasPrefix(out.String(), "Please enter the value for note []: ") {
		t.Errorf("prompt output = %q", out.String())
	}
}

func TestChoose(t *testing.T) {
	p := NewTerminal(strings.NewReader("ftp\ns3\n"), io.Discard)

	got, err := p.Choose("Enter the type of exporter", []string{"local", "s3"})
	if err != nil {
		t.Fatalf("Choose() returned error: %v", err)
	}
	if got != "s3" {
		t.Errorf("Choose() = %q, want s3", got)
	}
}

func TestConfirm(t *testing.T) {
	p := NewTerminal(strings.NewReader("maybe\ny\n\nno\n"), io.Discard)

	cases := []struct {
		def  bool
		want bool
	}{
		{def: false, want: true}, // "maybe" is re-asked, then "y"
		{def: true, want: true},  // empty answer takes the default
		{def: true, want: false}, // explicit "no"
	}
	for i, tc := range cases {
		got, err := p.Confirm("Continue?", tc.def)
		if err != nil {
			t.Fatalf("case %d: Confirm() returned error: %v", i, err)
		}
		if got != tc.want {
			t.Errorf("case %d: Confirm() = %v, want %v", i, got, tc.want)
		}
	}
}

func TestEOFAborts(t *testing.T) {
	p := NewTerminal(strings.NewReader(""), io.Discard)
	if _, err := p.Ask("Name", ""); !errors.Is(err, model.ErrAborted) {
		t.Errorf("Ask() at EOF error = %v, want ErrAborted", err)
	}
}
