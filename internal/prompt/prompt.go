// Package prompt reads interactive answers from a line-oriented input.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"docscribe/internal/model"
)

// Prompter collects user input. Implementations must be safe to call
// repeatedly for the lifetime of one command.
type Prompter interface {
	// Ask prompts for a value. When def is non-empty it is shown and
	// returned for an empty answer; otherwise an answer is required.
	Ask(label, def string) (string, error)

	// AskDefault prompts for a value and returns def for an empty answer,
	// even when def is itself empty.
	AskDefault(label, def string) (string, error)

	// Choose prompts until the answer is one of choices.
	Choose(label string, choices []string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(label string, def bool) (bool, error)
}

// Terminal is a Prompter over a reader/writer pair, usually stdin/stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal prompter.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: no more input", model.ErrAborted)
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Ask implements Prompter.
func (t *Terminal) Ask(label, def string) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(t.out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(t.out, "%s: ", label)
		}
		answer, err := t.readLine()
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		if def != "" {
			return def, nil
		}
		fmt.Fprintln(t.out, "Error: the value cannot be empty")
	}
}

// AskDefault implements Prompter.
func (t *Terminal) AskDefault(label, def string) (string, error) {
	fmt.Fprintf(t.out, "%s [%s]: ", label, def)
	answer, err := t.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choose implements Prompter.
func (t *Terminal) Choose(label string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("%w: nothing to choose from for %q", model.ErrNotFound, label)
	}
	for {
		fmt.Fprintf(t.out, "%s (%s): ", label, strings.Join(choices, ", "))
		answer, err := t.readLine()
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if answer == c {
				return c, nil
			}
		}
		fmt.Fprintf(t.out, "Error: %q is not one of %s\n", answer, strings.Join(choices, ", "))
	}
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(t.out, "%s [%s]: ", label, hint)
		answer, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		// Ask again if input is invalid
	}
}
