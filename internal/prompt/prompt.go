// Package prompt handles the interactive operator dialogue on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	indexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// Confirm asks a yes/no question, defaulting to no.
func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", question)

	line, err := t.readLine()
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes", nil
}

// Select prints a numbered option list and returns the raw selection line;
// validation is the caller's contract.
func (t *Terminal) Select(header string, options []string) (string, error) {
	fmt.Fprintln(t.out, headerStyle.Render(header))
	for i, option := range options {
		fmt.Fprintf(t.out, "  %s %s\n", indexStyle.Render(fmt.Sprintf("%3d)", i+1)), option)
	}
	fmt.Fprint(t.out, "Selection [1]: ")

	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return line, nil
}

// Interactive reports whether stdin is a terminal.
func (t *Terminal) Interactive() bool {
	return t.interactive
}

func New() *Terminal {
	return &Terminal{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

func NewWithStreams(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, interactive: false}
}
