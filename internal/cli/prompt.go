package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdinReader is shared by all prompts so buffered input is not lost between them.
var stdinReader = bufio.NewReader(os.Stdin)

// promptOut receives prompt labels.
var promptOut io.Writer = os.Stderr

// promptLine reads one trimmed line. def is returned for empty input.
func promptLine(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(promptOut, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(promptOut, "%s: ", label)
	}

	input, err := stdinReader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// promptPassword reads a secret without echo when stdin is a terminal.
func promptPassword(label string) (string, error) {
	fmt.Fprint(promptOut, label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(promptOut)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Piped input, e.g. scripts and tests
	input, err := stdinReader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimRight(input, "\r\n"), nil
}

// promptConfirm asks a yes/no question, defaulting to no.
func promptConfirm(label string) (bool, error) {
	answer, err := promptLine(label+" [y/N]", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
