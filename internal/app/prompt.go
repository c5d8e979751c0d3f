package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readSecret prompts on the terminal with echo disabled. When stdin is not
// a terminal the first line of stdin is used, so scripts can pipe the
// password in.
func (a *App) readSecret(prompt string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	line, err := a.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", usagef("empty password on stdin")
	}
	return line, nil
}

// readLine reads one line from stdin, sharing a buffered reader across
// calls.
func (a *App) readLine() (string, error) {
	reader, ok := a.stdin.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(a.stdin)
		a.stdin = reader
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
