package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword prompts on stderr and reads a password without echo when stdin
// is a terminal. Piped input is read up to the first newline.
func readPassword(ctx *commandContext, prompt string) (string, error) {
	if f, ok := ctx.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if err := writef(ctx.Stderr, "%s", prompt); err != nil {
			return "", err
		}
		b, err := term.ReadPassword(int(f.Fd()))
		_ = writeln(ctx.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	if ctx.Stdin == nil {
		return "", usagef("-password is required when stdin is not available")
	}
	line, err := bufio.NewReader(ctx.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
