package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "legalaid-seeder/internal/common/errors"

	"golang.org/x/term"
)

// isInteractive reports whether in is a terminal.
func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirm gates a destructive operation. --yes skips the prompt; without
// it a terminal must answer y, and non-interactive input is refused.
func confirm(in io.Reader, out io.Writer, interactive, yes bool, operation, prompt string) error {
	if yes {
		return nil
	}
	if !interactive {
		return apperrors.NewConfirmationRequiredError(operation).
			WithMetadata("hint", "pass --yes to run without a terminal")
	}

	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return apperrors.NewConfirmationRequiredError(operation)
	}
}
