// confirm.go: census and confirmation before anything is moved
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/lavelinevgeny/mediasort/internal/media"
)

// checkTargetDirectory creates target if it is missing.
func checkTargetDirectory(target string) error {
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create target directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read target directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target %s is not a directory", target)
	}
	return nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm prints the census and asks whether to go on. assumeYes skips the
// question; without a terminal to ask on, the run is cancelled.
func confirm(in io.Reader, out io.Writer, c media.Census, assumeYes, interactive bool) bool {
	fmt.Fprintf(out, "Images:                     %d\n", c.Images)
	fmt.Fprintf(out, "Videos:                     %d\n", c.Videos)
	fmt.Fprintf(out, "Sidecar metadata (xml/thm): %d\n", c.Sidecars)
	fmt.Fprintf(out, "Other files (left alone):   %d\n", c.Other)

	if c.Total() == 0 {
		fmt.Fprintln(out, "Nothing to organize.")
		return false
	}
	if assumeYes {
		return true
	}
	if !interactive {
		fmt.Fprintln(out, "Standard input is not a terminal; rerun with --yes to proceed.")
		return false
	}

	fmt.Fprintf(out, "Move %d files? (y/N): ", c.Total())
	scanner := bufio.NewScanner(in)
	scanner.Scan()
	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	if response != "y" && response != "yes" {
		fmt.Fprintln(out, "Operation cancelled.")
		return false
	}
	return true
}
