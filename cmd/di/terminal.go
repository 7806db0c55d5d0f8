package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"drive-indexer/internal/driveidx"
)

// readPassphrase prompts on stderr and reads a passphrase without echo.
// When stdin is not a terminal one line is read from it instead.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// progressPrinter rewrites a single status line on stderr while a scan runs.
// It prints nothing when stderr is not a terminal.
func progressPrinter() driveidx.ProgressFunc {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return func(p driveidx.Progress) {
		if p.Done {
			fmt.Fprintf(os.Stderr, "\r\033[K")
			return
		}
		fmt.Fprintf(os.Stderr, "\r\033[K%s files indexed", humanize.Comma(p.FilesScanned))
	}
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func lastScanned(d *driveidx.Drive) string {
	if !d.LastScanned.Valid {
		return "never"
	}
	return d.LastScanned.Time.Local().Format("2006-01-02 15:04")
}
