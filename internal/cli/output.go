package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/scic/internal/model"
)

const ruleWidth = 60

var errAborted = errors.New("aborted")

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHeader(cmd *cobra.Command, format string, args ...interface{}) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n"+format+"\n", args...)
	fmt.Fprintln(out, strings.Repeat("─", ruleWidth))
}

func printPageFooter(cmd *cobra.Command, number, total int) {
	if total > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d\n", number, total)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusAccepted:
		return "✅"
	case model.StatusRejected:
		return "⛔"
	default:
		return "⏳"
	}
}

// isInteractive reports whether stdin is a terminal we can prompt on
func isInteractive(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// prompt reads one trimmed line after printing label
func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// readSecret reads a password without echo on a terminal, or a plain line otherwise
func readSecret(cmd *cobra.Command, reader *bufio.Reader, label string) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), label)
		b, _ := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return string(b)
	}
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

// confirm asks before a destructive action. Without a terminal the caller
// must pass --yes.
func confirm(cmd *cobra.Command, yes bool, title string) error {
	if yes {
		return nil
	}
	if !isInteractive(cmd) {
		return fmt.Errorf("refusing to continue without confirmation, pass --yes")
	}

	ok := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).Run()
	if err != nil {
		return err
	}
	if !ok {
		return errAborted
	}
	return nil
}
