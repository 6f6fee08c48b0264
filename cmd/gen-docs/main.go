package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stigoleg/ghost-operator/internal/config"
)

// gen-docs writes shell completions and a roff man page for ghostop from
// the live command tree, so the docs always match the flags.

func main() {
	root := config.NewRootCommand("dev", nil)

	if err := writeCompletions(root, filepath.Join("docs", "completions")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := writeMan(root, "man"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeCompletions(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := root.Name()

	if err := root.GenBashCompletionFileV2(filepath.Join(dir, name+".bash"), true); err != nil {
		return fmt.Errorf("bash completion: %w", err)
	}
	if err := root.GenZshCompletionFile(filepath.Join(dir, "_"+name)); err != nil {
		return fmt.Errorf("zsh completion: %w", err)
	}
	if err := root.GenFishCompletionFile(filepath.Join(dir, name+".fish"), true); err != nil {
		return fmt.Errorf("fish completion: %w", err)
	}
	return nil
}

func writeMan(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	page := manPage(root)
	return os.WriteFile(filepath.Join(dir, root.Name()+".1"), []byte(page), 0o644)
}

func manPage(root *cobra.Command) string {
	name := root.Name()
	var b strings.Builder
	b.WriteString(".TH \"" + strings.ToUpper(name) + "\" \"1\" \"\" \"ghost-operator\" \"User Commands\"\n")
	b.WriteString(".SH NAME\n" + name + " \\- " + root.Short + "\n")
	b.WriteString(".SH SYNOPSIS\n.B " + name + "\n[flags]\n")
	for _, sub := range root.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		b.WriteString(".br\n.B " + name + " " + sub.Name() + "\n")
	}
	b.WriteString(".SH DESCRIPTION\n" + escape(root.Long) + "\n")

	b.WriteString(".SH OPTIONS\n")
	root.InitDefaultHelpFlag()
	root.InitDefaultVersionFlag()
	root.LocalFlags().VisitAll(func(f *pflag.Flag) {
		b.WriteString(".TP\n\\fB" + flagNames(f) + "\\fR\n" + escape(f.Usage) + "\n")
	})

	b.WriteString(".SH COMMANDS\n")
	for _, sub := range root.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		b.WriteString(".TP\n\\fB" + sub.Name() + "\\fR\n" + escape(sub.Short) + "\n")
	}

	b.WriteString(".SH EXAMPLES\n")
	b.WriteString(".TP\n\\fB" + name + "\\fR\nStart the interactive dashboard.\n")
	b.WriteString(".TP\n\\fB" + name + " -d 2h30m --headless\\fR\nRun without the dashboard for 2 hours 30 minutes.\n")
	b.WriteString(".TP\n\\fB" + name + " --sink uinput -c 17:00\\fR\nDrive a virtual input device until 5:00 PM.\n")
	b.WriteString(".TP\n\\fB" + name + " --exec =keyMin:3000\\fR\nChange a stored setting; a running instance picks it up.\n")
	b.WriteString(".SH ENVIRONMENT\nEvery flag can be set as GHOSTOP_<FLAG>, with dashes as underscores (e.g. GHOSTOP_LOG_LEVEL).\n")
	return b.String()
}

func flagNames(f *pflag.Flag) string {
	names := "\\-\\-" + f.Name
	if f.Shorthand != "" {
		names = "\\-" + f.Shorthand + ", " + names
	}
	if f.Value.Type() != "bool" {
		names += " <" + f.Value.Type() + ">"
	}
	return names
}

func escape(s string) string {
	return strings.ReplaceAll(s, "-", "\\-")
}
