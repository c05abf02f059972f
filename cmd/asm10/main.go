// Command asm10 is the two-pass assembler's command-line driver: it
// iterates file arguments, hands each file's source text to the assembler
// session (whose preprocessor cleans it line by line), and surfaces the
// assembler's errors to the user, per spec section 1's description of the
// driver's (out-of-core) obligations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lookbusy1344/asm10/internal/config"
	"github.com/lookbusy1344/asm10/internal/diag"
	"github.com/lookbusy1344/asm10/internal/firstpass"
	"github.com/lookbusy1344/asm10/internal/fmtsrc"
	"github.com/lookbusy1344/asm10/internal/inspect"
	"github.com/lookbusy1344/asm10/internal/session"
	"github.com/lookbusy1344/asm10/internal/symtab"
	"github.com/lookbusy1344/asm10/internal/xref"
)

var (
	outputDir string
	verbose   bool
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "asm10",
		Short: "A two-pass assembler for the ten-bit educational instruction set",
	}

	root.PersistentFlags().StringVarP(&outputDir, "output", "o", ".", "directory for .am/.ob/.ent/.ext output")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a per-file summary line (IC/DC) on success")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return applyConfig(cmd)
	}

	root.AddCommand(newBuildCommand())
	root.AddCommand(newXrefCommand())
	root.AddCommand(newFmtCommand())
	root.AddCommand(newInspectCommand())

	return root
}

// applyConfig loads the user's TOML config and overrides the assembler's
// resource bounds and default output directory with it, so the config
// file actually drives the pipeline instead of sitting unread. An
// explicit -o/--output flag still wins over the config's output
// directory.
func applyConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	firstpass.MaxMemory = cfg.Assembler.MaxMemoryWords
	firstpass.MaxLineLen = cfg.Assembler.MaxLineLength
	firstpass.ImmMin = cfg.Assembler.ImmediateMin
	firstpass.ImmMax = cfg.Assembler.ImmediateMax
	symtab.MaxNameLength = cfg.Assembler.MaxLabelLength

	if !cmd.Flags().Changed("output") {
		outputDir = cfg.Output.Directory
	}
	return nil
}

// printWarnings surfaces accumulated warnings without affecting exit
// status -- a warning never fails a build.
func printWarnings(warnings []*diag.Error) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
}

// newBuildCommand implements the spec's driver: assemble each "<basename>.as",
// writing outputs for files that succeed, reporting errors and moving on
// to the next file otherwise (spec section 5).
func newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build <basename>...",
		Short: "Assemble one or more source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failures := 0
			for _, basename := range args {
				res, err := session.AssembleFile(".", basename)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					failures++
					continue
				}
				printWarnings(res.Warnings)
				if err := session.WriteOutputs(outputDir, res); err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					for _, d := range res.Diags {
						fmt.Fprintf(os.Stderr, "  %v\n", d)
					}
					failures++
					continue
				}
				if verbose {
					fmt.Printf("%s: ok (IC=%d DC=%d)\n", basename, res.First.IC, res.First.DC)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d file(s) failed", failures)
			}
			return nil
		},
	}
}

func newXrefCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "xref <basename>",
		Short: "Print a symbol cross-reference report for an assembled file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := session.AssembleFile(".", args[0])
			if err != nil {
				return err
			}
			if !res.Succeeded {
				for _, d := range res.Diags {
					fmt.Fprintf(os.Stderr, "%v\n", d)
				}
				return fmt.Errorf("%s: assembly failed, cannot build cross-reference", args[0])
			}
			printWarnings(res.Warnings)
			fmt.Print(xref.Render(xref.Build(res.First)))
			return nil
		},
	}
}

func newFmtCommand() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <basename>",
		Short: "Normalize whitespace and comments in a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0] + ".as"
			content, err := os.ReadFile(path) // #nosec G304 -- user-provided basename
			if err != nil {
				return err
			}
			formatted := fmtsrc.Format(string(content))
			if write {
				return os.WriteFile(path, []byte(formatted), 0644)
			}
			fmt.Print(formatted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place instead of printing it")
	return cmd
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <basename>",
		Short: "Browse an assembled file's symbol table and code image in a TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := session.AssembleFile(".", args[0])
			if err != nil {
				return err
			}
			if !res.Succeeded {
				for _, d := range res.Diags {
					fmt.Fprintf(os.Stderr, "%v\n", d)
				}
				return fmt.Errorf("%s: assembly failed, nothing to inspect", args[0])
			}
			printWarnings(res.Warnings)
			browser := inspect.New(args[0], res.First, res.Second)
			return browser.Run()
		},
	}
}
