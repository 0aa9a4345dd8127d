package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"rulecraft/engine/pkg/cli"
)

var flags struct {
	rule         string
	input        string
	configFile   string
	validateOnly bool
	format       cli.OutputFormat
}

var rootCmd = &cobra.Command{
	Use:   "rulectl",
	Short: "Evaluate or validate a business-rule file against a JSON input document",
	Long: `rulectl is a reference command-line wrapper around the rule engine.

It parses a single rule file (the English-like DSL embedded in YAML),
optionally validates it statically, and evaluates it against a JSON input
document, printing the outcome as text or JSON.

Examples:
  rulectl --rule credit_tier.yaml --input '{"credit_score": 750}'
  rulectl --rule credit_tier.yaml --validate-only
  rulectl --rule credit_tier.yaml --input '{"credit_score": 750}' --format json`,
	RunE: runRule,
}

func init() {
	rootCmd.Flags().StringVarP(&flags.rule, "rule", "r", "", "path to the rule YAML file (required)")
	rootCmd.Flags().StringVarP(&flags.input, "input", "i", "{}", "JSON input document (inline)")
	rootCmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "engine config YAML file (optional; built-in defaults otherwise)")
	rootCmd.Flags().BoolVar(&flags.validateOnly, "validate-only", false, "only run the static validator, don't evaluate")
	flags.format = cli.FormatText
	rootCmd.Flags().VarP(&formatValue{&flags.format}, "format", "f", "output format: text, json")
	_ = rootCmd.MarkFlagRequired("rule")
}

// formatValue adapts cli.OutputFormat to pflag.Value so --format is
// validated against the two values spec.md §6.4 allows, rather than
// silently accepting and defaulting on typos.
type formatValue struct {
	dst *cli.OutputFormat
}

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string {
	if f.dst == nil {
		return string(cli.FormatText)
	}
	return string(*f.dst)
}

func (f *formatValue) Set(s string) error {
	switch cli.OutputFormat(s) {
	case cli.FormatText, cli.FormatJSON:
		*f.dst = cli.OutputFormat(s)
		return nil
	default:
		return fmt.Errorf("invalid format %q: want \"text\" or \"json\"", s)
	}
}

func (f *formatValue) Type() string { return "string" }

// Execute runs the root command, translating any returned cli.ExitCoder
// into the matching process exit code (0/2/3/4 per spec.md §6.4), and any
// other error into exit code 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if coder, ok := err.(cli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}
