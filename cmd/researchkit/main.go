package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/extremevalue/research-kit/pkg/shared/errors"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "researchkit",
	Short: "Operator CLI for the strategy research pipeline",
	Long: `researchkit drives a strategy record from ingestion through
verification, code generation, walk-forward validation, persona
synthesis, and human review — the command surface over the pipeline's
Record Store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "research-kit.yaml", "path to the workspace configuration file")

	rootCmd.AddCommand(
		ingestCmd,
		verifyCmd,
		validateCmd,
		learnCmd,
		synthesizeCmd,
		listCmd,
		showCmd,
		statusCmd,
		approveCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(apperrors.ExitCode(err))
	}
}
