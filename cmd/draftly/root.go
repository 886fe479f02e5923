package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/draftly/internal/api"
	"github.com/jackzampolin/draftly/internal/config"
	"github.com/jackzampolin/draftly/internal/home"
	"github.com/jackzampolin/draftly/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "draftly",
	Short: "Contract review and drafting service",
	Long: `Draftly reviews uploaded contracts against a clause checklist and
drafts new agreements.

A review:
  - Extracts text from .txt, .docx or .pdf uploads
  - Splits the text into sections and finds candidates per clause
  - Grades each clause's required elements with an LLM
  - Scores the findings into a 0-100 risk score and band`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := api.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		api.SetOutputFormat(string(format))

		// Values already in the environment win over .env files.
		files := []string{".env"}
		if h, err := home.New(homeDir); err == nil {
			files = append(files, h.EnvPath())
		}
		if err := config.LoadDotEnv(files...); err != nil {
			slog.Warn("failed to load .env", "error", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.draftly/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "draftly home directory (default: ~/.draftly)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or text",
	)

	rootCmd.AddCommand(versionCmd)
}
