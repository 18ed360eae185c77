package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soilextract/soilextract/internal/prompts"
	"github.com/soilextract/soilextract/internal/prompts/soilreport"
	"github.com/soilextract/soilextract/internal/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema replies are validated against",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stdout.Write(append(report.Schema(), '\n'))
		return err
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the rendered extraction prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, logger, err := loadConfig()
		if err != nil {
			return err
		}
		resolver := prompts.NewResolver(logger)
		soilreport.RegisterPrompts(resolver)
		if f := mgr.Get().PromptFile; f != "" {
			resolver.SetOverride(soilreport.PromptKey, f)
		}
		text, err := soilreport.Prompt(resolver)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(promptCmd)
}
