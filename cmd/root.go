package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tryon",
		Short: "Virtual try-on with Gemini image generation",
		Long: `Tryon composites a clothing image onto a portrait using a Gemini image model.

It serves a step-by-step web interface and exposes the same generation
operations on the command line, keeping a short history of recent results.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGarmentCmd())
	cmd.AddCommand(newCompositeCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newPresetsCmd())

	return cmd
}
