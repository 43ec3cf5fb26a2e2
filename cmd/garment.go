package cmd

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/tryon/internal/config"
	"github.com/lehigh-university-libraries/tryon/internal/tryon"
	"github.com/spf13/cobra"
)

func newGarmentCmd() *cobra.Command {
	var (
		prompt string
		output string
	)

	cmd := &cobra.Command{
		Use:   "garment",
		Short: "Generate a clothing image from a text description",
		Example: `  tryon garment --prompt "a red linen shirt with rolled sleeves" --output shirt.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("--prompt is required")
			}

			service, err := tryon.NewServiceFromEnv(config.Load())
			if err != nil {
				return err
			}

			img, err := service.GenerateGarment(cmd.Context(), prompt)
			if err != nil {
				return err
			}

			if err := writeImage(output, img); err != nil {
				return err
			}
			printDone("Garment written to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Description of the garment")
	cmd.Flags().StringVarP(&output, "output", "o", "garment.png", "Output image file")

	return cmd
}
