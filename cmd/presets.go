package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/lehigh-university-libraries/tryon/internal/config"
	"github.com/lehigh-university-libraries/tryon/internal/presets"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "Print the preset person and clothing images",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := presets.Load(config.Load().PresetsPath)
			if err != nil {
				return err
			}

			fmt.Println(color.CyanString("Person"))
			for _, ref := range catalog.Person {
				fmt.Println("  " + ref)
			}
			fmt.Println(color.CyanString("Clothes"))
			for _, ref := range catalog.Clothes {
				fmt.Println("  " + ref)
			}
			return nil
		},
	}
}
