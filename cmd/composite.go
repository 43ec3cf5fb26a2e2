package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/tryon/internal/config"
	"github.com/lehigh-university-libraries/tryon/internal/images"
	"github.com/lehigh-university-libraries/tryon/internal/models"
	"github.com/lehigh-university-libraries/tryon/internal/tryon"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

func newCompositeCmd() *cobra.Command {
	var (
		person  string
		clothes string
		output  string
		dbPath  string
	)

	cmd := &cobra.Command{
		Use:   "composite",
		Short: "Dress a person image in a clothing image",
		Long: `Composites the clothing image onto the person image and writes the result.

Either image may be a local file or an http(s) URL. The result is also
added to the history shown in the web interface.`,
		Example: `  tryon composite --person me.jpg --clothes shirt.png --output result.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if person == "" || clothes == "" {
				return fmt.Errorf("--person and --clothes are required")
			}

			env := config.Load()
			if cmd.Flags().Changed("db") {
				env.DBPath = dbPath
			}

			service, err := tryon.NewServiceFromEnv(env)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			fetcher := images.NewFetcher()

			personImg, err := loadImage(ctx, fetcher, person)
			if err != nil {
				return fmt.Errorf("person image: %w", err)
			}
			clothesImg, err := loadImage(ctx, fetcher, clothes)
			if err != nil {
				return fmt.Errorf("clothing image: %w", err)
			}

			start := time.Now()
			result, err := service.Composite(ctx, personImg, clothesImg)
			if err != nil {
				return err
			}
			slog.Debug("Composite finished", "duration", time.Since(start))

			if err := writeImage(output, result); err != nil {
				return err
			}

			hist, closeDB, err := openHistory(ctx, env.DBPath)
			if err != nil {
				slog.Warn("History unavailable, result not recorded", "err", err)
			} else {
				defer closeDB()
				entry := models.HistoryEntry{
					ID:         ulid.Make().String(),
					ImageURL:   string(result),
					PersonURL:  string(personImg),
					ClothesURL: string(clothesImg),
					Timestamp:  time.Now().UnixMilli(),
				}
				hist.Add(ctx, entry)
				printDone("Recorded history entry %s", entry.ID)
			}

			printDone("Result written to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&person, "person", "", "Person image file or URL")
	cmd.Flags().StringVar(&clothes, "clothes", "", "Clothing image file or URL")
	cmd.Flags().StringVarP(&output, "output", "o", "result.png", "Output image file")
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDBPath, "SQLite file holding the result history (overrides TRYON_DB)")

	return cmd
}
