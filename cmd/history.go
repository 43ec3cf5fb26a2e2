package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/lehigh-university-libraries/tryon/internal/config"
	"github.com/lehigh-university-libraries/tryon/internal/history"
	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and export recent try-on results",
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath, "SQLite file holding the result history (overrides TRYON_DB)")

	resolveDB := func(cmd *cobra.Command) string {
		if cmd.Flags().Changed("db") {
			return dbPath
		}
		return config.Load().DBPath
	}

	cmd.AddCommand(newHistoryListCmd(resolveDB))
	cmd.AddCommand(newHistoryShowCmd(resolveDB))
	cmd.AddCommand(newHistoryExportCmd(resolveDB))

	return cmd
}

func newHistoryListCmd(resolveDB func(*cobra.Command) string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List history entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, closeDB, err := openHistory(cmd.Context(), resolveDB(cmd))
			if err != nil {
				return err
			}
			defer closeDB()

			entries := hist.List()
			if len(entries) == 0 {
				fmt.Println(color.HiBlackString("No history yet"))
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, color.CyanString("ID")+"\t"+color.CyanString("CREATED")+"\t"+color.CyanString("SIZE"))
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", e.ID, e.CreatedAt().Format("2006-01-02 15:04:05"), len(e.ImageURL))
			}
			return tw.Flush()
		},
	}
}

func newHistoryShowCmd(resolveDB func(*cobra.Command) string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Write the result image of a history entry to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, closeDB, err := openHistory(cmd.Context(), resolveDB(cmd))
			if err != nil {
				return err
			}
			defer closeDB()

			entry, ok := hist.Get(args[0])
			if !ok {
				return fmt.Errorf("history entry %s not found", args[0])
			}

			if err := writeImage(output, imagedata.Image(entry.ImageURL)); err != nil {
				return err
			}
			printDone("Entry %s written to %s", entry.ID, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "result.png", "Output image file")

	return cmd
}

func newHistoryExportCmd(resolveDB func(*cobra.Command) string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history to a .parquet or .jsonl file",
		Example: `  tryon history export --output history.parquet
  tryon history export --output history.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, closeDB, err := openHistory(cmd.Context(), resolveDB(cmd))
			if err != nil {
				return err
			}
			defer closeDB()

			entries := hist.List()
			if err := history.ExportFile(output, entries); err != nil {
				return err
			}
			printDone("Exported %d entries to %s", len(entries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "history.parquet", "Output file (.parquet or .jsonl)")

	return cmd
}
