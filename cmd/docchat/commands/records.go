// ABOUTME: Records command manages the local syllabus record store
// ABOUTME: Import YAML/JSON record files, list what is stored, export it back
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/docchat/internal/storage/sqlite"
)

// NewRecordsCmd creates the records command and its subcommands
func NewRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage stored syllabus records",
		Long: `Manage the local record store.

A record groups chapter contents by board, class and subject. Stored
chapters can be indexed with chat --record or ask --record.

Examples:
  docchat records import science.yaml
  docchat records list
  docchat records export backup.json`,
	}

	cmd.AddCommand(newRecordsImportCmd(), newRecordsListCmd(), newRecordsExportCmd())
	return cmd
}

func newRecordsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import records from YAML or JSON files",
		Long: `Import records from YAML or JSON files.

A file holds either a list of records or an export envelope with a
"records" key. A record already stored under the same board/class/subject
has its chapters replaced.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			db, err := a.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			total := 0
			for _, path := range args {
				records, err := sqlite.LoadRecordsFile(path)
				if err != nil {
					return err
				}
				n, err := db.Records().ImportRecords(cmd.Context(), records)
				if err != nil {
					return fmt.Errorf("importing %s: %w", path, err)
				}
				a.logger.Debug("imported records", "file", path, "count", n)
				total += n
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s) into %s\n", total, db.Path())
			}
			return nil
		},
	}
}

func newRecordsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored records",
		Long:  `List stored records with their chapter names.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			db, err := a.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			records, err := db.Records().ListRecords(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				if records == nil {
					records = []sqlite.RecordSummary{}
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "No records found")
				}
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "RECORD\tCHAPTERS\tUPDATED\n")
			fmt.Fprintf(w, "------\t--------\t-------\n")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Key(), truncate(strings.Join(r.Chapters, ", "), 60), formatTime(r.Updated))
			}
			_ = w.Flush()

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d record(s)\n", len(records))
			}
			return nil
		},
	}
}

func newRecordsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export every record to a YAML or JSON file",
		Long:  `Export every record to FILE. A .json extension writes JSON, anything else YAML.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			db, err := a.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.Records().ExportToFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported records to %s\n", args[0])
			}
			return nil
		},
	}
}
