// ABOUTME: Chunk command previews how documents are split, without calling any provider
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/models"
)

var (
	chunkText      string
	chunkSize      int
	chunkOverlap   int
	chunkSeparator string
)

// NewChunkCmd creates the chunk command
func NewChunkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunk [files...]",
		Short: "Preview how documents are chunked",
		Long: `Extract and chunk documents exactly as chat and ask would, and print
the chunks. No API key is needed.

Size and overlap default to the configured values.

Examples:
  docchat chunk handbook.pdf
  docchat chunk --size 500 --overlap 50 notes.md
  docchat chunk --format json --text "some text"`,
		RunE: runChunk,
	}

	cmd.Flags().StringVar(&chunkText, "text", "", "Raw text to chunk")
	cmd.Flags().IntVar(&chunkSize, "size", 0, "Chunk size in characters (default from config)")
	cmd.Flags().IntVar(&chunkOverlap, "overlap", -1, "Overlap in characters (default from config)")
	cmd.Flags().StringVar(&chunkSeparator, "separator", "", "Preferred split string (default from config)")

	return cmd
}

func runChunk(cmd *cobra.Command, args []string) error {
	src := corpusSource{files: args, text: chunkText}
	if src.empty() {
		return fmt.Errorf("%w: pass files or --text", models.ErrInvalidInput)
	}

	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	size, overlap, sep := a.cfg.ChunkSize, a.cfg.ChunkOverlap, a.cfg.Separator
	if cmd.Flags().Changed("size") {
		if err := validatePositiveInt(chunkSize, "--size"); err != nil {
			return err
		}
		size = chunkSize
	}
	if cmd.Flags().Changed("overlap") {
		overlap = chunkOverlap
	}
	if cmd.Flags().Changed("separator") {
		sep = chunkSeparator
	}

	chunker, err := core.NewChunker(size, overlap, core.WithSeparator(sep))
	if err != nil {
		return err
	}

	text, err := a.loadCorpus(cmd.Context(), src)
	if err != nil {
		return err
	}

	chunks := make([]models.Chunk, 0)
	for c := range chunker.Chunks(text) {
		chunks = append(chunks, c)
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), chunks)
	}

	if len(chunks) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No text to chunk")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEQ\tSTART\tLEN\tTEXT\n")
	fmt.Fprintf(w, "---\t-----\t---\t----\n")
	for _, c := range chunks {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", c.Seq, c.Start, c.Len(), truncate(oneLine(c.Text), 60))
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d chunk(s), size %d, overlap %d\n", len(chunks), size, overlap)
	}
	return nil
}
