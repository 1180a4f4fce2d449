// ABOUTME: One-shot ask command: index the given documents and answer a single question
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/docchat/internal/models"
)

var (
	askFiles   []string
	askText    string
	askRecord  string
	askChapter string
	askToken   string
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer one question about documents",
		Long: `Index documents and answer a single question about them.

Examples:
  docchat ask "What is the refund policy?" --file handbook.pdf
  docchat ask "What is refraction?" --record CBSE/10/Science --chapter Light
  docchat ask --format json "Summarize chapter 2" -f book.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringSliceVarP(&askFiles, "file", "f", nil, "Document to index (repeatable)")
	cmd.Flags().StringVar(&askText, "text", "", "Raw text to index")
	cmd.Flags().StringVar(&askRecord, "record", "", "Stored record to index, as board/class/subject")
	cmd.Flags().StringVar(&askChapter, "chapter", "", "Chapter of --record to index (default: all chapters)")
	cmd.Flags().StringVar(&askToken, "token", "", "Access token, when DOCCHAT_ACCESS_TOKEN is set")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	src := corpusSource{files: askFiles, text: askText, record: askRecord, chapter: askChapter}
	if src.empty() {
		return fmt.Errorf("%w: nothing to index, pass --file, --text or --record", models.ErrInvalidInput)
	}

	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := a.authorize(askToken); err != nil {
		return err
	}

	session, err := a.newSession(cliSessionID)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	text, err := a.loadCorpus(ctx, src)
	if err != nil {
		return err
	}
	if _, err := session.Process(ctx, text); err != nil {
		if errors.Is(err, models.ErrEmptyCorpus) {
			return fmt.Errorf("nothing to index: the documents contain no text")
		}
		return err
	}

	turn, err := session.Ask(ctx, args[0])
	if err != nil {
		return err
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), turn)
	}
	fmt.Fprintln(cmd.OutOrStdout(), turn.Answer)
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
		writeSources(cmd.OutOrStdout(), turn.RetrievedChunks)
	}
	return nil
}
