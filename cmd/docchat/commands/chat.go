// ABOUTME: Interactive chat command: index documents, then answer questions in a loop
// ABOUTME: Slash commands reset the session, show history or re-process documents
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/models"
)

var (
	chatText    string
	chatRecord  string
	chatChapter string
	chatToken   string
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [files...]",
		Short: "Chat with documents interactively",
		Long: `Index documents and chat with them interactively.

Files may be PDFs, .txt or .md. A stored record chapter can be indexed
with --record board/class/subject and --chapter. Questions are answered
from the most similar passages, with the conversation so far as context.

Commands inside the chat:
  /process FILE...   re-index (clears the history)
  /history           show the conversation so far
  /reset             drop the index and history
  /quit              leave

Examples:
  docchat chat handbook.pdf notes.md
  docchat chat --record CBSE/10/Science --chapter Light`,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatText, "text", "", "Raw text to index")
	cmd.Flags().StringVar(&chatRecord, "record", "", "Stored record to index, as board/class/subject")
	cmd.Flags().StringVar(&chatChapter, "chapter", "", "Chapter of --record to index (default: all chapters)")
	cmd.Flags().StringVar(&chatToken, "token", "", "Access token, when DOCCHAT_ACCESS_TOKEN is set")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := a.authorize(chatToken); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := a.newSession(cliSessionID)
	if err != nil {
		return err
	}

	src := corpusSource{files: args, text: chatText, record: chatRecord, chapter: chatChapter}
	if !src.empty() {
		if err := processCorpus(ctx, cmd.OutOrStdout(), a, session, src); err != nil {
			return err
		}
	} else if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents yet: use /process FILE... to index some.")
	}

	reprocess := func(ctx context.Context, files []string) error {
		return processCorpus(ctx, cmd.OutOrStdout(), a, session, corpusSource{files: files})
	}
	return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, reprocess)
}

func processCorpus(ctx context.Context, out io.Writer, a *app, session *core.Session, src corpusSource) error {
	text, err := a.loadCorpus(ctx, src)
	if err != nil {
		return err
	}
	stats, err := session.Process(ctx, text)
	if err != nil {
		if errors.Is(err, models.ErrEmptyCorpus) {
			return fmt.Errorf("nothing to index: the documents contain no text")
		}
		return err
	}
	if !quiet {
		fmt.Fprintf(out, "Indexed %d chunk(s) from %d characters in %s\n",
			stats.Chunks, stats.Characters, stats.Duration.Round(time.Millisecond))
	}
	return nil
}

// readLines feeds lines from in to the returned channel until EOF or ctx is done.
// The error channel receives the scanner error, if any, once lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// chatLoop reads questions line by line until EOF, /quit or ctx is done
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, session *core.Session, reprocess func(context.Context, []string) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, errc := readLines(ctx, in)

	for {
		if !quiet {
			fmt.Fprint(out, "> ")
		}

		var raw string
		select {
		case <-ctx.Done():
			if !quiet {
				fmt.Fprintln(out)
			}
			return nil
		case l, ok := <-lines:
			if !ok {
				if !quiet {
					fmt.Fprintln(out)
				}
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			raw = l
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			fields := strings.Fields(line)
			switch fields[0] {
			case "/quit", "/exit":
				return nil
			case "/reset":
				session.Reset()
				fmt.Fprintln(out, "Session reset.")
			case "/history":
				printHistory(out, session.History())
			case "/process":
				if len(fields) < 2 {
					fmt.Fprintln(out, "Usage: /process FILE...")
					continue
				}
				if err := reprocess(ctx, fields[1:]); err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
			case "/help":
				fmt.Fprintln(out, "Commands: /process FILE..., /history, /reset, /quit")
			default:
				fmt.Fprintf(out, "Unknown command %s (try /help)\n", fields[0])
			}
			continue
		}

		turn, err := session.Ask(ctx, line)
		if err != nil {
			if errors.Is(err, models.ErrNoCorpus) {
				fmt.Fprintln(out, "No documents indexed yet: use /process FILE... first.")
				continue
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		fmt.Fprintln(out, turn.Answer)
		if verbose {
			writeSources(out, turn.RetrievedChunks)
		}
	}
}

func printHistory(out io.Writer, history []models.Turn) {
	if len(history) == 0 {
		fmt.Fprintln(out, "No questions asked yet.")
		return
	}
	for i, turn := range history {
		fmt.Fprintf(out, "%d. [%s] Q: %s\n", i+1, formatTime(turn.Timestamp), turn.Question)
		fmt.Fprintf(out, "   A: %s\n", truncate(oneLine(turn.Answer), 200))
	}
}
