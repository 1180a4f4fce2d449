// ABOUTME: Root command and global flags for the docchat CLI
// ABOUTME: Global flags control log verbosity, output format and the config file
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
██████╗  ██████╗  ██████╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔══██╗██╔═══██╗██╔════╝██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██║  ██║██║   ██║██║     ██║     ███████║███████║   ██║
██║  ██║██║   ██║██║     ██║     ██╔══██║██╔══██║   ██║
██████╔╝╚██████╔╝╚██████╗╚██████╗██║  ██║██║  ██║   ██║
╚═════╝  ╚═════╝  ╚═════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documents",
		Long: banner + `
Chat with your documents.

docchat extracts text from PDFs, text files or stored syllabus chapters,
splits it into overlapping chunks, embeds them, and answers questions
grounded on the most similar passages. Each chat session keeps its own
index and conversation history in memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "text", "json":
				return nil
			default:
				return fmt.Errorf("--format must be auto, text or json, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $DOCCHAT_CONFIG)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewChatCmd(),
		NewAskCmd(),
		NewChunkCmd(),
		NewRecordsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
