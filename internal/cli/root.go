package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lojasmm/wamcp/internal/client"
)

// app carries what every command needs once flags are parsed.
type app struct {
	server string
	asJSON bool
	client *client.Client
	in     io.Reader
	isatty func() bool
}

// NewRootCmd builds the wamcp command tree.
func NewRootCmd() *cobra.Command {
	a := &app{
		in: os.Stdin,
		isatty: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}

	root := &cobra.Command{
		Use:   "wamcp",
		Short: "Talk to a running wamcp server",
		Long: "wamcp queries and drives a WhatsApp account through a wamcp server.\n" +
			"Without a subcommand it opens an interactive menu.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.resolveServer(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.isatty() {
				return cmd.Help()
			}
			return runMenu(cmd.Context(), a.client, a.in, cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVar(&a.server, "server", "", "server base URL (env WAMCP_SERVER, default "+client.DefaultServer+")")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print raw JSON responses")

	root.AddCommand(
		a.contactsCmd(),
		a.chatsCmd(),
		a.messagesCmd(),
		a.sendCmd(),
		a.downloadCmd(),
		a.configCmd(),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// resolveServer picks the server URL: flag, then environment, then the
// config file, then the default.
func (a *app) resolveServer(cmd *cobra.Command) error {
	server := a.server
	if server == "" {
		server = os.Getenv("WAMCP_SERVER")
	}
	if server == "" {
		cfg, err := loadFileConfig()
		if err != nil {
			return err
		}
		server = cfg.Server
	}
	a.server = server
	a.client = client.New(server)
	return nil
}

// render prints v as JSON in --json mode, otherwise through the given
// human formatter.
func (a *app) render(cmd *cobra.Command, v any, human func(io.Writer)) error {
	if a.asJSON {
		return printJSON(cmd.OutOrStdout(), v)
	}
	human(cmd.OutOrStdout())
	return nil
}
