// Package cli builds the taskwire command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the taskwire root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "taskwire",
		Short: "Task management with live state sync",
		Long: `Taskwire is a project and task manager whose clients stay in sync
through broadcast events: every mutation is written server-side and
fanned out over websockets, and each client applies the event stream
to its local replica.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")

	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}
