// Package cmd assembles the brainctl command tree.
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Missonix/SSAI-brain/internal/brainctl/cmd/chat"
	"github.com/Missonix/SSAI-brain/internal/brainctl/cmd/roles"
)

// NewDefaultBrainCtlCommand creates the `brainctl` command with default arguments.
func NewDefaultBrainCtlCommand() *cobra.Command {
	return NewBrainCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

func NewBrainCtlCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	cmds := &cobra.Command{
		Use:   "brainctl",
		Short: "brainctl talks to a braind character server",
		Long: `brainctl is the client CLI for the braind character server.

It opens interactive chat sessions with configured characters and
inspects the role catalogue.`,
		Run: runHelp,
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	cmds.AddCommand(chat.NewCmdChat())
	cmds.AddCommand(roles.NewCmdRoles())

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
