// Package cmd assembles the brainadm command tree.
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Missonix/SSAI-brain/internal/brainadm/cmd/lifestory"
	"github.com/Missonix/SSAI-brain/internal/brainadm/cmd/migrate"
	"github.com/Missonix/SSAI-brain/internal/brainadm/cmd/role"
)

// NewDefaultBrainAdmCommand creates the `brainadm` command with default arguments.
func NewDefaultBrainAdmCommand() *cobra.Command {
	return NewBrainAdmCommand(os.Stdin, os.Stdout, os.Stderr)
}

func NewBrainAdmCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	var cfgFile string

	cmds := &cobra.Command{
		Use:   "brainadm",
		Short: "brainadm administers a braind character server",
		Long: `brainadm is the offline admin CLI for the braind character
server: schema migration, role seeding and life-story authoring.

Commands that write the sqlite database expect the daemon to be
stopped.`,
		Run: runHelp,
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	cmds.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the braind YAML config file.")

	cmds.AddCommand(migrate.NewCmdMigrate(&cfgFile))
	cmds.AddCommand(role.NewCmdRole(&cfgFile))
	cmds.AddCommand(lifestory.NewCmdLifeStory(&cfgFile))

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
