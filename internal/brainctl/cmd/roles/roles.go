package roles

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Missonix/SSAI-brain/internal/brainctl/cmd/chat"
)

// Options holds the roles command flags.
type Options struct {
	Server string
}

// NewCmdRoles creates the `brainctl roles` command.
func NewCmdRoles() *cobra.Command {
	o := &Options{
		Server: "http://127.0.0.1:8010",
	}

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List configured characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd)
		},
	}
	cmd.Flags().StringVar(&o.Server, "server", o.Server, "braind HTTP server address")
	return cmd
}

// Run lists the roles known to the server.
func (o *Options) Run(cmd *cobra.Command) error {
	if !strings.HasPrefix(o.Server, "http://") && !strings.HasPrefix(o.Server, "https://") {
		o.Server = "http://" + o.Server
	}

	client := chat.NewBrainClient(o.Server, "", "", nil)
	list, err := client.Roles(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no roles configured")
		return nil
	}

	bold := color.New(color.Bold)
	for _, r := range list {
		bold.Fprintf(cmd.OutOrStdout(), "%s", r.RoleID)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (age %d)\n", r.RoleName, r.Age)
	}
	return nil
}
