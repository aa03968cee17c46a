package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var chatExample = heredoc.Doc(`
	# Interactive chat mode (TUI)
	brainctl chat --role role_001 --user 小明

	# Single message mode
	brainctl chat --role role_001 --user 小明 "今天过得怎么样?"

	# Pin an existing session
	brainctl chat --role role_001 --user 小明 --session <session-id> "我回来了"
`)

// Options holds the chat command flags.
type Options struct {
	Server  string
	RoleID  string
	User    string
	Session string
}

// NewCmdChat creates the `brainctl chat` command.
func NewCmdChat() *cobra.Command {
	o := &Options{
		Server: "http://127.0.0.1:8010",
	}

	cmd := &cobra.Command{
		Use:                   "chat [message]",
		DisableFlagsInUseLine: true,
		Short:                 "Chat with a character",
		Long: heredoc.Doc(`
			Start a conversation with a braind character.

			When invoked without arguments, open an interactive chat interface.
			When invoked with a message argument, send it and print the reply.
		`),
		Example: chatExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), args)
		},
	}

	cmd.Flags().StringVar(&o.Server, "server", o.Server, "braind HTTP server address")
	cmd.Flags().StringVar(&o.RoleID, "role", o.RoleID, "Role id to talk to")
	cmd.Flags().StringVar(&o.User, "user", o.User, "User name for session isolation")
	cmd.Flags().StringVar(&o.Session, "session", o.Session, "Existing session id to continue")

	return cmd
}

// Run executes the chat command.
func (o *Options) Run(ctx context.Context, args []string) error {
	if o.RoleID == "" {
		return fmt.Errorf("--role is required")
	}
	if o.User == "" {
		return fmt.Errorf("--user is required")
	}
	if !strings.HasPrefix(o.Server, "http://") && !strings.HasPrefix(o.Server, "https://") {
		o.Server = "http://" + o.Server
	}

	client := NewBrainClient(o.Server, o.RoleID, o.User, nil)
	client.SessionID = o.Session

	roleName := o.RoleID
	if roles, err := client.Roles(ctx); err == nil {
		for _, r := range roles {
			if r.RoleID == o.RoleID {
				roleName = r.RoleName
				break
			}
		}
	}

	if len(args) > 0 {
		reply, err := client.Send(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(reply.Response)
		if reply.SystemMessage != "" {
			fmt.Println(reply.SystemMessage)
		}
		return nil
	}

	return RunTUI(client, roleName)
}
