package role

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Missonix/SSAI-brain/internal/brainadm/cmd/util"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
)

// initOptions holds the `role init` flags.
type initOptions struct {
	RoleID   string
	RoleName string
	Age      int
}

// NewCmdRole creates the `brainadm role` command group.
func NewCmdRole(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage character roles",
	}
	cmd.AddCommand(newCmdInit(cfgFile))
	cmd.AddCommand(newCmdList(cfgFile))
	return cmd
}

func newCmdInit(cfgFile *string) *cobra.Command {
	o := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Seed a role_details row for a character",
		Long: `Seed the durable row for a character. The persona blob
<persona-root>/<role_id>_L0_prompt.txt must exist before a role can be
initialized; a role without a persona is unusable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.RoleID == "" || o.RoleName == "" {
				return fmt.Errorf("--role and --name are required")
			}

			opts, err := util.LoadOptions(*cfgFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			personas := persona.New(opts.PlotOptions.PersonaRoot, opts.PlotOptions.SummaryRoot)
			if _, err := personas.Load(ctx, o.RoleID); err != nil {
				return fmt.Errorf("persona check for %q: %w", o.RoleID, err)
			}

			db, err := util.OpenDB(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			roles := sqlite.NewRoleStore(db)
			detail := &entity.RoleDetail{
				RoleID:   o.RoleID,
				RoleName: o.RoleName,
				Age:      o.Age,
				Mood:     entity.NeutralMood(),
			}
			if err := roles.UpsertDetail(ctx, detail); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "role %s (%s) initialized\n", o.RoleID, o.RoleName)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.RoleID, "role", o.RoleID, "Role id")
	cmd.Flags().StringVar(&o.RoleName, "name", o.RoleName, "Role display name")
	cmd.Flags().IntVar(&o.Age, "age", o.Age, "Role age")
	return cmd
}

func newCmdList(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := util.LoadOptions(*cfgFile)
			if err != nil {
				return err
			}

			db, err := util.OpenDB(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			roles := sqlite.NewRoleStore(db)
			details, err := roles.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range details {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tage=%d\tmood=%s\n", d.RoleID, d.RoleName, d.Age, d.Mood.Tags)
			}
			return nil
		},
	}
}
