package lifestory

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Missonix/SSAI-brain/internal/brainadm/cmd/util"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// initOptions holds the `lifestory init` flags.
type initOptions struct {
	RoleID   string
	Title    string
	Birthday string
	Life     int
	Wealth   string
	Theme    string
}

// NewCmdLifeStory creates the `brainadm lifestory` command group.
func NewCmdLifeStory(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifestory",
		Short: "Manage character life stories",
	}
	cmd.AddCommand(newCmdInit(cfgFile))
	cmd.AddCommand(newCmdAdvance(cfgFile))
	return cmd
}

func newCmdInit(cfgFile *string) *cobra.Command {
	o := &initOptions{
		Life: 80,
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Author a life-story outline and its first plots",
		Long: `Create the outline for a role, generate its first stages and
segments with the configured model, and write the opening daily plot
files. The role must already be initialized.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.RoleID == "" || o.Title == "" {
				return fmt.Errorf("--role and --title are required")
			}

			opts, err := util.LoadOptions(*cfgFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			module, db, err := util.BuildRoleplay(ctx, opts)
			if err != nil {
				return err
			}
			defer db.Close()
			defer module.Close()

			if _, err := module.Roles.GetDetail(ctx, o.RoleID); err != nil {
				return fmt.Errorf("role %q must be initialized first: %w", o.RoleID, err)
			}

			outline := &entity.Outline{
				OutlineID:    entity.NewOutlineID(),
				RoleID:       o.RoleID,
				Title:        o.Title,
				Birthday:     o.Birthday,
				Life:         o.Life,
				Wealth:       o.Wealth,
				OverallTheme: o.Theme,
				Version:      1,
			}
			if err := module.Machine.Bootstrap(ctx, outline); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "life story for %s bootstrapped (outline %s)\n", o.RoleID, outline.OutlineID)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.RoleID, "role", o.RoleID, "Role id")
	cmd.Flags().StringVar(&o.Title, "title", o.Title, "Outline title")
	cmd.Flags().StringVar(&o.Birthday, "birthday", o.Birthday, "Role birthday (YYYY-MM-DD)")
	cmd.Flags().IntVar(&o.Life, "life", o.Life, "Expected life span in years")
	cmd.Flags().StringVar(&o.Wealth, "wealth", o.Wealth, "Family wealth description")
	cmd.Flags().StringVar(&o.Theme, "theme", o.Theme, "Overall life theme")
	return cmd
}

func newCmdAdvance(cfgFile *string) *cobra.Command {
	var roleID string

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Run the life-story unlock check for a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if roleID == "" {
				return fmt.Errorf("--role is required")
			}

			opts, err := util.LoadOptions(*cfgFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			module, db, err := util.BuildRoleplay(ctx, opts)
			if err != nil {
				return err
			}
			defer db.Close()
			defer module.Close()

			advanced, err := module.Machine.Advance(ctx, roleID)
			if err != nil {
				return err
			}
			if advanced {
				fmt.Fprintf(cmd.OutOrStdout(), "role %s advanced to the next segment\n", roleID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "role %s is up to date\n", roleID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&roleID, "role", roleID, "Role id")
	return cmd
}
