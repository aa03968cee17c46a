package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Missonix/SSAI-brain/internal/brainadm/cmd/util"
)

// NewCmdMigrate creates the `brainadm migrate` command.
func NewCmdMigrate(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the sqlite schema",
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

			fmt.Fprintf(cmd.OutOrStdout(), "schema ensured at %s\n", opts.SQLiteOptions.Path)
			return nil
		},
	}
}
