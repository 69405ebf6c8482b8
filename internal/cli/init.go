package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the database",
		Long: `Create the SQLite database named by --db and apply the schema.

Running init against an existing database is safe; pending migrations
are applied and existing data is kept.

Examples:
  nestedset init --db ./tree.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			return sess.out.Success(
				map[string]string{"database": rootOpts.Database},
				fmt.Sprintf("✓ Initialized %s", rootOpts.Database),
			)
		},
	}
}
