package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// DefaultDatabase is used when neither --db nor NESTEDSET_DB is set.
const DefaultDatabase = "nestedset.db"

// DatabaseEnv names the environment variable that overrides the default database path.
const DatabaseEnv = "NESTEDSET_DB"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the nestedset CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "nestedset",
		Short: "Nested-set hierarchy manager",
		Long: `Manage ordered hierarchies stored as nested sets.

Every element of a structure occupies an interval [lft, rgt] inside a
root group. Placement commands move whole subtrees while keeping the
intervals contiguous and properly nested.`,
		// main prints the returned error and picks the exit code.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", defaultDatabase(), "SQLite database path (env "+DatabaseEnv+")")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewStructureCommand(opts))
	cmd.AddCommand(NewPlaceCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewDeltaCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

func defaultDatabase() string {
	if path := os.Getenv(DatabaseEnv); path != "" {
		return path
	}
	return DefaultDatabase
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
