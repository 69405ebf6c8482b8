package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedset/internal/ir"
)

// StructureOptions holds flags for the structure create command.
type StructureOptions struct {
	*RootOptions
	MaxLevels int
}

// NewStructureCommand creates the structure command group.
func NewStructureCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Manage structure definitions",
	}

	cmd.AddCommand(newStructureCreateCommand(rootOpts))
	cmd.AddCommand(newStructureShowCommand(rootOpts))
	cmd.AddCommand(newStructureListCommand(rootOpts))
	cmd.AddCommand(newStructureDeleteCommand(rootOpts))

	return cmd
}

func newStructureCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StructureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a structure",
		Long: `Create a structure and print its ID.

--max-levels limits how deep elements may nest below the structure's
root; 0 means unlimited.

Examples:
  nestedset structure create
  nestedset structure create --max-levels 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s := ir.Structure{MaxLevels: opts.MaxLevels}
			if err := sess.service.SaveStructure(cmd.Context(), &s); err != nil {
				return sess.out.Fail(ExitCommandError, "failed to create structure", err)
			}
			return sess.out.Success(s, fmt.Sprintf("✓ Created structure %d (%s)", s.ID, s.UID))
		},
	}

	cmd.Flags().IntVar(&opts.MaxLevels, "max-levels", 0, "maximum depth below the root (0 = unlimited)")

	return cmd
}

func newStructureShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <structure-id>",
		Short:         "Show a structure definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("structure id", args[0])
			if err != nil {
				return err
			}
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			s, err := sess.service.GetStructureByID(cmd.Context(), id)
			if err != nil {
				return sess.out.Fail(exitCodeFor(err), "failed to load structure", err)
			}
			return sess.out.Success(s, formatStructure(s))
		},
	}
}

func newStructureListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all structures",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			structures, err := sess.service.Structures(cmd.Context())
			if err != nil {
				return sess.out.Fail(ExitCommandError, "failed to list structures", err)
			}
			if structures == nil {
				structures = []ir.Structure{}
			}

			text := "No structures."
			if len(structures) > 0 {
				lines := make([]string, len(structures))
				for i, s := range structures {
					lines[i] = formatStructure(s)
				}
				text = strings.Join(lines, "\n")
			}
			return sess.out.Success(structures, text)
		},
	}
}

func newStructureDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <structure-id>",
		Short: "Delete a structure definition",
		Long: `Delete a structure definition.

Nodes placed in the structure are left in the database; use remove
to take elements out first if they should go too.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("structure id", args[0])
			if err != nil {
				return err
			}
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			deleted, err := sess.service.DeleteStructureByID(cmd.Context(), id)
			if err != nil {
				return sess.out.Fail(ExitCommandError, "failed to delete structure", err)
			}
			if !deleted {
				return sess.out.Fail(ExitFailure, "structure not found",
					fmt.Errorf("no structure with id %d", id))
			}
			return sess.out.Success(map[string]int64{"deleted": id}, fmt.Sprintf("✓ Deleted structure %d", id))
		},
	}
}

func formatStructure(s ir.Structure) string {
	levels := "unlimited"
	if !s.Unlimited() {
		levels = fmt.Sprintf("%d", s.MaxLevels)
	}
	return fmt.Sprintf("structure %d  uid=%s  max_levels=%s", s.ID, s.UID, levels)
}
