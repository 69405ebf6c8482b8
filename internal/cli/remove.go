package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var structureID int64

	cmd := &cobra.Command{
		Use:   "remove <element-id>",
		Short: "Remove an element and its subtree",
		Long: `Remove an element together with all of its descendants and close the
gap they leave behind.

Examples:
  nestedset remove 11 -s 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			elementID, err := parseID("element id", args[0])
			if err != nil {
				return err
			}
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			removed, err := sess.service.RemoveElement(cmd.Context(), structureID, elementID)
			if err != nil {
				return sess.out.Fail(exitCodeFor(err), "remove failed", err)
			}
			return sess.out.Success(
				map[string]int64{"element_id": elementID, "removed": removed},
				fmt.Sprintf("✓ Removed element %d (%d node(s))", elementID, removed),
			)
		},
	}

	cmd.Flags().Int64VarP(&structureID, "structure", "s", 0, "structure ID (required)")
	_ = cmd.MarkFlagRequired("structure")

	return cmd
}
