package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeltaCommand creates the delta command.
func NewDeltaCommand(rootOpts *RootOptions) *cobra.Command {
	var structureID int64

	cmd := &cobra.Command{
		Use:   "delta <element-id>",
		Short: "Print how many levels an element's subtree spans below it",
		Long: `Print the level delta of an element: the distance from the element to
its deepest descendant. A leaf has delta 0.

Examples:
  nestedset delta 10 -s 1`,
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

			delta, err := sess.service.GetElementLevelDelta(cmd.Context(), structureID, elementID)
			if err != nil {
				return sess.out.Fail(exitCodeFor(err), "delta failed", err)
			}
			return sess.out.Success(
				map[string]int64{"element_id": elementID, "delta": int64(delta)},
				fmt.Sprintf("%d", delta),
			)
		},
	}

	cmd.Flags().Int64VarP(&structureID, "structure", "s", 0, "structure ID (required)")
	_ = cmd.MarkFlagRequired("structure")

	return cmd
}
