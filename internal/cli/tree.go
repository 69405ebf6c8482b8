package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/nestedset/internal/ir"
)

// TreeOptions holds flags for the tree command.
type TreeOptions struct {
	*RootOptions
	StructureID int64
	Element     int64
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TreeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a structure's nodes",
		Long: `Print every node of a structure in nested-set order, indented by level.

With --element only that element's subtree is printed.

Examples:
  nestedset tree -s 1
  nestedset tree -s 1 --element 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := cmd.Context()
			var nodes []ir.Node
			if opts.Element != ir.NoElement {
				top, err := sess.service.Node(ctx, opts.StructureID, opts.Element)
				if err != nil {
					return sess.out.Fail(exitCodeFor(err), "failed to load subtree", err)
				}
				below, err := sess.service.Descendants(ctx, opts.StructureID, opts.Element)
				if err != nil {
					return sess.out.Fail(exitCodeFor(err), "failed to load subtree", err)
				}
				nodes = append([]ir.Node{top}, below...)
			} else if nodes, err = sess.service.Tree(ctx, opts.StructureID); err != nil {
				return sess.out.Fail(exitCodeFor(err), "failed to load tree", err)
			}

			return sess.out.Success(viewsOf(nodes), formatTree(nodes))
		},
	}

	cmd.Flags().Int64VarP(&opts.StructureID, "structure", "s", 0, "structure ID (required)")
	_ = cmd.MarkFlagRequired("structure")
	cmd.Flags().Int64Var(&opts.Element, "element", 0, "print only this element's subtree")

	return cmd
}
