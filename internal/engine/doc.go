// Package engine implements the nested-set move engine.
//
// The engine computes and applies a new (root, lft, rgt, level) for one
// subtree relative to a target node. Every placement runs as one scoped
// transaction on the store: a caller's open transaction is joined, otherwise
// one is begun and committed here.
//
// PLACEMENT FLOW:
//
//  1. Re-read the target (and source, when relocating) inside the transaction
//  2. Validate: unknown placement, sibling of a root node, cyclic move, no-op
//  3. Open a gap of the subtree's width at the anchor (ShiftRange, +w)
//  4. Write the new leaf, or translate the existing subtree into the gap
//  5. Close the vacated range (ShiftRange, -w) when relocating
//
// All shifts are computed from the coordinates read in step 1, so no
// committed state ever contains overlapping ranges.
//
// Validate is exported so callers can reject cyclic and no-op moves before
// opening a transaction at all.
package engine
