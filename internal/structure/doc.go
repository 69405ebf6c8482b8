// Package structure is the public entry point for placing elements in a
// nested-set hierarchy.
//
// A Service exposes six placement verbs (Prepend, Append, PrependToRoot,
// AppendToRoot, MoveBefore, MoveAfter). Each resolves its target and
// source, validates the move, and then shifts and writes inside one scoped
// transaction. It joins the caller's transaction when the context carries
// one. Before-move handlers can veto a move. After-move handlers run only
// once the outermost transaction has committed.
//
// The Service also owns structure CRUD, the per-structure root cache, level
// delta measurement, subtree removal and invariant verification.
package structure
