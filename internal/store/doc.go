// Package store provides SQLite-backed storage for nested-set structures.
//
// It holds two tables:
//   - structures: hierarchy definitions (id, uid, max_levels)
//   - structure_nodes: one row per positioned element (root, lft, rgt, level)
//
// # Node Repository
//
// Finders return (value, found, err). A missing row is reported through
// found=false and is never an error. Errors are storage failures only.
//
// ShiftRange is the single primitive that opens and closes gaps in lft/rgt
// space. It is one bulk UPDATE scoped to a (structure, root) pair.
//
// # Transactions
//
// RunInTx joins a transaction already carried in the context or begins a new
// one. Only the call that began a transaction commits or rolls it back.
// Every Store method runs on the context's transaction when one is present.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - _txlock=immediate: BEGIN takes the write lock, so two placements can
//     never interleave a shift and a write
package store
