// Package ir provides the value types shared by every layer of the nested-set
// structure engine.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Positions are integers only: root, lft, rgt, level
//   - Element IDs are opaque; 0 means "no element" (the synthetic root node)
//   - All JSON tags use snake_case
package ir
