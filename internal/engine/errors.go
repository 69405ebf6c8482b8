package engine

import (
	"errors"
	"fmt"
)

// MoveError represents a failed placement.
//
// NotFound and VetoedMove are expected business outcomes. CyclicMove and
// StorageFailure indicate programmer or infrastructure faults.
type MoveError struct {
	// Code identifies the error category.
	Code MoveErrorCode

	// Message is a human-readable description.
	Message string

	// StructureID identifies the affected structure.
	StructureID int64

	// ElementID identifies the element being placed.
	ElementID int64

	// Err is the underlying cause, if any.
	Err error
}

// MoveErrorCode categorizes placement errors.
type MoveErrorCode string

const (
	// ErrCodeNotFound indicates a structure, target or source node does not exist.
	ErrCodeNotFound MoveErrorCode = "NOT_FOUND"

	// ErrCodeCyclicMove indicates the target is the source or one of its descendants.
	ErrCodeCyclicMove MoveErrorCode = "CYCLIC_MOVE"

	// ErrCodeVetoedMove indicates a before-move handler declined the move.
	ErrCodeVetoedMove MoveErrorCode = "VETOED_MOVE"

	// ErrCodeStorageFailure indicates the underlying transaction failed.
	ErrCodeStorageFailure MoveErrorCode = "STORAGE_FAILURE"

	// ErrCodeInvalidTarget indicates the placement cannot apply to the target,
	// such as a sibling of a root node.
	ErrCodeInvalidTarget MoveErrorCode = "INVALID_TARGET"

	// ErrCodeMaxLevelsExceeded indicates the move would exceed the structure's maxLevels.
	ErrCodeMaxLevelsExceeded MoveErrorCode = "MAX_LEVELS_EXCEEDED"
)

// Error implements the error interface.
func (e *MoveError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.StructureID != 0 || e.ElementID != 0 {
		msg = fmt.Sprintf("%s (structure=%d, element=%d)", msg, e.StructureID, e.ElementID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *MoveError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code MoveErrorCode) bool {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

// IsNotFound returns true if err is a NOT_FOUND MoveError.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsCyclicMove returns true if err is a CYCLIC_MOVE MoveError.
func IsCyclicMove(err error) bool { return hasCode(err, ErrCodeCyclicMove) }

// IsVetoed returns true if err is a VETOED_MOVE MoveError.
func IsVetoed(err error) bool { return hasCode(err, ErrCodeVetoedMove) }

// IsStorageFailure returns true if err is a STORAGE_FAILURE MoveError.
func IsStorageFailure(err error) bool { return hasCode(err, ErrCodeStorageFailure) }

// IsInvalidTarget returns true if err is an INVALID_TARGET MoveError.
func IsInvalidTarget(err error) bool { return hasCode(err, ErrCodeInvalidTarget) }

// IsMaxLevelsExceeded returns true if err is a MAX_LEVELS_EXCEEDED MoveError.
func IsMaxLevelsExceeded(err error) bool { return hasCode(err, ErrCodeMaxLevelsExceeded) }

// CodeOf returns the MoveErrorCode carried by err, or "" if none.
func CodeOf(err error) MoveErrorCode {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// NewNotFoundError creates a MoveError for a missing node or structure.
func NewNotFoundError(structureID, elementID int64, what string) *MoveError {
	return &MoveError{
		Code:        ErrCodeNotFound,
		Message:     what + " not found",
		StructureID: structureID,
		ElementID:   elementID,
	}
}

// NewCyclicMoveError creates a MoveError for a move into the source's own subtree.
func NewCyclicMoveError(structureID, elementID int64) *MoveError {
	return &MoveError{
		Code:        ErrCodeCyclicMove,
		Message:     "target is the element itself or one of its descendants",
		StructureID: structureID,
		ElementID:   elementID,
	}
}

// NewVetoedError creates a MoveError for a move declined by a before-move handler.
func NewVetoedError(structureID, elementID int64) *MoveError {
	return &MoveError{
		Code:        ErrCodeVetoedMove,
		Message:     "move vetoed by before-move handler",
		StructureID: structureID,
		ElementID:   elementID,
	}
}

// NewStorageError wraps a storage-layer failure.
func NewStorageError(structureID, elementID int64, err error) *MoveError {
	return &MoveError{
		Code:        ErrCodeStorageFailure,
		Message:     "storage failure",
		StructureID: structureID,
		ElementID:   elementID,
		Err:         err,
	}
}

// NewInvalidTargetError creates a MoveError for a placement the target cannot accept.
func NewInvalidTargetError(structureID, elementID int64, reason string) *MoveError {
	return &MoveError{
		Code:        ErrCodeInvalidTarget,
		Message:     reason,
		StructureID: structureID,
		ElementID:   elementID,
	}
}

// NewMaxLevelsError creates a MoveError for a move deeper than maxLevels.
func NewMaxLevelsError(structureID, elementID int64, deepest, maxLevels int) *MoveError {
	return &MoveError{
		Code:        ErrCodeMaxLevelsExceeded,
		Message:     fmt.Sprintf("subtree would reach level %d (max %d)", deepest, maxLevels),
		StructureID: structureID,
		ElementID:   elementID,
	}
}
