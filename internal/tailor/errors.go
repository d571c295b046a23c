package tailor

import (
	"errors"
	"fmt"
)

// ErrInvalidShape is returned by Interpret when the requested input shape is
// empty or has a non-positive dimension. Nothing is traced in that case.
var ErrInvalidShape = errors.New("tailor: invalid input shape")

// ErrNilModel is returned by New for a nil root module.
var ErrNilModel = errors.New("tailor: nil model")

// ShapeError describes an invalid input shape.
type ShapeError struct {
	Shape  []int
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("tailor: invalid input shape %v: %s", e.Shape, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidShape.
func (e *ShapeError) Unwrap() error {
	return ErrInvalidShape
}

func validateShape(shape []int) error {
	if len(shape) == 0 {
		return &ShapeError{Shape: shape, Reason: "no dimensions"}
	}
	for i, d := range shape {
		if d <= 0 {
			return &ShapeError{Shape: shape, Reason: fmt.Sprintf("dimension %d is %d", i, d)}
		}
	}
	return nil
}
