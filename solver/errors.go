package solver

import (
	"errors"
	"fmt"

	"github.com/brunokim/backchain/logic"
)

// ErrDepthExceeded matches every *DepthError.
var ErrDepthExceeded = errors.New("max depth exceeded")

// DepthError is returned when proving a goal needs more nested rule expansions
// than the solver allows.
type DepthError struct {
	Goal     logic.Literal
	MaxDepth int
}

func (err *DepthError) Error() string {
	return fmt.Sprintf("%v: max depth %d exceeded", err.Goal, err.MaxDepth)
}

func (err *DepthError) Is(target error) bool {
	return target == ErrDepthExceeded
}
