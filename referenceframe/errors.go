package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

// OOBErrString is a string that all OOB errors contain.
const OOBErrString = "input out of bounds"

// ErrCircularReference is returned when a frame is its own ancestor.
var ErrCircularReference = errors.New("infinite loop finding path from frame to world")

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// OutOfBoundsError reports a joint input outside of its limits.
type OutOfBoundsError struct {
	Frame string
	Value float64
	Limit Limit
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: %.5f %s [%.5f, %.5f]", e.Frame, e.Value, OOBErrString, e.Limit.Min, e.Limit.Max)
}

// NewFrameMissingError returns an error indicating that the given frame is missing from the model.
func NewFrameMissingError(frameName string) error {
	return errors.Errorf("frame with name %q not in model", frameName)
}

// NewParentFrameMissingError returns an error indicating that the parent of a frame is missing.
func NewParentFrameMissingError(frameName, parentName string) error {
	return errors.Errorf("parent frame %q of frame %q not in model", parentName, frameName)
}

// NewReservedWordError returns an error indicating the use of a reserved word.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewDuplicateFrameError returns an error indicating that two frames share a name.
func NewDuplicateFrameError(frameName string) error {
	return errors.Errorf("cannot have more than one frame with name %q", frameName)
}

// NewUnknownGroupError returns an error indicating that no joint model group has the given name.
func NewUnknownGroupError(groupName string) error {
	return errors.Errorf("no joint model group named %q", groupName)
}
