package scene

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySurface is wrapped by ResourceAcquisitionError when the drawable has no area.
var ErrEmptySurface = errors.New("drawable has zero size")

// ResourceAcquisitionError reports a resource that could not be created.
type ResourceAcquisitionError struct {
	Resource string
	Err      error
}

func (e *ResourceAcquisitionError) Error() string {
	return fmt.Sprintf("scene: acquiring %s: %v", e.Resource, e.Err)
}

func (e *ResourceAcquisitionError) Unwrap() error {
	return e.Err
}

// DisposalError collects the resources that failed to release.
// The scene is still considered disposed.
type DisposalError struct {
	Failed []string
	Err    error // errors.Join of every failure
}

func (e *DisposalError) Error() string {
	return fmt.Sprintf("scene: releasing %s: %v", strings.Join(e.Failed, ", "), e.Err)
}

func (e *DisposalError) Unwrap() error {
	return e.Err
}
