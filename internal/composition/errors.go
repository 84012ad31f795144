package composition

import "fmt"

// CompositionError indicates a structural misuse of a skeleton: an unfilled
// required slot or a placeholder the renderer does not recognize. These are
// configuration errors and always propagate.
type CompositionError struct {
	Skeleton string
	Slot     string
	Message  string
}

func (e *CompositionError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("composition error in skeleton %q, slot %q: %s", e.Skeleton, e.Slot, e.Message)
	}
	return fmt.Sprintf("composition error in skeleton %q: %s", e.Skeleton, e.Message)
}

// UnknownSkeletonError indicates a lookup of a skeleton name that is not
// registered.
type UnknownSkeletonError struct {
	Name string
}

func (e *UnknownSkeletonError) Error() string {
	return fmt.Sprintf("unknown skeleton %q", e.Name)
}
