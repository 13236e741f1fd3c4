package lime

import (
	"errors"
	"fmt"
)

// ErrUnfit is returned when Explain is called before the discretization
// scheme has been fitted.
var ErrUnfit = errors.New("explainer is not fitted")

// UnknownCategoryError reports a categorical level that was not observed
// when the scheme was fitted. It is scoped to the offending instance; the
// fitted scheme remains valid.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown value %q for categorical attribute %s", e.Value, e.Column)
}

// SingularFitError reports that no viable feature subset could be fitted for
// one explanation. Viable is the number of non-degenerate candidate columns
// that were available.
type SingularFitError struct {
	Viable int
}

func (e *SingularFitError) Error() string {
	return fmt.Sprintf("no viable feature subset for surrogate fit (%d viable columns)", e.Viable)
}

// BlackBoxError wraps a classifier invocation failure that persisted after
// one retry. It is fatal for the explanation that issued the call only.
type BlackBoxError struct {
	Err error
}

func (e *BlackBoxError) Error() string {
	return fmt.Sprintf("black-box prediction failed: %s", e.Err)
}

func (e *BlackBoxError) Unwrap() error {
	return e.Err
}
