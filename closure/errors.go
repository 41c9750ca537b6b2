package closure

import (
	stderrors "errors"
	"fmt"

	"github.com/c360studio/semschema/validate"
)

// ErrStoreUnusable is returned by Build after an earlier build failed.
// Writes made before the failure are not rolled back.
var ErrStoreUnusable = stderrors.New("schema store unusable after failed build")

// ConsistencyError reports that the raw graph failed validation. No
// statement was copied into the store.
type ConsistencyError struct {
	Report validate.Report
	Err    error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("schema is inconsistent: %v", e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// ModelBuildingError reports a failure while closing the store. Stage
// names the step that failed.
type ModelBuildingError struct {
	Stage string
	Err   error
}

func (e *ModelBuildingError) Error() string {
	return fmt.Sprintf("model building failed at %s: %v", e.Stage, e.Err)
}

func (e *ModelBuildingError) Unwrap() error { return e.Err }
