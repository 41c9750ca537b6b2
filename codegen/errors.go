package codegen

import (
	stderrors "errors"
	"fmt"
)

// ErrNotDirectory is returned when the output path exists but is not a
// directory.
var ErrNotDirectory = stderrors.New("output path is not a directory")

// CodeGenerationError reports a failed emission run. Class is empty when
// the output directory itself was unusable. Files written before the
// failure stay on disk.
type CodeGenerationError struct {
	Class string
	Path  string
	Err   error
}

func (e *CodeGenerationError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("code generation failed for %s: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("code generation failed at %s: %v", e.Path, e.Err)
}

func (e *CodeGenerationError) Unwrap() error { return e.Err }
