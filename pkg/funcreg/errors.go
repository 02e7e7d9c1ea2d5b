package funcreg

import (
	"errors"
	"fmt"
)

// Sentinel errors for registration.
var (
	// ErrNameConflict indicates a handler name is already taken in its scope.
	ErrNameConflict = errors.New("handler name conflict")

	// ErrUnnamed indicates no name could be derived for a handler.
	// Pass WithName, implement Namer, or register a func value.
	ErrUnnamed = errors.New("cannot derive handler name")
)

// Sentinel errors for module loading.
var (
	// ErrInvalidModuleSpec indicates a malformed "path[:attr]" spec string.
	ErrInvalidModuleSpec = errors.New("invalid module spec")

	// ErrModuleNotFound indicates no module was provided under the path.
	ErrModuleNotFound = errors.New("module not found")

	// ErrAttributeNotFound indicates the module exists but does not
	// export the requested attribute.
	ErrAttributeNotFound = errors.New("module attribute not found")

	// ErrIncompatibleRegistry indicates the exported value is not a
	// registry of the importing manager's handler type.
	ErrIncompatibleRegistry = errors.New("incompatible registry")
)

// NameConflictError reports a rejected registration.
type NameConflictError struct {
	// TypeKey is the type key of the rejected registration.
	TypeKey string
	// Related is the related key, empty for unrelated registrations.
	Related string
	// Name is the handler name or related key that collided.
	Name string
}

// Error implements the error interface.
func (e *NameConflictError) Error() string {
	if e.Related == "" {
		return fmt.Sprintf("funcreg: %q already registered under type %q", e.Name, e.TypeKey)
	}
	return fmt.Sprintf("funcreg: %q already registered under type %q related %q", e.Name, e.TypeKey, e.Related)
}

// Unwrap returns ErrNameConflict for errors.Is support.
func (e *NameConflictError) Unwrap() error {
	return ErrNameConflict
}

// ResolutionError wraps a failure to resolve one module spec.
type ResolutionError struct {
	// Spec is the raw spec string passed to ImportModules.
	Spec string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("funcreg: import %q: %v", e.Spec, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
