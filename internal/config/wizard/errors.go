package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errNamespaceRequired = errors.New("namespace is required")
	errNamespaceInvalid  = errors.New("namespace must be 1-63 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric")
	errURLRequired       = errors.New("URL is required")
	errURLInvalid        = errors.New("invalid URL (expected: https://host[/path])")
	errValueRequired     = errors.New("value is required")
)
