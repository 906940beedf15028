package model

import "errors"

// Error classes surfaced to the user. Callers wrap them with context
// (fmt.Errorf("...: %w", ErrX)) and classify with errors.Is.
var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrValidation           = errors.New("validation failed")
	ErrBackendAuth          = errors.New("backend authentication failed")
	ErrScriptExecution      = errors.New("script execution error")
	ErrNotFound             = errors.New("not found")
	ErrDependencyInstall    = errors.New("failed to install the required modules")
	ErrAborted              = errors.New("aborted")
)
