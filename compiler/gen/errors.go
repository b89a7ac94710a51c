package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidConfig indicates a configuration error.
	ErrInvalidConfig = errors.New("autogen: invalid configuration")
	// ErrInvalidDefinition indicates an error definition file that cannot be used.
	ErrInvalidDefinition = errors.New("autogen: invalid error definition")
	// ErrInvalidLanguage indicates a <lang> value that is not a BCP 47 tag.
	ErrInvalidLanguage = errors.New("autogen: invalid language tag")
	// ErrMalformedMarker indicates a marker comment that cannot be applied.
	ErrMalformedMarker = errors.New("autogen: malformed marker")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("autogen: code generation failed")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("autogen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("autogen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// DefinitionError represents a problem in an XML error definition file.
type DefinitionError struct {
	File    string // Definition file path
	Entry   string // Entry name or code (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString("autogen: definition error")
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	if e.Entry != "" {
		b.WriteString(" entry ")
		b.WriteString(e.Entry)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for DefinitionError.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// NewDefinitionError creates a new DefinitionError.
func NewDefinitionError(file, entry, message string, cause error) *DefinitionError {
	return &DefinitionError{
		File:    file,
		Entry:   entry,
		Message: message,
		Cause:   cause,
	}
}

// MarkerError represents a marker comment that cannot be applied.
type MarkerError struct {
	Type    string // Struct type name
	Field   string // Field name (if applicable)
	Message string
}

// Error implements the error interface.
func (e *MarkerError) Error() string {
	var b strings.Builder
	b.WriteString("autogen: malformed marker")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for MarkerError.
func (e *MarkerError) Is(target error) bool {
	return target == ErrMalformedMarker
}

// NewMarkerError creates a new MarkerError.
func NewMarkerError(typeName, fieldName, message string) *MarkerError {
	return &MarkerError{
		Type:    typeName,
		Field:   fieldName,
		Message: message,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "property", "errclass", "bundle", "accessor", "write"
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("autogen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsDefinitionError reports whether the error is a DefinitionError.
func IsDefinitionError(err error) bool {
	var defErr *DefinitionError
	return errors.As(err, &defErr)
}

// IsMarkerError reports whether the error is a MarkerError.
func IsMarkerError(err error) bool {
	var markerErr *MarkerError
	return errors.As(err, &markerErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
