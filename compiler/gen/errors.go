package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every ConfigError.
	ErrInvalidConfig = errors.New("relgen: invalid configuration")
	// ErrGeneration is matched by every GenerationError.
	ErrGeneration = errors.New("relgen: generation failed")
)

// ConfigError reports an invalid option value.
type ConfigError struct {
	Option string
	Value  any
	Msg    string
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("relgen: option %s: %s", e.Option, e.Msg)
	}
	return fmt.Sprintf("relgen: option %s=%v: %s", e.Option, e.Value, e.Msg)
}

// Is matches ErrInvalidConfig.
func (e *ConfigError) Is(err error) bool { return err == ErrInvalidConfig }

// NewConfigError returns a ConfigError for option. A nil value is omitted
// from the message.
func NewConfigError(option string, value any, msg string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Msg: msg}
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// GenerationError reports a failure while rendering or writing one file.
type GenerationError struct {
	Phase string // emitter phase: package, query, client or schema
	File  string
	Step  string
	Err   error
}

func (e *GenerationError) Error() string {
	msg := "relgen: generate"
	if e.Phase != "" {
		msg += " " + e.Phase
	}
	if e.File != "" {
		msg += " " + e.File
	}
	if e.Step != "" {
		msg += ": " + e.Step
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is matches ErrGeneration.
func (e *GenerationError) Is(err error) bool { return err == ErrGeneration }

// NewGenerationError returns a GenerationError for file, emitted during
// phase, that failed at step.
func NewGenerationError(phase, file, step string, err error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Step: step, Err: err}
}

// IsGenerationError reports whether err is or wraps a GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}
