package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Configuration & Environment Errors
var (
	ErrConfigInvalid       = errors.New("configuration invalid")
	ErrEnvironmentVariable = errors.New("environment variable error")
)

// File mirror Errors
var (
	ErrMirrorWrite  = errors.New("mirror write failed")
	ErrMirrorRemove = errors.New("mirror remove failed")
)

// Configuration & Environment Error Constructors
func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigInvalid,
		Details:    fmt.Sprintf("Configuration error for %s", configName),
		Cause:      cause,
		Field:      configName,
	}
}

func NewInvalidConfigError(configName, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigInvalid,
		Details:    fmt.Sprintf("Invalid value for %s: %s", configName, reason),
		Field:      configName,
	}
}

func NewEnvironmentVariableError(varName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrEnvironmentVariable,
		Details:    fmt.Sprintf("Environment variable %s is not set or invalid", varName),
		Field:      varName,
	}
}

// File mirror Error Constructors
func NewMirrorWriteError(slug string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrMirrorWrite,
		Details:    fmt.Sprintf("Failed to write mirror file for %s", slug),
		Cause:      cause,
		Field:      "slug",
	}
}

func NewMirrorRemoveError(slug string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrMirrorRemove,
		Details:    fmt.Sprintf("Failed to remove mirror file for %s", slug),
		Cause:      cause,
		Field:      "slug",
	}
}

// Configuration & Environment Error Type Checkers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigInvalid) || errors.Is(err, ErrEnvironmentVariable)
}
