package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrMissingToken         = errors.New("token missing from response")
	ErrFetchFailed          = errors.New("fetch failed")
	ErrMappingFailed        = errors.New("mapping failed")
	ErrUnknownVocabulary    = errors.New("unknown vocabulary value")
	ErrUploadFailed         = errors.New("upload failed")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrRunNotFound          = errors.New("run not found")
)

// AuthenticationError is fatal: the run aborts before any record is touched.
type AuthenticationError struct {
	System     string
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication against %s failed with status %d: %s", e.System, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("authentication against %s failed: %v", e.System, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthenticationFailed }

// FetchError means the source collection could not be read at all.
type FetchError struct {
	Entity     string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s failed with status %d: %s", e.Entity, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetching %s failed: %v", e.Entity, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// MappingError is scoped to one record, identified by its natural key.
type MappingError struct {
	Entity string
	Key    string
	Field  string
	Err    error
}

func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mapping %s %q: field %s: %v", e.Entity, e.Key, e.Field, e.Err)
	}
	return fmt.Sprintf("mapping %s %q: %v", e.Entity, e.Key, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

func (e *MappingError) Is(target error) bool { return target == ErrMappingFailed }

// UploadError is scoped to one record. StatusCode is zero for network-level failures.
type UploadError struct {
	Resource   string
	Key        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload of %s %q returned status %d: %s", e.Resource, e.Key, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upload of %s %q failed: %v", e.Resource, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrUploadFailed }

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrFetchFailed)
}
