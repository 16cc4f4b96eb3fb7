package source

import (
	"errors"
	"fmt"
)

// UnsupportedSourceError means the source cannot answer this particular query
// and the aggregator should move on to the next one
type UnsupportedSourceError struct {
	Reason string
}

func (e UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported by source: %s", e.Reason)
}

// TransportError is a network failure or non-2xx response from an upstream
type TransportError struct {
	Upstream   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %s", e.Upstream, e.Err)
	}
	return fmt.Sprintf("%s returned status %d", e.Upstream, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is a response that arrived but does not have the expected shape
type ProtocolError struct {
	Upstream string
	Message  string
	Err      error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s protocol error: %s: %s", e.Upstream, e.Message, e.Err)
	}
	return fmt.Sprintf("%s protocol error: %s", e.Upstream, e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ConfigurationError is fatal and never retried
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Setting)
}

func IsConfigurationError(err error) bool {
	var configurationError *ConfigurationError
	return errors.As(err, &configurationError)
}

func IsUnsupported(err error) bool {
	var unsupported UnsupportedSourceError
	return errors.As(err, &unsupported)
}
