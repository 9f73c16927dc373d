package model

import (
	"errors"
	"fmt"
)

// ConfigError reports a session configuration that can never produce a
// well-formed model. It is raised before any variable is constructed;
// a bad config must fail fast, not surface later as solver infeasibility.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid session config: %s: %s", e.Field, e.Msg)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
