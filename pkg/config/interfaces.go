package config

import "context"

// ConfigLoader loads a configuration document into dst.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configurations that can validate
// themselves after loading. Validate applies defaults as it checks.
type Validator interface {
	Validate() error
}
