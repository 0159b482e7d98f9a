package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/cubedata/segcache/pkg/cerr"
)

// Load reads subsystem configuration from a TOML file at path, applying
// NewDefaultOptions first so any field the file omits keeps its default.
// An empty path returns the defaults unmodified.
func Load(path string) (*Options, error) {
	opts := NewDefaultOptions()
	if path == "" {
		return &opts, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, cerr.NewRequiredFieldError("path").
				WithMessage("config file does not exist").
				WithDetail("path", path)
		}
		return nil, cerr.ClassifyFileOpenError(err, path, path)
	}

	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return nil, cerr.NewValidationError(err, cerr.ErrorCodeInvalidInput, "failed to decode config file").
			WithField("path").
			WithDetail("path", path)
	}

	if opts.ProviderOptions == nil {
		opts.ProviderOptions = NewDefaultOptions().ProviderOptions
	}

	return &opts, nil
}
