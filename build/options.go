package build

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codex-storage/go-codex/errors"
)

// DefaultOptionsFile is looked up relative to the working directory
// when no explicit options file is given.
const DefaultOptionsFile = "codexbuild.yaml"

// Options configures the build pipeline from a file. Flags take
// precedence over the file; the file takes precedence over defaults.
type Options struct {
	// SourceDir overrides where the native source tree is placed.
	SourceDir string `yaml:"sourceDir"`

	// Make overrides the make binary.
	Make string `yaml:"make"`

	// LibParams is passed through to the native build as extra
	// compiler parameters.
	LibParams string `yaml:"libParams"`

	// Mode selects the linking mode ("static" or "dynamic") when
	// no flag does.
	Mode string `yaml:"mode"`
}

// LoadOptions reads an options file. A missing file at the default
// location is not an error; a missing file at an explicit location is.
func LoadOptions(path string) (Options, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultOptionsFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Options{}, nil
		}
		return Options{}, errors.ConfigInvalid("optionsFile", err.Error())
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, errors.ConfigInvalid("optionsFile", err.Error())
	}
	if opts.Mode != "" {
		if _, err := ParseMode(opts.Mode); err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}
