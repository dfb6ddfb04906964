package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"

	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

// DefaultFile is read when no settings file is named and it exists.
const DefaultFile = "hydrate.yaml"

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load builds settings from defaults, the YAML file at path and HYDRATE_* variables, in
// that order. An empty path falls back to DefaultFile when present. The result is not
// validated so that flags can still be applied; call Validate afterwards.
func Load(path string) (*Settings, error) {
	settings := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			if path == "" && errors.Is(err, fs.ErrNotExist) {
				data = nil
			} else {
				return nil, hydraterrors.NewParseError(file, 0, err)
			}
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, hydraterrors.NewParseError(file, extractLine(err), err)
		}
	}

	if err := ApplyEnv(&settings, nil); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ApplyEnv overlays HYDRATE_* variables. environ replaces the process environment when
// non-nil. Unset variables leave fields untouched.
func ApplyEnv(settings *Settings, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(settings, opts); err != nil {
		return hydraterrors.NewValidationError("env", fmt.Sprintf("parsing environment: %v", err), err)
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
