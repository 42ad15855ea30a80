package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/bears/pkg/errors"
)

var envRef = regexp.MustCompile(`\$\{([^}]*)\}`)

// expandEnv replaces every ${NAME} with the value of the environment variable
// NAME, or "" when it is unset. A bare $NAME is left alone.
func expandEnv(content []byte) []byte {
	return envRef.ReplaceAllFunc(content, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
}

// Load decodes the YAML file at path into out after expanding ${NAME}
// references
func Load(path string, out interface{}) error {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "read config").WithDetail("path", path)
	}
	if err := yaml.Unmarshal(expandEnv(raw), out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "parse config").WithDetail("path", path)
	}
	return nil
}

// LoadJobConfig reads a job file over the defaults of NewJobConfig. Fields
// the file leaves out keep their default. The result is not validated so
// callers can apply overrides first.
func LoadJobConfig(path string) (*JobConfig, error) {
	cfg := NewJobConfig("")
	if err := Load(path, cfg); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if cfg.Input.ColumnTypes == nil {
		cfg.Input.ColumnTypes = map[string]string{}
	}
	return cfg, nil
}

// Save writes v to path as YAML
func Save(path string, v interface{}) error {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "encode config")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeConfig, "write config").WithDetail("path", path)
	}
	return nil
}
