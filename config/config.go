// Package config loads and validates cdxserver's configuration. Configuration
// is generally stored as a YAML file, or provided at CLI runtime via command
// line flags.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"reflect"

	"github.com/ghodss/yaml"
	"github.com/qri-io/jsonschema"

	"github.com/nla/cdxserver/base/fill"
)

// CurrentConfigRevision is the latest configuration revision; configurations
// that don't match this revision number should be migrated up.
const CurrentConfigRevision = 1

// Config encapsulates all configuration details for cdxserver.
type Config struct {
	path string

	Revision int
	DataDir  string

	Access  *Access
	CLI     *CLI
	API     *API
	Logging *Logging
}

// SetArbitrary is an interface implementation of base/fill/struct in order to
// safely consume config files that have definitions beyond those specified
// in the struct. This simply ignores all additional fields at read time.
func (cfg *Config) SetArbitrary(key string, val interface{}) error {
	return nil
}

// DefaultConfig gives a new configuration with simple, default settings.
func DefaultConfig() *Config {
	return &Config{
		Revision: CurrentConfigRevision,
		DataDir:  "./data",
		Access:   DefaultAccess(),
		CLI:      DefaultCLI(),
		API:      DefaultAPI(),
		Logging:  DefaultLogging(),
	}
}

// SummaryString creates a pretty string summarizing the configuration,
// useful for log output.
func (cfg Config) SummaryString() (summary string) {
	summary = "\n"
	summary += fmt.Sprintf("data directory:\t%s\n", cfg.DataDir)
	if cfg.API != nil && cfg.API.Enabled {
		summary += fmt.Sprintf("API address:\t%s\n", cfg.API.Address)
		summary += fmt.Sprintf("read-only:\t%v\n", cfg.API.ReadOnly)
	}
	if cfg.Access != nil {
		summary += fmt.Sprintf("experimental access control:\t%v\n", cfg.Access.ExperimentalAccessControl)
	}
	return summary
}

// ReadFromFile reads a YAML configuration file from path.
func ReadFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if err = yaml.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	cfg := &Config{path: path}
	if rev, ok := fields["revision"]; ok {
		cfg.Revision = (int)(rev.(float64))
	}
	if err = fill.Struct(fields, cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// SetPath assigns the unexported filepath to write the config to.
func (cfg *Config) SetPath(path string) {
	cfg.path = path
}

// Path gives the unexported filepath for a config.
func (cfg Config) Path() string {
	return cfg.path
}

// WriteToFile encodes a configuration to YAML and writes it to path.
func (cfg Config) WriteToFile(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0o644)
}

// Get a config value with case.insensitive.dot.separated.paths.
func (cfg Config) Get(path string) (interface{}, error) {
	return fill.GetPathValue(path, cfg)
}

// Set a config value with case.insensitive.dot.separated.paths.
func (cfg *Config) Set(path string, value interface{}) error {
	return fill.SetPathValue(path, value, cfg)
}

// validate wraps json.Marshal and ValidateBytes; Config.Validate uses it to
// check the whole config against its schema.
func validate(rs *jsonschema.Schema, s interface{}) error {
	ctx := context.Background()
	strct, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling config section to json: %s", err)
	}
	if errs, err := rs.ValidateBytes(ctx, strct); len(errs) > 0 {
		return fmt.Errorf("%s", errs[0])
	} else if err != nil {
		return err
	}
	return nil
}

type validator interface {
	Validate() error
}

// Validate validates each section of the config struct, returning the first
// error.
func (cfg Config) Validate() error {
	schema := jsonschema.Must(`{
    "$schema": "http://json-schema.org/draft-06/schema#",
    "title": "config",
    "description": "cdxserver configuration",
    "type": "object",
    "required": ["DataDir", "API", "CLI"],
    "properties" : {
			"DataDir" : { "type":"string", "minLength": 1 },
			"Access" : { "type":"object" },
			"CLI" : { "type":"object" },
			"API" : { "type":"object" },
			"Logging" : { "type":"object" }
    }
  }`)
	if err := validate(schema, &cfg); err != nil {
		return fmt.Errorf("config validation error: %s", err)
	}

	validators := []validator{cfg.Access, cfg.CLI, cfg.API, cfg.Logging}
	for _, val := range validators {
		// we need to check here because we're potentially calling methods on
		// nil values that don't handle a nil receiver gracefully.
		if !reflect.ValueOf(val).IsNil() {
			if err := val.Validate(); err != nil {
				return err
			}
		}
	}

	return nil
}

// Copy returns a deep copy of the Config struct.
func (cfg *Config) Copy() *Config {
	res := &Config{
		Revision: cfg.Revision,
		DataDir:  cfg.DataDir,
	}
	if cfg.path != "" {
		res.path = cfg.path
	}
	if cfg.Access != nil {
		res.Access = cfg.Access.Copy()
	}
	if cfg.CLI != nil {
		res.CLI = cfg.CLI.Copy()
	}
	if cfg.API != nil {
		res.API = cfg.API.Copy()
	}
	if cfg.Logging != nil {
		res.Logging = cfg.Logging.Copy()
	}
	return res
}
