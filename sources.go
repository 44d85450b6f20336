package cmdparse

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ValueSource supplies fallback values for parameters that received nothing
// on the command line or from their environment variables. Sources are
// consulted in the order given to WithSources; the first hit wins.
type ValueSource interface {
	// Lookup returns the values recorded under a parameter's name.
	Lookup(name string) ([]string, bool)
}

// MapSource is an in-memory ValueSource, mainly useful in tests and for
// programmatic fallbacks.
type MapSource map[string][]string

func (m MapSource) Lookup(name string) ([]string, bool) {
	vals, ok := m[name]
	return vals, ok
}

// fileSource holds the top-level scalar and array values of a decoded config
// document. Keys match parameter names with dashes and underscores
// interchangeable; nested tables are not addressable by a parameter name and
// are skipped.
type fileSource struct {
	values map[string][]string
}

func (s *fileSource) Lookup(name string) ([]string, bool) {
	vals, ok := s.values[sourceKey(name)]
	return vals, ok
}

func sourceKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func newFileSource(raw map[string]interface{}) *fileSource {
	values := make(map[string][]string, len(raw))
	for key, val := range raw {
		switch v := val.(type) {
		case map[string]interface{}:
			continue
		case []interface{}:
			vals := make([]string, len(v))
			for i, item := range v {
				vals[i] = fmt.Sprint(item)
			}
			values[sourceKey(key)] = vals
		default:
			values[sourceKey(key)] = []string{fmt.Sprint(v)}
		}
	}
	return &fileSource{values: values}
}

// TOML returns a ValueSource backed by a TOML document.
func TOML(data []byte) (ValueSource, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return newFileSource(raw), nil
}

// TOMLFile reads path and returns a ValueSource backed by its contents.
func TOMLFile(path string) (ValueSource, error) {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}
	return newFileSource(raw), nil
}

// YAML returns a ValueSource backed by a YAML document.
func YAML(data []byte) (ValueSource, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return newFileSource(raw), nil
}

// YAMLFile reads path and returns a ValueSource backed by its contents.
func YAMLFile(path string) (ValueSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return YAML(data)
}
