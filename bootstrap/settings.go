package bootstrap

import (
	"fmt"
	"maps"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names.
const (
	EnvProd = "prod"
	EnvTest = "test"
	EnvDev  = "dev"
)

// EnvVar is the environment variable naming the active environment.
const EnvVar = "OC_ENV"

// Settings holds one settings tree per environment name. The prod tree is
// the base every other environment is merged over.
//
//	prod:
//	  db:
//	    host: db.internal
//	    pool: 20
//	dev:
//	  db:
//	    host: localhost
type Settings map[string]map[string]any

// LoadSettings reads Settings from a YAML file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	return ParseSettings(data)
}

// ParseSettings decodes Settings from YAML.
func ParseSettings(data []byte) (Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	if settings == nil {
		settings = Settings{}
	}
	return settings, nil
}

// EnvironmentFromDotenv loads the given .env files (".env" by default) into
// the process environment and returns the value of OC_ENV, or prod when
// unset. Missing files are not an error; variables already set in the
// process environment win over file values.
func EnvironmentFromDotenv(files ...string) string {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		_ = godotenv.Load(file)
	}

	if env := os.Getenv(EnvVar); env != "" {
		return env
	}
	return EnvProd
}

// ForEnvironment returns the settings for env: the prod tree with the env
// tree deep-merged over it. Neither source tree is modified.
func (s Settings) ForEnvironment(env string) map[string]any {
	result := cloneTree(s[EnvProd])
	if env != EnvProd {
		mergeTree(result, s[env])
	}
	return result
}

// mergeTree merges src into dst. Nested maps merge key by key; any other
// value in src replaces the one in dst.
func mergeTree(dst, src map[string]any) {
	for key, value := range src {
		srcNode, srcIsNode := value.(map[string]any)
		dstNode, dstIsNode := dst[key].(map[string]any)

		switch {
		case srcIsNode && dstIsNode:
			mergeTree(dstNode, srcNode)
		case srcIsNode:
			dst[key] = cloneTree(srcNode)
		default:
			dst[key] = value
		}
	}
}

func cloneTree(src map[string]any) map[string]any {
	dst := maps.Clone(src)
	if dst == nil {
		return make(map[string]any)
	}

	for key, value := range dst {
		if node, ok := value.(map[string]any); ok {
			dst[key] = cloneTree(node)
		}
	}
	return dst
}
