// Package config loads application settings from defaults, an optional YAML
// file and BAIKE_-prefixed environment variables, and validates the result
// before any component is constructed.
package config
