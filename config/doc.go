// Package config loads shield policy configuration from YAML files and
// environment variables, validates it, and builds the corresponding
// policy objects.
package config
