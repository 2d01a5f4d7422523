// Package config provides configuration loading and validation for the
// fixture generator and the memory monitor. It handles YAML-based
// configuration layered over built-in defaults.
package config
