// Package config manages persistent CLI configuration stored under the
// user's home directory, with environment-variable overrides.
package config
