// Package cli defines the pforge command tree. Each subcommand lives in
// its own file and registers itself with the root command in init().
package cli
