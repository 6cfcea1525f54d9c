// Package cli constructs the gh-monitor command-line interface: the Cobra root command with its
// configuration and logging flags, and the monitor, sync, and version subcommands.
package cli
