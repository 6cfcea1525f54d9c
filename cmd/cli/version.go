package cli

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const (
	versionUseConstant              = "version"
	versionShortDescriptionConstant = "Print the gh-monitor version"
	versionOutputTemplateConstant   = applicationNameConstant + " version: %s\n"
	develVersionConstant            = "(devel)"
	unknownVersionConstant          = "dev"
)

// Version is stamped at build time with -ldflags "-X github.com/temirov/ghmonitor/cmd/cli.Version=v1.2.3".
var Version string

// VersionResolver reports the version of the running binary.
type VersionResolver func(executionContext context.Context) string

// ResolveVersion prefers the stamped Version, then the module version recorded by go install, then "dev".
func ResolveVersion(context.Context) string {
	if trimmedVersion := strings.TrimSpace(Version); len(trimmedVersion) > 0 {
		return trimmedVersion
	}
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develVersionConstant {
		return unknownVersionConstant
	}
	return moduleVersion
}

// VersionCommandBuilder assembles the version command.
type VersionCommandBuilder struct {
	VersionResolver VersionResolver
}

// Build constructs the version command.
func (builder *VersionCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   versionUseConstant,
		Short: versionShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			resolver := builder.VersionResolver
			if resolver == nil {
				resolver = ResolveVersion
			}
			return writeVersion(command.OutOrStdout(), resolver(command.Context()))
		},
	}, nil
}

func writeVersion(writer io.Writer, version string) error {
	_, writeError := fmt.Fprintf(writer, versionOutputTemplateConstant, version)
	return writeError
}
