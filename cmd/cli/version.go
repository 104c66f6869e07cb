package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const (
	versionCommandUseConstant       = "version"
	versionCommandShortConstant     = "Print the ghissues version"
	versionOutputTemplateConstant   = "%s %s\n"
	versionFallbackConstant         = "dev"
	versionDevelModuleValueConstant = "(devel)"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, resolveBuildVersion())
			return nil
		},
	}
}

// resolveBuildVersion reads the module version stamped at build time, falling
// back to a development marker for local builds.
func resolveBuildVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return versionFallbackConstant
	}

	moduleVersion := buildInfo.Main.Version
	if len(moduleVersion) == 0 || moduleVersion == versionDevelModuleValueConstant {
		return versionFallbackConstant
	}

	return moduleVersion
}
