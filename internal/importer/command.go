package importer

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghissues/internal/execshell"
	"github.com/temirov/ghissues/internal/utils"
	"github.com/temirov/ghissues/internal/utils/flags"
)

const (
	commandUseConstant           = "import"
	commandShortDescription      = "Create GitHub issues from a CSV file"
	commandLongDescription       = "Reads issue definitions from a CSV file and creates them in a GitHub repository via the gh CLI, one row at a time."
	csvFlagNameConstant          = "csv"
	csvFlagUsageConstant         = "path to the CSV file describing the issues"
	repoFlagNameConstant         = "repo"
	repoFlagUsageConstant        = "target repository in OWNER/REPO form (defaults to the current directory's repository)"
	dryRunFlagNameConstant       = "dry-run"
	dryRunFlagUsageConstant      = "preview the actions without creating anything"
	delayFlagNameConstant        = "delay"
	delayFlagUsageConstant       = "pause between issue creations"
	createLabelsFlagName         = "create-labels"
	createLabelsFlagUsage        = "create referenced labels that do not exist yet"
	createMilestonesFlagName     = "create-milestones"
	createMilestonesFlagUsage    = "create referenced milestones that do not exist yet"
	emptyFlagShorthandConstant   = ""
	defaultCSVFlagValueConstant  = ""
	defaultRepoFlagValueConstant = ""
)

// CommandBuilder assembles the import command with its dependencies.
type CommandBuilder struct {
	LoggerProvider                func() *zap.Logger
	ConfigurationProvider         func() CommandConfiguration
	GitHubOperations              GitHubOperations
	CommandEventsObserverProvider func() execshell.CommandEventObserver
}

// Build constructs the cobra command that performs the CSV import.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	var (
		dryRunFlagValue           bool
		createLabelsFlagValue     bool
		createMilestonesFlagValue bool
	)

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := builder.resolveConfiguration()
			csvPath, _ := command.Flags().GetString(csvFlagNameConstant)
			options := ImportOptions{
				CSVPath:          csvPath,
				Repository:       configuration.Repository,
				DryRun:           configuration.DryRun,
				Delay:            configuration.Delay,
				CreateLabels:     configuration.CreateLabels,
				CreateMilestones: configuration.CreateMilestones,
			}

			if command.Flags().Changed(repoFlagNameConstant) {
				options.Repository, _ = command.Flags().GetString(repoFlagNameConstant)
			}
			if command.Flags().Changed(delayFlagNameConstant) {
				options.Delay, _ = command.Flags().GetDuration(delayFlagNameConstant)
			}
			if command.Flags().Changed(dryRunFlagNameConstant) {
				options.DryRun = dryRunFlagValue
			}
			if command.Flags().Changed(createLabelsFlagName) {
				options.CreateLabels = createLabelsFlagValue
			}
			if command.Flags().Changed(createMilestonesFlagName) {
				options.CreateMilestones = createMilestonesFlagValue
			}

			logger := builder.resolveLogger()
			githubOperations, resolutionError := ResolveGitHubOperations(builder.GitHubOperations, logger, builder.resolveCommandEventsObserver())
			if resolutionError != nil {
				return resolutionError
			}

			importService, serviceCreationError := NewService(ServiceDependencies{
				Logger:           logger,
				GitHubOperations: githubOperations,
				Reporter:         NewWriterReporter(utils.NewFlushingWriter(command.OutOrStdout())),
			})
			if serviceCreationError != nil {
				return serviceCreationError
			}

			_, runError := importService.Run(command.Context(), options)
			return runError
		},
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(csvFlagNameConstant, defaultCSVFlagValueConstant, csvFlagUsageConstant)
	command.Flags().String(repoFlagNameConstant, defaultRepoFlagValueConstant, repoFlagUsageConstant)
	command.Flags().Duration(delayFlagNameConstant, defaults.Delay, delayFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &dryRunFlagValue, dryRunFlagNameConstant, emptyFlagShorthandConstant, defaults.DryRun, dryRunFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &createLabelsFlagValue, createLabelsFlagName, emptyFlagShorthandConstant, defaults.CreateLabels, createLabelsFlagUsage)
	flags.AddToggleFlag(command.Flags(), &createMilestonesFlagValue, createMilestonesFlagName, emptyFlagShorthandConstant, defaults.CreateMilestones, createMilestonesFlagUsage)

	if markError := command.MarkFlagRequired(csvFlagNameConstant); markError != nil {
		return nil, markError
	}

	return command, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveCommandEventsObserver() execshell.CommandEventObserver {
	if builder.CommandEventsObserverProvider == nil {
		return nil
	}
	return builder.CommandEventsObserverProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
