package importer

import "time"

const (
	configurationRepositoryKeyConstant       = "repository"
	configurationDryRunKeyConstant           = "dry_run"
	configurationDelayKeyConstant            = "delay"
	configurationCreateLabelsKeyConstant     = "create_labels"
	configurationCreateMilestonesKeyConstant = "create_milestones"
	configurationKeySeparatorConstant        = "."
)

// CommandConfiguration captures persisted defaults for the import command.
type CommandConfiguration struct {
	Repository       string        `mapstructure:"repository"`
	DryRun           bool          `mapstructure:"dry_run"`
	Delay            time.Duration `mapstructure:"delay"`
	CreateLabels     bool          `mapstructure:"create_labels"`
	CreateMilestones bool          `mapstructure:"create_milestones"`
}

// DefaultCommandConfiguration returns baseline configuration values for the import command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repository:       "",
		DryRun:           false,
		Delay:            0,
		CreateLabels:     true,
		CreateMilestones: true,
	}
}

// DefaultConfigurationValues produces Viper defaults for the import command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant:       defaults.Repository,
		rootKey + configurationKeySeparatorConstant + configurationDryRunKeyConstant:           defaults.DryRun,
		rootKey + configurationKeySeparatorConstant + configurationDelayKeyConstant:            defaults.Delay,
		rootKey + configurationKeySeparatorConstant + configurationCreateLabelsKeyConstant:     defaults.CreateLabels,
		rootKey + configurationKeySeparatorConstant + configurationCreateMilestonesKeyConstant: defaults.CreateMilestones,
	}
}
