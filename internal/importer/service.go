package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ghissues/internal/githubcli"
)

const (
	githubOperationsMissingMessageConstant = "github operations not configured"
	csvOpenErrorTemplateConstant           = "unable to open CSV file: %w"
	repositoryResolveErrorTemplate         = "unable to resolve target repository: %w"
	repositoryEmptyMessageConstant         = "target repository could not be determined; pass --repo"
	noRowsMessageConstant                  = "No rows found in CSV.\n"
	dryRunActionTemplateConstant           = "DRY-RUN row %d: %s\n"
	dryRunLabelTemplateConstant            = "DRY-RUN: would create label %q in %s\n"
	dryRunMilestoneTemplateConstant        = "DRY-RUN: would create milestone %q in %s\n"
	rowSkippedTemplateConstant             = "row %d skipped: %s\n"
	rowCreatedTemplateConstant             = "row %d: created issue #%d %s\n"
	rowFailedTemplateConstant              = "row %d (%q) failed: %s\n"
	labelCreationWarningTemplateConstant   = "WARN: failed to create label %q: %s\n"
	labelListWarningTemplateConstant       = "WARN: unable to list existing labels: %s\n"
	milestoneSkippedTemplateConstant       = "milestone %q missing; creation disabled, importing without it\n"
	summaryDryRunTemplateConstant          = "Summary: %d succeeded (dry-run), %d failed\n"
	summaryLiveTemplateConstant            = "Summary: %d succeeded, %d failed\n"
	rowSkippedLogMessageConstant           = "row skipped"
	rowFailedLogMessageConstant            = "row failed"
	importCompletedLogMessageConstant      = "import completed"
	logFieldRowNumberConstant              = "row_number"
	logFieldIssueTitleConstant             = "issue_title"
	logFieldFailureConstant                = "failure"
	logFieldSucceededCountConstant         = "succeeded_count"
	logFieldFailedCountConstant            = "failed_count"
	logFieldDryRunConstant                 = "dry_run"
)

var errGitHubOperationsMissing = errors.New(githubOperationsMissingMessageConstant)

// ServiceDependencies describes required collaborators for the import service.
type ServiceDependencies struct {
	Logger           *zap.Logger
	GitHubOperations GitHubOperations
	Reporter         Reporter
}

// Service orchestrates the sequential CSV import workflow.
type Service struct {
	logger          *zap.Logger
	github          GitHubOperations
	reporter        Reporter
	rowParser       RowParser
	actionPlanner   ActionPlanner
	delayBetweenRow func(time.Duration)
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitHubOperations == nil {
		return nil, errGitHubOperationsMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = NewWriterReporter(os.Stdout)
	}

	return &Service{
		logger:          logger,
		github:          dependencies.GitHubOperations,
		reporter:        reporter,
		rowParser:       NewRowParser(),
		actionPlanner:   NewActionPlanner(),
		delayBetweenRow: time.Sleep,
	}, nil
}

// Run executes the import described by options and returns the aggregated
// summary. Only setup failures produce an error; per-row failures are
// captured on the summary and never abort subsequent rows.
func (service *Service) Run(executionContext context.Context, options ImportOptions) (ImportSummary, error) {
	csvFile, openError := os.Open(options.CSVPath)
	if openError != nil {
		return ImportSummary{}, fmt.Errorf(csvOpenErrorTemplateConstant, openError)
	}
	defer csvFile.Close()

	rowRecords, parseError := service.rowParser.ParseRows(csvFile)
	if parseError != nil {
		return ImportSummary{}, parseError
	}

	repository, repositoryError := service.resolveRepository(executionContext, options.Repository)
	if repositoryError != nil {
		return ImportSummary{}, repositoryError
	}

	summary := ImportSummary{DryRun: options.DryRun}
	if len(rowRecords) == 0 {
		service.reporter.Printf(noRowsMessageConstant)
		return summary, nil
	}

	if options.CreateLabels {
		service.ensureLabels(executionContext, repository, rowRecords, options.DryRun)
	}

	milestoneResolver := newMilestoneResolver(service, repository, options)

	for _, rowRecord := range rowRecords {
		outcome := service.processRow(executionContext, repository, rowRecord, options, milestoneResolver)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Status == RowStatusFailed {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if !options.DryRun && options.Delay > 0 {
			service.delayBetweenRow(options.Delay)
		}
	}

	summaryTemplate := summaryLiveTemplateConstant
	if options.DryRun {
		summaryTemplate = summaryDryRunTemplateConstant
	}
	service.reporter.Printf(summaryTemplate, summary.Succeeded, summary.Failed)
	service.logger.Info(
		importCompletedLogMessageConstant,
		zap.Int(logFieldSucceededCountConstant, summary.Succeeded),
		zap.Int(logFieldFailedCountConstant, summary.Failed),
		zap.Bool(logFieldDryRunConstant, summary.DryRun),
	)

	return summary, nil
}

func (service *Service) resolveRepository(executionContext context.Context, configuredRepository string) (string, error) {
	trimmedRepository := strings.TrimSpace(configuredRepository)
	if len(trimmedRepository) > 0 {
		return trimmedRepository, nil
	}

	repositoryMetadata, metadataError := service.github.ResolveRepoMetadata(executionContext, "")
	if metadataError != nil {
		return "", fmt.Errorf(repositoryResolveErrorTemplate, metadataError)
	}

	resolvedRepository := strings.TrimSpace(repositoryMetadata.NameWithOwner)
	if len(resolvedRepository) == 0 {
		return "", errors.New(repositoryEmptyMessageConstant)
	}

	return resolvedRepository, nil
}

// ensureLabels creates the labels referenced by valid rows that do not yet
// exist. Failures here only degrade the import, so they warn and continue.
func (service *Service) ensureLabels(executionContext context.Context, repository string, rowRecords []RowRecord, dryRun bool) {
	requestedLabels := map[string]string{}
	for _, rowRecord := range rowRecords {
		if rowRecord.ValidationError != nil {
			continue
		}
		for _, labelName := range rowRecord.Request.Labels {
			requestedLabels[strings.ToLower(labelName)] = labelName
		}
	}

	if len(requestedLabels) == 0 {
		return
	}

	existingLabels, listError := service.github.ListLabels(executionContext, repository)
	if listError != nil {
		service.reporter.Printf(labelListWarningTemplateConstant, listError)
		return
	}

	existingLabelSet := map[string]struct{}{}
	for _, existingLabel := range existingLabels {
		existingLabelSet[strings.ToLower(existingLabel)] = struct{}{}
	}

	missingLabelKeys := []string{}
	for labelKey := range requestedLabels {
		if _, labelExists := existingLabelSet[labelKey]; !labelExists {
			missingLabelKeys = append(missingLabelKeys, labelKey)
		}
	}
	sort.Strings(missingLabelKeys)

	for _, labelKey := range missingLabelKeys {
		labelName := requestedLabels[labelKey]
		if dryRun {
			service.reporter.Printf(dryRunLabelTemplateConstant, labelName, repository)
			continue
		}
		if creationError := service.github.CreateLabel(executionContext, repository, labelName); creationError != nil {
			service.reporter.Printf(labelCreationWarningTemplateConstant, labelName, creationError)
		}
	}
}

func (service *Service) processRow(executionContext context.Context, repository string, rowRecord RowRecord, options ImportOptions, milestoneResolver *milestoneResolver) RowOutcome {
	outcome := RowOutcome{RowNumber: rowRecord.RowNumber, Title: rowRecord.Request.Title}

	if rowRecord.ValidationError != nil {
		outcome.Status = RowStatusFailed
		outcome.ErrorMessage = rowRecord.ValidationError.Message
		service.reporter.Printf(rowSkippedTemplateConstant, rowRecord.RowNumber, rowRecord.ValidationError.Message)
		service.logger.Warn(
			rowSkippedLogMessageConstant,
			zap.Int(logFieldRowNumberConstant, rowRecord.RowNumber),
			zap.String(logFieldFailureConstant, rowRecord.ValidationError.Message),
		)
		return outcome
	}

	if options.DryRun {
		if previewError := milestoneResolver.preview(executionContext, rowRecord.Request.MilestoneTitle); previewError != nil {
			return service.failRow(outcome, previewError)
		}
		for _, plannedAction := range service.actionPlanner.Plan(repository, rowRecord.Request) {
			service.reporter.Printf(dryRunActionTemplateConstant, rowRecord.RowNumber, plannedAction)
		}
		outcome.Status = RowStatusPreviewed
		return outcome
	}

	return service.executeRow(executionContext, repository, rowRecord, milestoneResolver, outcome)
}

func (service *Service) executeRow(executionContext context.Context, repository string, rowRecord RowRecord, milestoneResolver *milestoneResolver, outcome RowOutcome) RowOutcome {
	milestoneNumber, milestoneError := milestoneResolver.resolve(executionContext, rowRecord.Request.MilestoneTitle)
	if milestoneError != nil {
		return service.failRow(outcome, milestoneError)
	}

	createdIssue, creationError := service.github.CreateIssue(executionContext, repository, githubcli.IssueCreationRequest{
		Title:           rowRecord.Request.Title,
		Body:            rowRecord.Request.Body,
		Labels:          rowRecord.Request.Labels,
		Assignees:       rowRecord.Request.Assignees,
		MilestoneNumber: milestoneNumber,
	})
	if creationError != nil {
		return service.failRow(outcome, creationError)
	}

	outcome.IssueNumber = createdIssue.Number
	outcome.IssueURL = createdIssue.URL

	if rowRecord.Request.HasProjectTarget() {
		projectError := service.github.AddIssueToProject(executionContext, rowRecord.Request.ProjectOwner, rowRecord.Request.ProjectNumber, createdIssue.URL)
		if projectError != nil {
			return service.failRow(outcome, projectError)
		}
	}

	if rowRecord.Request.State == IssueStateClosed {
		closeError := service.github.CloseIssue(executionContext, repository, createdIssue.URL, githubcli.CloseReason(rowRecord.Request.CloseReason))
		if closeError != nil {
			return service.failRow(outcome, closeError)
		}
	}

	outcome.Status = RowStatusCreated
	service.reporter.Printf(rowCreatedTemplateConstant, outcome.RowNumber, createdIssue.Number, createdIssue.URL)
	return outcome
}

func (service *Service) failRow(outcome RowOutcome, failure error) RowOutcome {
	outcome.Status = RowStatusFailed
	outcome.ErrorMessage = failure.Error()
	service.reporter.Printf(rowFailedTemplateConstant, outcome.RowNumber, outcome.Title, failure)
	service.logger.Error(
		rowFailedLogMessageConstant,
		zap.Int(logFieldRowNumberConstant, outcome.RowNumber),
		zap.String(logFieldIssueTitleConstant, outcome.Title),
		zap.Error(failure),
	)
	return outcome
}

// milestoneResolver maps milestone titles to numbers, listing repository
// milestones at most once per run and creating missing ones when allowed.
type milestoneResolver struct {
	service          *Service
	repository       string
	dryRun           bool
	createMilestones bool
	cacheLoaded      bool
	milestonesByKey  map[string]int
	previewedTitles  map[string]struct{}
}

func newMilestoneResolver(service *Service, repository string, options ImportOptions) *milestoneResolver {
	return &milestoneResolver{
		service:          service,
		repository:       repository,
		dryRun:           options.DryRun,
		createMilestones: options.CreateMilestones,
		milestonesByKey:  map[string]int{},
		previewedTitles:  map[string]struct{}{},
	}
}

func (resolver *milestoneResolver) resolve(executionContext context.Context, milestoneTitle string) (int, error) {
	trimmedTitle := strings.TrimSpace(milestoneTitle)
	if len(trimmedTitle) == 0 {
		return 0, nil
	}

	if loadError := resolver.loadCache(executionContext); loadError != nil {
		return 0, loadError
	}

	milestoneKey := strings.ToLower(trimmedTitle)
	if milestoneNumber, milestoneKnown := resolver.milestonesByKey[milestoneKey]; milestoneKnown {
		return milestoneNumber, nil
	}

	if !resolver.createMilestones {
		resolver.service.reporter.Printf(milestoneSkippedTemplateConstant, trimmedTitle)
		return 0, nil
	}

	createdNumber, creationError := resolver.service.github.CreateMilestone(executionContext, resolver.repository, trimmedTitle)
	if creationError != nil {
		return 0, creationError
	}

	resolver.milestonesByKey[milestoneKey] = createdNumber
	return createdNumber, nil
}

// preview mirrors resolve for dry runs: it reads the milestone list but only
// announces the creations it would perform.
func (resolver *milestoneResolver) preview(executionContext context.Context, milestoneTitle string) error {
	trimmedTitle := strings.TrimSpace(milestoneTitle)
	if len(trimmedTitle) == 0 {
		return nil
	}

	if loadError := resolver.loadCache(executionContext); loadError != nil {
		return loadError
	}

	milestoneKey := strings.ToLower(trimmedTitle)
	if _, milestoneKnown := resolver.milestonesByKey[milestoneKey]; milestoneKnown {
		return nil
	}
	if !resolver.createMilestones {
		resolver.service.reporter.Printf(milestoneSkippedTemplateConstant, trimmedTitle)
		return nil
	}
	if _, alreadyPreviewed := resolver.previewedTitles[milestoneKey]; alreadyPreviewed {
		return nil
	}

	resolver.previewedTitles[milestoneKey] = struct{}{}
	resolver.service.reporter.Printf(dryRunMilestoneTemplateConstant, trimmedTitle, resolver.repository)
	return nil
}

func (resolver *milestoneResolver) loadCache(executionContext context.Context) error {
	if resolver.cacheLoaded {
		return nil
	}

	milestones, listError := resolver.service.github.ListMilestones(executionContext, resolver.repository)
	if listError != nil {
		return listError
	}

	for _, milestone := range milestones {
		resolver.milestonesByKey[strings.ToLower(milestone.Title)] = milestone.Number
	}
	resolver.cacheLoaded = true
	return nil
}
