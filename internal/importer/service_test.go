package importer_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghissues/internal/githubcli"
	"github.com/temirov/ghissues/internal/importer"
)

const (
	serviceRepositoryConstant       = "octo/widgets"
	serviceCSVFileNameConstant      = "issues.csv"
	serviceIssueURLTemplateConstant = "https://github.com/octo/widgets/issues/%d"
)

type fakeGitHubOperations struct {
	recordedCalls        []string
	repositoryMetadata   githubcli.RepositoryMetadata
	metadataError        error
	existingLabels       []string
	listLabelsError      error
	existingMilestones   []githubcli.Milestone
	listMilestonesError  error
	createLabelError     error
	createMilestoneError error
	createIssueErrors    map[string]error
	addToProjectError    error
	closeIssueError      error
	nextIssueNumber      int
}

func newFakeGitHubOperations() *fakeGitHubOperations {
	return &fakeGitHubOperations{
		repositoryMetadata: githubcli.RepositoryMetadata{NameWithOwner: serviceRepositoryConstant},
		createIssueErrors:  map[string]error{},
		nextIssueNumber:    100,
	}
}

func (operations *fakeGitHubOperations) ResolveRepoMetadata(_ context.Context, repository string) (githubcli.RepositoryMetadata, error) {
	operations.recordedCalls = append(operations.recordedCalls, fmt.Sprintf("resolve_repo %q", repository))
	return operations.repositoryMetadata, operations.metadataError
}

func (operations *fakeGitHubOperations) ListLabels(_ context.Context, repository string) ([]string, error) {
	operations.recordedCalls = append(operations.recordedCalls, "list_labels "+repository)
	return operations.existingLabels, operations.listLabelsError
}

func (operations *fakeGitHubOperations) CreateLabel(_ context.Context, repository string, labelName string) error {
	operations.recordedCalls = append(operations.recordedCalls, "create_label "+repository+" "+labelName)
	return operations.createLabelError
}

func (operations *fakeGitHubOperations) ListMilestones(_ context.Context, repository string) ([]githubcli.Milestone, error) {
	operations.recordedCalls = append(operations.recordedCalls, "list_milestones "+repository)
	return operations.existingMilestones, operations.listMilestonesError
}

func (operations *fakeGitHubOperations) CreateMilestone(_ context.Context, repository string, milestoneTitle string) (int, error) {
	operations.recordedCalls = append(operations.recordedCalls, "create_milestone "+repository+" "+milestoneTitle)
	if operations.createMilestoneError != nil {
		return 0, operations.createMilestoneError
	}
	return 55, nil
}

func (operations *fakeGitHubOperations) CreateIssue(_ context.Context, repository string, request githubcli.IssueCreationRequest) (githubcli.CreatedIssue, error) {
	operations.recordedCalls = append(operations.recordedCalls, fmt.Sprintf("create_issue %s %q milestone=%d", repository, request.Title, request.MilestoneNumber))
	if creationError, creationFails := operations.createIssueErrors[request.Title]; creationFails {
		return githubcli.CreatedIssue{}, creationError
	}
	operations.nextIssueNumber++
	return githubcli.CreatedIssue{
		Number: operations.nextIssueNumber,
		URL:    fmt.Sprintf(serviceIssueURLTemplateConstant, operations.nextIssueNumber),
	}, nil
}

func (operations *fakeGitHubOperations) CloseIssue(_ context.Context, repository string, issueURL string, closeReason githubcli.CloseReason) error {
	operations.recordedCalls = append(operations.recordedCalls, fmt.Sprintf("close_issue %s %s reason=%q", repository, issueURL, string(closeReason)))
	return operations.closeIssueError
}

func (operations *fakeGitHubOperations) AddIssueToProject(_ context.Context, projectOwner string, projectNumber int, issueURL string) error {
	operations.recordedCalls = append(operations.recordedCalls, fmt.Sprintf("add_to_project %s %d %s", projectOwner, projectNumber, issueURL))
	return operations.addToProjectError
}

func writeCSVFile(testInstance *testing.T, csvContent string) string {
	testInstance.Helper()
	csvPath := filepath.Join(testInstance.TempDir(), serviceCSVFileNameConstant)
	require.NoError(testInstance, os.WriteFile(csvPath, []byte(csvContent), 0o644))
	return csvPath
}

func newTestService(testInstance *testing.T, operations importer.GitHubOperations, outputBuffer *bytes.Buffer) *importer.Service {
	testInstance.Helper()
	importService, creationError := importer.NewService(importer.ServiceDependencies{
		GitHubOperations: operations,
		Reporter:         importer.NewWriterReporter(outputBuffer),
	})
	require.NoError(testInstance, creationError)
	return importService
}

func TestNewServiceRequiresGitHubOperations(testInstance *testing.T) {
	_, creationError := importer.NewService(importer.ServiceDependencies{})
	require.Error(testInstance, creationError)
	require.Contains(testInstance, creationError.Error(), "github operations not configured")
}

func TestServiceRunDryRunScenario(testInstance *testing.T) {
	csvContent := "title,body,labels\n" +
		"Fix login,Broken since v2,\n" +
		",orphan body,\n" +
		"Speed up search,,bug;urgent\n"

	operations := newFakeGitHubOperations()
	operations.existingLabels = []string{"bug"}

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:          writeCSVFile(testInstance, csvContent),
		Repository:       serviceRepositoryConstant,
		DryRun:           true,
		CreateLabels:     true,
		CreateMilestones: true,
	})

	require.NoError(testInstance, runError)
	require.True(testInstance, summary.DryRun)
	require.Equal(testInstance, 2, summary.Succeeded)
	require.Equal(testInstance, 1, summary.Failed)
	require.Len(testInstance, summary.Outcomes, 3)
	require.Equal(testInstance, importer.RowStatusPreviewed, summary.Outcomes[0].Status)
	require.Equal(testInstance, importer.RowStatusFailed, summary.Outcomes[1].Status)
	require.Equal(testInstance, importer.RowStatusPreviewed, summary.Outcomes[2].Status)

	require.Equal(testInstance, []string{"list_labels " + serviceRepositoryConstant}, operations.recordedCalls)

	reportedOutput := outputBuffer.String()
	require.Contains(testInstance, reportedOutput, `DRY-RUN: would create label "urgent" in octo/widgets`)
	require.Contains(testInstance, reportedOutput, `DRY-RUN row 1: create issue "Fix login" in octo/widgets`)
	require.Contains(testInstance, reportedOutput, "row 2 skipped: missing title")
	require.Contains(testInstance, reportedOutput, `DRY-RUN row 3: create issue "Speed up search" in octo/widgets (labels: bug, urgent)`)
	require.Contains(testInstance, reportedOutput, "Summary: 2 succeeded (dry-run), 1 failed")
}

func TestServiceRunLiveFullRow(testInstance *testing.T) {
	csvContent := "title,labels,milestone,project_owner,project_number,state,close_reason\n" +
		"Fix login,bug,Sprint 1,octo-org,12,closed,not planned\n"

	operations := newFakeGitHubOperations()
	operations.existingLabels = []string{"bug"}
	operations.existingMilestones = []githubcli.Milestone{{Title: "sprint 1", Number: 3}}

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:          writeCSVFile(testInstance, csvContent),
		Repository:       serviceRepositoryConstant,
		CreateLabels:     true,
		CreateMilestones: true,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(testInstance, 0, summary.Failed)
	require.Equal(testInstance, importer.RowStatusCreated, summary.Outcomes[0].Status)
	require.Equal(testInstance, 101, summary.Outcomes[0].IssueNumber)

	expectedIssueURL := fmt.Sprintf(serviceIssueURLTemplateConstant, 101)
	require.Equal(
		testInstance,
		[]string{
			"list_labels " + serviceRepositoryConstant,
			"list_milestones " + serviceRepositoryConstant,
			`create_issue octo/widgets "Fix login" milestone=3`,
			"add_to_project octo-org 12 " + expectedIssueURL,
			fmt.Sprintf("close_issue %s %s reason=%q", serviceRepositoryConstant, expectedIssueURL, "not planned"),
		},
		operations.recordedCalls,
	)

	reportedOutput := outputBuffer.String()
	require.Contains(testInstance, reportedOutput, "row 1: created issue #101 "+expectedIssueURL)
	require.Contains(testInstance, reportedOutput, "Summary: 1 succeeded, 0 failed")
}

func TestServiceRunCreatesMissingMilestone(testInstance *testing.T) {
	csvContent := "title,milestone\nFix login,Sprint 9\n"

	operations := newFakeGitHubOperations()

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:          writeCSVFile(testInstance, csvContent),
		Repository:       serviceRepositoryConstant,
		CreateLabels:     true,
		CreateMilestones: true,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(
		testInstance,
		[]string{
			"list_milestones " + serviceRepositoryConstant,
			"create_milestone octo/widgets Sprint 9",
			`create_issue octo/widgets "Fix login" milestone=55`,
		},
		operations.recordedCalls,
	)
}

func TestServiceRunMilestoneCreationDisabled(testInstance *testing.T) {
	csvContent := "title,milestone\nFix login,Sprint 9\n"

	operations := newFakeGitHubOperations()

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:      writeCSVFile(testInstance, csvContent),
		Repository:   serviceRepositoryConstant,
		CreateLabels: true,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(
		testInstance,
		[]string{
			"list_milestones " + serviceRepositoryConstant,
			`create_issue octo/widgets "Fix login" milestone=0`,
		},
		operations.recordedCalls,
	)
	require.Contains(testInstance, outputBuffer.String(), `milestone "Sprint 9" missing; creation disabled, importing without it`)
}

func TestServiceRunIsolatesRowFailures(testInstance *testing.T) {
	csvContent := "title\nFirst task\nSecond task\n"

	operations := newFakeGitHubOperations()
	operations.createIssueErrors["First task"] = errors.New("gh: HTTP 502")

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:    writeCSVFile(testInstance, csvContent),
		Repository: serviceRepositoryConstant,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(testInstance, 1, summary.Failed)
	require.Equal(testInstance, importer.RowStatusFailed, summary.Outcomes[0].Status)
	require.Equal(testInstance, "gh: HTTP 502", summary.Outcomes[0].ErrorMessage)
	require.Equal(testInstance, importer.RowStatusCreated, summary.Outcomes[1].Status)

	reportedOutput := outputBuffer.String()
	require.Contains(testInstance, reportedOutput, `row 1 ("First task") failed: gh: HTTP 502`)
	require.Contains(testInstance, reportedOutput, "Summary: 1 succeeded, 1 failed")
}

func TestServiceRunProjectFailureMarksRowFailed(testInstance *testing.T) {
	csvContent := "title,project_owner,project_number\nFix login,octo-org,12\n"

	operations := newFakeGitHubOperations()
	operations.addToProjectError = errors.New("project not found")

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:    writeCSVFile(testInstance, csvContent),
		Repository: serviceRepositoryConstant,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 0, summary.Succeeded)
	require.Equal(testInstance, 1, summary.Failed)
	require.Equal(testInstance, importer.RowStatusFailed, summary.Outcomes[0].Status)
	require.Equal(testInstance, 101, summary.Outcomes[0].IssueNumber)
}

func TestServiceRunResolvesAmbientRepository(testInstance *testing.T) {
	csvContent := "title\nFix login\n"

	operations := newFakeGitHubOperations()

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath: writeCSVFile(testInstance, csvContent),
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Equal(
		testInstance,
		[]string{
			`resolve_repo ""`,
			`create_issue octo/widgets "Fix login" milestone=0`,
		},
		operations.recordedCalls,
	)
}

func TestServiceRunSetupFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		prepare       func(subtestInstance *testing.T, operations *fakeGitHubOperations) importer.ImportOptions
		expectedError string
	}{
		{
			name: "missing_csv_file_is_fatal",
			prepare: func(subtestInstance *testing.T, operations *fakeGitHubOperations) importer.ImportOptions {
				return importer.ImportOptions{
					CSVPath:    filepath.Join(subtestInstance.TempDir(), "absent.csv"),
					Repository: serviceRepositoryConstant,
				}
			},
			expectedError: "unable to open CSV file",
		},
		{
			name: "repository_resolution_failure_is_fatal",
			prepare: func(subtestInstance *testing.T, operations *fakeGitHubOperations) importer.ImportOptions {
				operations.metadataError = errors.New("gh: not a repository")
				return importer.ImportOptions{
					CSVPath: writeCSVFile(subtestInstance, "title\nFix login\n"),
				}
			},
			expectedError: "unable to resolve target repository",
		},
		{
			name: "missing_title_column_is_fatal",
			prepare: func(subtestInstance *testing.T, operations *fakeGitHubOperations) importer.ImportOptions {
				return importer.ImportOptions{
					CSVPath:    writeCSVFile(subtestInstance, "body,labels\nsome body,bug\n"),
					Repository: serviceRepositoryConstant,
				}
			},
			expectedError: "CSV header has no title column",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			operations := newFakeGitHubOperations()
			outputBuffer := &bytes.Buffer{}
			importService := newTestService(subtestInstance, operations, outputBuffer)

			options := testCase.prepare(subtestInstance, operations)
			_, runError := importService.Run(context.Background(), options)

			require.Error(subtestInstance, runError)
			require.Contains(subtestInstance, runError.Error(), testCase.expectedError)
		})
	}
}

func TestServiceRunLabelListFailureDegradesToWarning(testInstance *testing.T) {
	csvContent := "title,labels\nFix login,bug\n"

	operations := newFakeGitHubOperations()
	operations.listLabelsError = errors.New("gh: HTTP 500")

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:      writeCSVFile(testInstance, csvContent),
		Repository:   serviceRepositoryConstant,
		CreateLabels: true,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Succeeded)
	require.Contains(testInstance, outputBuffer.String(), "WARN: unable to list existing labels: gh: HTTP 500")
}

func TestServiceRunEmptyCSVReportsNoRows(testInstance *testing.T) {
	operations := newFakeGitHubOperations()

	outputBuffer := &bytes.Buffer{}
	importService := newTestService(testInstance, operations, outputBuffer)

	summary, runError := importService.Run(context.Background(), importer.ImportOptions{
		CSVPath:    writeCSVFile(testInstance, "title\n"),
		Repository: serviceRepositoryConstant,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 0, summary.Succeeded)
	require.Equal(testInstance, 0, summary.Failed)
	require.Empty(testInstance, operations.recordedCalls)
	require.True(testInstance, strings.Contains(outputBuffer.String(), "No rows found in CSV."))
}
