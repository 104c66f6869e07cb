package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/ghissues/internal/execshell"
)

const (
	repoSubcommandConstant        = "repo"
	viewSubcommandConstant        = "view"
	issueSubcommandConstant       = "issue"
	closeSubcommandConstant       = "close"
	labelSubcommandConstant       = "label"
	listSubcommandConstant        = "list"
	createSubcommandConstant      = "create"
	projectSubcommandConstant     = "project"
	itemAddSubcommandConstant     = "item-add"
	apiSubcommandConstant         = "api"
	jsonFlagConstant              = "--json"
	repoFlagConstant              = "--repo"
	limitFlagConstant             = "--limit"
	ownerFlagConstant             = "--owner"
	urlFlagConstant               = "--url"
	reasonFlagConstant            = "--reason"
	methodFlagConstant            = "-X"
	inputFlagConstant             = "--input"
	stdinReferenceConstant        = "-"
	acceptHeaderFlagConstant      = "-H"
	acceptHeaderValueConstant     = "Accept: application/vnd.github+json"
	httpMethodPostConstant        = "POST"
	labelListJSONFieldsConstant   = "name"
	labelListLimitValueConstant   = 500
	repoViewJSONFieldsConstant    = "nameWithOwner,description,defaultBranchRef"
	issuesEndpointTemplateConst   = "repos/%s/issues"
	milestonesEndpointTemplate    = "repos/%s/milestones"
	milestonesListQuerySuffix     = "?state=all&per_page=100"
	repositoryFieldNameConstant   = "repository"
	labelNameFieldNameConstant    = "label_name"
	issueTitleFieldNameConstant   = "issue_title"
	issueURLFieldNameConstant     = "issue_url"
	milestoneFieldNameConstant    = "milestone_title"
	projectOwnerFieldNameConstant = "project_owner"
	projectNumberFieldName        = "project_number"
	requiredValueMessageConstant  = "value required"
	positiveValueMessageConstant  = "positive value required"
	executorMissingMessage        = "github cli executor not configured"
)

const (
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// Operation names reported by client errors.
const (
	resolveRepositoryOperationNameConstant = OperationName("ResolveRepoMetadata")
	listLabelsOperationNameConstant        = OperationName("ListLabels")
	createLabelOperationNameConstant       = OperationName("CreateLabel")
	listMilestonesOperationNameConstant    = OperationName("ListMilestones")
	createMilestoneOperationNameConstant   = OperationName("CreateMilestone")
	createIssueOperationNameConstant       = OperationName("CreateIssue")
	closeIssueOperationNameConstant        = OperationName("CloseIssue")
	addIssueToProjectOperationNameConstant = OperationName("AddIssueToProject")
)

// CloseReason enumerates close reasons accepted by gh issue close.
type CloseReason string

// Close reason enumerations.
const (
	CloseReasonCompleted  CloseReason = CloseReason("completed")
	CloseReasonNotPlanned CloseReason = CloseReason("not planned")
)

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	DefaultBranch string
}

// Milestone identifies a repository milestone by title and number.
type Milestone struct {
	Title  string
	Number int
}

// IssueCreationRequest describes the payload for creating one issue.
type IssueCreationRequest struct {
	Title           string
	Body            string
	Labels          []string
	Assignees       []string
	MilestoneNumber int
}

// CreatedIssue captures the identifiers returned for a freshly created issue.
type CreatedIssue struct {
	Number int
	URL    string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessage)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// ResolveRepoMetadata retrieves canonical metadata using gh repo view; an empty
// repository argument resolves the ambient repository context.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	commandArguments := []string{repoSubcommandConstant, viewSubcommandConstant}
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) > 0 {
		commandArguments = append(commandArguments, repositoryIdentifier)
	}
	commandArguments = append(commandArguments, jsonFlagConstant, repoViewJSONFieldsConstant)

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: resolveRepositoryOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		Description      string `json:"description"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: resolveRepositoryOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// ListLabels enumerates existing label names using gh label list.
func (client *Client) ListLabels(executionContext context.Context, repository string) ([]string, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			labelSubcommandConstant,
			listSubcommandConstant,
			repoFlagConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			labelListJSONFieldsConstant,
			limitFlagConstant,
			strconv.Itoa(labelListLimitValueConstant),
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listLabelsOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Name string `json:"name"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listLabelsOperationNameConstant, Cause: decodingError}
	}

	labelNames := make([]string, 0, len(response))
	for _, labelEntry := range response {
		labelNames = append(labelNames, labelEntry.Name)
	}

	return labelNames, nil
}

// CreateLabel creates a repository label using gh label create.
func (client *Client) CreateLabel(executionContext context.Context, repository string, labelName string) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedLabelName := strings.TrimSpace(labelName)
	if len(trimmedLabelName) == 0 {
		return InvalidInputError{FieldName: labelNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			labelSubcommandConstant,
			createSubcommandConstant,
			trimmedLabelName,
			repoFlagConstant,
			repositoryIdentifier,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: createLabelOperationNameConstant, Cause: executionError}
	}

	return nil
}

// ListMilestones retrieves open and closed milestones using gh api.
func (client *Client) ListMilestones(executionContext context.Context, repository string) ([]Milestone, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	milestonesEndpoint := fmt.Sprintf(milestonesEndpointTemplate, repositoryIdentifier) + milestonesListQuerySuffix
	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			milestonesEndpoint,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listMilestonesOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Title  string `json:"title"`
		Number int    `json:"number"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listMilestonesOperationNameConstant, Cause: decodingError}
	}

	milestones := make([]Milestone, 0, len(response))
	for _, milestoneEntry := range response {
		milestones = append(milestones, Milestone{Title: milestoneEntry.Title, Number: milestoneEntry.Number})
	}

	return milestones, nil
}

// CreateMilestone creates a repository milestone using gh api and returns its number.
func (client *Client) CreateMilestone(executionContext context.Context, repository string, milestoneTitle string) (int, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return 0, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedMilestoneTitle := strings.TrimSpace(milestoneTitle)
	if len(trimmedMilestoneTitle) == 0 {
		return 0, InvalidInputError{FieldName: milestoneFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Title string `json:"title"`
	}{Title: trimmedMilestoneTitle}

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return 0, PayloadEncodingError{Operation: createMilestoneOperationNameConstant, Cause: encodingError}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(milestonesEndpointTemplate, repositoryIdentifier),
			methodFlagConstant,
			httpMethodPostConstant,
			inputFlagConstant,
			stdinReferenceConstant,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
		StandardInput: payloadBytes,
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return 0, OperationError{Operation: createMilestoneOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Number int `json:"number"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return 0, ResponseDecodingError{Operation: createMilestoneOperationNameConstant, Cause: decodingError}
	}

	return response.Number, nil
}

// CreateIssue creates an issue using gh api with a JSON payload over stdin.
func (client *Client) CreateIssue(executionContext context.Context, repository string, request IssueCreationRequest) (CreatedIssue, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return CreatedIssue{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedTitle := strings.TrimSpace(request.Title)
	if len(trimmedTitle) == 0 {
		return CreatedIssue{}, InvalidInputError{FieldName: issueTitleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := map[string]any{"title": trimmedTitle}
	if len(request.Body) > 0 {
		payload["body"] = request.Body
	}
	if len(request.Labels) > 0 {
		payload["labels"] = request.Labels
	}
	if len(request.Assignees) > 0 {
		payload["assignees"] = request.Assignees
	}
	if request.MilestoneNumber > 0 {
		payload["milestone"] = request.MilestoneNumber
	}

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return CreatedIssue{}, PayloadEncodingError{Operation: createIssueOperationNameConstant, Cause: encodingError}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(issuesEndpointTemplateConst, repositoryIdentifier),
			methodFlagConstant,
			httpMethodPostConstant,
			inputFlagConstant,
			stdinReferenceConstant,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
		StandardInput: payloadBytes,
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return CreatedIssue{}, OperationError{Operation: createIssueOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return CreatedIssue{}, ResponseDecodingError{Operation: createIssueOperationNameConstant, Cause: decodingError}
	}

	return CreatedIssue{Number: response.Number, URL: response.HTMLURL}, nil
}

// CloseIssue closes an issue using gh issue close, optionally carrying a reason.
func (client *Client) CloseIssue(executionContext context.Context, repository string, issueURL string, closeReason CloseReason) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	trimmedIssueURL := strings.TrimSpace(issueURL)
	if len(trimmedIssueURL) == 0 {
		return InvalidInputError{FieldName: issueURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{
		issueSubcommandConstant,
		closeSubcommandConstant,
		trimmedIssueURL,
		repoFlagConstant,
		repositoryIdentifier,
	}
	if len(closeReason) > 0 {
		commandArguments = append(commandArguments, reasonFlagConstant, string(closeReason))
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return OperationError{Operation: closeIssueOperationNameConstant, Cause: executionError}
	}

	return nil
}

// AddIssueToProject adds an issue to a Projects v2 board using gh project item-add.
func (client *Client) AddIssueToProject(executionContext context.Context, projectOwner string, projectNumber int, issueURL string) error {
	trimmedProjectOwner := strings.TrimSpace(projectOwner)
	if len(trimmedProjectOwner) == 0 {
		return InvalidInputError{FieldName: projectOwnerFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if projectNumber <= 0 {
		return InvalidInputError{FieldName: projectNumberFieldName, Message: positiveValueMessageConstant}
	}

	trimmedIssueURL := strings.TrimSpace(issueURL)
	if len(trimmedIssueURL) == 0 {
		return InvalidInputError{FieldName: issueURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			projectSubcommandConstant,
			itemAddSubcommandConstant,
			strconv.Itoa(projectNumber),
			ownerFlagConstant,
			trimmedProjectOwner,
			urlFlagConstant,
			trimmedIssueURL,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: addIssueToProjectOperationNameConstant, Cause: executionError}
	}

	return nil
}
