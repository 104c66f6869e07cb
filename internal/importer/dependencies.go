package importer

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/ghissues/internal/execshell"
	"github.com/temirov/ghissues/internal/githubcli"
)

// GitHubOperations exposes the GitHub CLI capability set the importer consumes.
type GitHubOperations interface {
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	ListLabels(executionContext context.Context, repository string) ([]string, error)
	CreateLabel(executionContext context.Context, repository string, labelName string) error
	ListMilestones(executionContext context.Context, repository string) ([]githubcli.Milestone, error)
	CreateMilestone(executionContext context.Context, repository string, milestoneTitle string) (int, error)
	CreateIssue(executionContext context.Context, repository string, request githubcli.IssueCreationRequest) (githubcli.CreatedIssue, error)
	CloseIssue(executionContext context.Context, repository string, issueURL string, closeReason githubcli.CloseReason) error
	AddIssueToProject(executionContext context.Context, projectOwner string, projectNumber int, issueURL string) error
}

// Reporter emits formatted per-row progress and the final tally to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil || writer == io.Discard {
		writer = os.Stdout
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	fmt.Fprintf(reporter.writer, format, args...)
}

// ResolveGitHubOperations returns the provided operations or constructs a GitHub CLI-backed default.
func ResolveGitHubOperations(existing GitHubOperations, logger *zap.Logger, eventObserver execshell.CommandEventObserver) (GitHubOperations, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, executorCreationError := execshell.NewShellExecutor(logger, commandRunner, eventObserver)
	if executorCreationError != nil {
		return nil, executorCreationError
	}

	return githubcli.NewClient(shellExecutor)
}
