package importer

import (
	"fmt"
	"strings"
)

const (
	planCreateTemplateConstant        = "create issue %q in %s"
	planLabelsSegmentTemplateConstant = "labels: %s"
	planAssigneesSegmentTemplate      = "assignees: %s"
	planMilestoneSegmentTemplate      = "milestone: %s"
	planDetailsTemplateConstant       = " (%s)"
	planCloseTemplateConstant         = "close issue %q"
	planCloseReasonSuffixTemplate     = " with reason %q"
	planProjectTemplateConstant       = "add issue %q to project %s/#%d"
	planSegmentJoinSeparatorConstant  = "; "
	planListJoinSeparatorConstant     = ", "
)

// ActionPlanner derives the ordered external actions a request resolves to.
type ActionPlanner struct{}

// NewActionPlanner constructs an ActionPlanner instance.
func NewActionPlanner() ActionPlanner {
	return ActionPlanner{}
}

// Plan returns human-readable descriptions of the actions the request implies,
// in execution order: creation, then project addition, then closing.
func (planner ActionPlanner) Plan(repository string, request IssueRequest) []string {
	plannedActions := []string{planner.describeCreation(repository, request)}

	if request.HasProjectTarget() {
		plannedActions = append(plannedActions, fmt.Sprintf(planProjectTemplateConstant, request.Title, request.ProjectOwner, request.ProjectNumber))
	}

	if request.State == IssueStateClosed {
		closeDescription := fmt.Sprintf(planCloseTemplateConstant, request.Title)
		if len(request.CloseReason) > 0 {
			closeDescription += fmt.Sprintf(planCloseReasonSuffixTemplate, request.CloseReason)
		}
		plannedActions = append(plannedActions, closeDescription)
	}

	return plannedActions
}

func (planner ActionPlanner) describeCreation(repository string, request IssueRequest) string {
	creationDescription := fmt.Sprintf(planCreateTemplateConstant, request.Title, repository)

	detailSegments := []string{}
	if len(request.Labels) > 0 {
		detailSegments = append(detailSegments, fmt.Sprintf(planLabelsSegmentTemplateConstant, strings.Join(request.Labels, planListJoinSeparatorConstant)))
	}
	if len(request.Assignees) > 0 {
		detailSegments = append(detailSegments, fmt.Sprintf(planAssigneesSegmentTemplate, strings.Join(request.Assignees, planListJoinSeparatorConstant)))
	}
	if len(request.MilestoneTitle) > 0 {
		detailSegments = append(detailSegments, fmt.Sprintf(planMilestoneSegmentTemplate, request.MilestoneTitle))
	}

	if len(detailSegments) == 0 {
		return creationDescription
	}

	return creationDescription + fmt.Sprintf(planDetailsTemplateConstant, strings.Join(detailSegments, planSegmentJoinSeparatorConstant))
}
