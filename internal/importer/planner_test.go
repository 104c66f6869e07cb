package importer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghissues/internal/importer"
)

const plannerRepositoryConstant = "octo/widgets"

func TestActionPlannerPlan(testInstance *testing.T) {
	testCases := []struct {
		name            string
		request         importer.IssueRequest
		expectedActions []string
	}{
		{
			name:    "bare_request_plans_single_creation",
			request: importer.IssueRequest{Title: "Fix login", State: importer.IssueStateOpen},
			expectedActions: []string{
				`create issue "Fix login" in octo/widgets`,
			},
		},
		{
			name: "creation_details_listed_in_order",
			request: importer.IssueRequest{
				Title:          "Fix login",
				Labels:         []string{"bug", "urgent"},
				Assignees:      []string{"alice"},
				MilestoneTitle: "Sprint 1",
				State:          importer.IssueStateOpen,
			},
			expectedActions: []string{
				`create issue "Fix login" in octo/widgets (labels: bug, urgent; assignees: alice; milestone: Sprint 1)`,
			},
		},
		{
			name: "project_target_adds_follow_up",
			request: importer.IssueRequest{
				Title:         "Fix login",
				ProjectOwner:  "octo-org",
				ProjectNumber: 12,
				State:         importer.IssueStateOpen,
			},
			expectedActions: []string{
				`create issue "Fix login" in octo/widgets`,
				`add issue "Fix login" to project octo-org/#12`,
			},
		},
		{
			name: "closed_state_plans_close_after_project",
			request: importer.IssueRequest{
				Title:         "Fix login",
				ProjectOwner:  "octo-org",
				ProjectNumber: 12,
				State:         importer.IssueStateClosed,
				CloseReason:   "not planned",
			},
			expectedActions: []string{
				`create issue "Fix login" in octo/widgets`,
				`add issue "Fix login" to project octo-org/#12`,
				`close issue "Fix login" with reason "not planned"`,
			},
		},
		{
			name:    "closed_state_without_reason",
			request: importer.IssueRequest{Title: "Fix login", State: importer.IssueStateClosed},
			expectedActions: []string{
				`create issue "Fix login" in octo/widgets`,
				`close issue "Fix login"`,
			},
		},
		{
			name: "half_specified_project_target_ignored",
			request: importer.IssueRequest{
				Title:        "Fix login",
				ProjectOwner: "octo-org",
				State:        importer.IssueStateOpen,
			},
			expectedActions: []string{
				`create issue "Fix login" in octo/widgets`,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			plannedActions := importer.NewActionPlanner().Plan(plannerRepositoryConstant, testCase.request)
			require.Equal(subtestInstance, testCase.expectedActions, plannedActions)
		})
	}
}
