package memstore

import (
	"time"

	"github.com/devnexus/devnexus/internal/model"
)

// DevUsername is the username of the seeded development account.
const DevUsername = "developer"

// NewSeeded creates a store pre-populated with demo data so the API is
// usable without a database. passwordHash is the credential hash for
// the seeded development account.
func NewSeeded(passwordHash string) *Store {
	s := New()
	now := time.Now().UTC()

	s.AddUser(&model.User{
		ID:            "user-001",
		Username:      DevUsername,
		Email:         "developer@devnexus.local",
		DisplayName:   "Local Developer",
		Role:          model.RoleDeveloper,
		PasswordHash:  passwordHash,
		Permissions:   []string{"projects.read", "pipelines.run", "workitems.write"},
		CreatedDate:   now.AddDate(0, -6, 0),
		LastLoginDate: now.Add(-24 * time.Hour),
		IsActive:      true,
	})

	s.AddProject(&model.Project{
		ID:             "proj-001",
		Name:           "E-Commerce Platform",
		Description:    "Main e-commerce application with microservices architecture",
		URL:            "https://dev.azure.com/company/ecommerce-platform",
		State:          model.ProjectStateActive,
		Visibility:     "Private",
		LastUpdateTime: now.Add(-2 * time.Hour),
		DefaultTeam: model.Team{
			ID:          "team-001",
			Name:        "E-Commerce Team",
			Description: "Core development team",
		},
		RepositoryCount: 1,
		PipelineCount:   2,
		WorkItemCount:   2,
	})
	s.AddProject(&model.Project{
		ID:             "proj-002",
		Name:           "Mobile App",
		Description:    "Cross-platform mobile application",
		URL:            "https://dev.azure.com/company/mobile-app",
		State:          model.ProjectStateActive,
		Visibility:     "Private",
		LastUpdateTime: now.Add(-26 * time.Hour),
		DefaultTeam: model.Team{
			ID:          "team-002",
			Name:        "Mobile Team",
			Description: "Mobile development team",
		},
	})

	s.AddPipeline(&model.Pipeline{
		ID:            "pipe-001",
		Name:          "CI Build",
		ProjectID:     "proj-001",
		ProjectName:   "E-Commerce Platform",
		Type:          "Build",
		Status:        "Enabled",
		LastRunDate:   now.Add(-3 * time.Hour),
		LastRunStatus: model.RunStatusCompleted,
		LastRunResult: model.RunResultSucceeded,
		URL:           "https://dev.azure.com/company/ecommerce-platform/_build?definitionId=1",
	})
	s.AddPipeline(&model.Pipeline{
		ID:            "pipe-002",
		Name:          "Release Deploy",
		ProjectID:     "proj-001",
		ProjectName:   "E-Commerce Platform",
		Type:          "Release",
		Status:        "Enabled",
		LastRunDate:   now.Add(-8 * time.Hour),
		LastRunStatus: model.RunStatusCompleted,
		LastRunResult: model.RunResultFailed,
		URL:           "https://dev.azure.com/company/ecommerce-platform/_release?definitionId=2",
	})

	finished := now.Add(-3 * time.Hour)
	s.AddPipelineRun(&model.PipelineRun{
		ID:            "run-001",
		PipelineID:    "pipe-001",
		Name:          "CI Build #120",
		Status:        model.RunStatusCompleted,
		Result:        model.RunResultSucceeded,
		StartTime:     finished.Add(-12 * time.Minute),
		FinishTime:    &finished,
		TriggeredBy:   "Local Developer",
		SourceBranch:  "refs/heads/main",
		SourceVersion: "a1b2c3d",
	})
	failedAt := now.Add(-8 * time.Hour)
	s.AddPipelineRun(&model.PipelineRun{
		ID:            "run-002",
		PipelineID:    "pipe-002",
		Name:          "Release Deploy #45",
		Status:        model.RunStatusCompleted,
		Result:        model.RunResultFailed,
		StartTime:     failedAt.Add(-20 * time.Minute),
		FinishTime:    &failedAt,
		TriggeredBy:   "Local Developer",
		SourceBranch:  "refs/heads/main",
		SourceVersion: "d4e5f6a",
	})

	changed := now.Add(-5 * time.Hour)
	s.AddWorkItem(&model.WorkItem{
		ID:            "wi-001",
		Title:         "Implement user authentication",
		Description:   "Add OAuth2 authentication flow for the storefront",
		Type:          "User Story",
		State:         model.WorkItemStateActive,
		Priority:      "High",
		AssignedTo:    "Local Developer",
		CreatedDate:   now.AddDate(0, 0, -7),
		ChangedDate:   &changed,
		ProjectID:     "proj-001",
		ProjectName:   "E-Commerce Platform",
		AreaPath:      "E-Commerce Platform\\Backend",
		IterationPath: "E-Commerce Platform\\Sprint 12",
		Tags:          []string{"security", "backend"},
	})
	s.AddWorkItem(&model.WorkItem{
		ID:            "wi-002",
		Title:         "Fix cart total rounding",
		Description:   "Cart totals are rounded inconsistently when mixing currencies",
		Type:          "Bug",
		State:         model.WorkItemStateActive,
		Priority:      "Medium",
		AssignedTo:    "Local Developer",
		CreatedDate:   now.AddDate(0, 0, -2),
		ProjectID:     "proj-001",
		ProjectName:   "E-Commerce Platform",
		AreaPath:      "E-Commerce Platform\\Backend",
		IterationPath: "E-Commerce Platform\\Sprint 12",
		Tags:          []string{"bug"},
	})

	s.AddRepo(&model.Repo{
		ID:               "repo-001",
		Name:             "ecommerce-api",
		ProjectID:        "proj-001",
		ProjectName:      "E-Commerce Platform",
		URL:              "https://dev.azure.com/company/ecommerce-platform/_git/ecommerce-api",
		DefaultBranch:    "refs/heads/main",
		Type:             "Git",
		CreatedDate:      now.AddDate(0, -6, 0),
		LastUpdatedDate:  now.Add(-2 * time.Hour),
		CommitCount:      847,
		BranchCount:      12,
		PullRequestCount: 5,
	})

	return s
}
