// Package memstore provides an in-memory implementation of the entity
// store. It backs the service when no database is configured and is the
// default store in tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
)

// Store is a mutex-guarded in-memory entity store.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	projects  map[string]*model.Project
	pipelines map[string]*model.Pipeline
	runs      map[string]*model.PipelineRun
	workItems map[string]*model.WorkItem
	repos     map[string]*model.Repo
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:     make(map[string]*model.User),
		projects:  make(map[string]*model.Project),
		pipelines: make(map[string]*model.Pipeline),
		runs:      make(map[string]*model.PipelineRun),
		workItems: make(map[string]*model.WorkItem),
		repos:     make(map[string]*model.Repo),
	}
}

// AddUser inserts or replaces a user.
func (s *Store) AddUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

// AddProject inserts or replaces a project.
func (s *Store) AddProject(p *model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.projects[p.ID] = &cp
}

// AddPipeline inserts or replaces a pipeline.
func (s *Store) AddPipeline(p *model.Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.pipelines[p.ID] = &cp
}

// AddRepo inserts or replaces a repository.
func (s *Store) AddRepo(r *model.Repo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.repos[r.ID] = &cp
}

// AddWorkItem inserts or replaces a work item.
func (s *Store) AddWorkItem(w *model.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.workItems[w.ID] = &cp
}

// AddPipelineRun inserts or replaces a pipeline run.
func (s *Store) AddPipelineRun(r *model.PipelineRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.runs[r.ID] = &cp
}

// GetUserByID implements store.Store.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByUsername implements store.Store. Exact, case-sensitive match.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// UpdateUserLastLogin implements store.Store.
func (s *Store) UpdateUserLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.LastLoginDate = time.Now().UTC()
	return nil
}

// ListUsers implements store.Store.
func (s *Store) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sortByID(out, func(u *model.User) string { return u.ID })
	return out, nil
}

// ListProjects implements store.Store.
func (s *Store) ListProjects(_ context.Context) ([]*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := *p
		out = append(out, &cp)
	}
	sortByID(out, func(p *model.Project) string { return p.ID })
	return out, nil
}

// GetProject implements store.Store.
func (s *Store) GetProject(_ context.Context, id string) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

// ListPipelines implements store.Store.
func (s *Store) ListPipelines(_ context.Context, projectID string) ([]*model.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Pipeline, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		if projectID != "" && p.ProjectID != projectID {
			continue
		}
		cp := *p
		cp.RecentRuns = s.runsForLocked(p.ID)
		out = append(out, &cp)
	}
	sortByID(out, func(p *model.Pipeline) string { return p.ID })
	return out, nil
}

// GetPipeline implements store.Store.
func (s *Store) GetPipeline(_ context.Context, id string) (*model.Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pipelines[id]
	if !ok {
		return nil, store.ErrPipelineNotFound
	}
	cp := *p
	cp.RecentRuns = s.runsForLocked(id)
	return &cp, nil
}

// runsForLocked lists runs for one pipeline; callers must hold the lock.
func (s *Store) runsForLocked(pipelineID string) []*model.PipelineRun {
	var out []*model.PipelineRun
	for _, r := range s.runs {
		if r.PipelineID == pipelineID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

// ListPipelineRuns implements store.Store.
func (s *Store) ListPipelineRuns(_ context.Context, pipelineID string) ([]*model.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.pipelines[pipelineID]; !ok {
		return nil, store.ErrPipelineNotFound
	}
	return s.runsForLocked(pipelineID), nil
}

// ListAllPipelineRuns implements store.Store.
func (s *Store) ListAllPipelineRuns(_ context.Context) ([]*model.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.PipelineRun, 0, len(s.runs))
	for _, r := range s.runs {
		cp := *r
		out = append(out, &cp)
	}
	sortByID(out, func(r *model.PipelineRun) string { return r.ID })
	return out, nil
}

// GetPipelineRun implements store.Store.
func (s *Store) GetPipelineRun(_ context.Context, runID string) (*model.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, store.ErrRunNotFound
	}
	cp := *r
	return &cp, nil
}

// CreatePipelineRun implements store.Store. The run's pipeline must exist.
func (s *Store) CreatePipelineRun(_ context.Context, run *model.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pipelines[run.PipelineID]; !ok {
		return store.ErrPipelineNotFound
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

// ListWorkItems implements store.Store.
func (s *Store) ListWorkItems(_ context.Context, filter store.WorkItemFilter) ([]*model.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.WorkItem, 0, len(s.workItems))
	for _, w := range s.workItems {
		if filter.ProjectID != "" && w.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Type != "" && w.Type != filter.Type {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	sortByID(out, func(w *model.WorkItem) string { return w.ID })
	return out, nil
}

// GetWorkItem implements store.Store.
func (s *Store) GetWorkItem(_ context.Context, id string) (*model.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workItems[id]
	if !ok {
		return nil, store.ErrWorkItemNotFound
	}
	cp := *w
	return &cp, nil
}

// CreateWorkItem implements store.Store.
func (s *Store) CreateWorkItem(_ context.Context, item *model.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.workItems[item.ID] = &cp
	return nil
}

// UpdateWorkItem implements store.Store.
func (s *Store) UpdateWorkItem(_ context.Context, item *model.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workItems[item.ID]; !ok {
		return store.ErrWorkItemNotFound
	}
	cp := *item
	s.workItems[item.ID] = &cp
	return nil
}

// DeleteWorkItem implements store.Store.
func (s *Store) DeleteWorkItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workItems[id]; !ok {
		return store.ErrWorkItemNotFound
	}
	delete(s.workItems, id)
	return nil
}

// ListRepos implements store.Store.
func (s *Store) ListRepos(_ context.Context, projectID string) ([]*model.Repo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Repo, 0, len(s.repos))
	for _, r := range s.repos {
		if projectID != "" && r.ProjectID != projectID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sortByID(out, func(r *model.Repo) string { return r.ID })
	return out, nil
}

// GetRepo implements store.Store.
func (s *Store) GetRepo(_ context.Context, id string) (*model.Repo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.repos[id]
	if !ok {
		return nil, store.ErrRepoNotFound
	}
	cp := *r
	return &cp, nil
}

// sortByID keeps listings deterministic for stable API output.
func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
