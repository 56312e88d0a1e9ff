package engine

import (
	"context"
	"math"

	"connex/internal/domain"
)

// Progress is round(100*completed/total) over per-status task counts, or 0
// for no tasks.
func Progress(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(counts[domain.TaskCompleted]) / float64(total)))
}

func projectKey(id string) string { return "project:" + id }

func taskKey(id string) string { return "task:" + id }

func meetingKey(id string) string { return "meeting:" + id }

// RecalculateProgress rescans the project's tasks and writes the derived
// progress back.
func (e Engine) RecalculateProgress(ctx context.Context, projectID string) (domain.Project, error) {
	return e.refreshProject(ctx, projectID, nil)
}

// refreshProject loads the project under its lock, applies edit, recomputes
// progress from a full task rescan and saves. An edit error aborts with no
// write.
func (e Engine) refreshProject(ctx context.Context, projectID string, edit func(*domain.Project) error) (domain.Project, error) {
	unlock := e.lock(projectKey(projectID))
	defer unlock()

	p, err := e.Store.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if edit != nil {
		if err := edit(&p); err != nil {
			return domain.Project{}, err
		}
	}
	counts, err := e.Store.CountTasksByStatus(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	p.Progress = Progress(counts)
	return e.Store.SaveProject(ctx, p)
}

// cascadeProject runs refreshProject for a task side effect. Failures are
// logged; the next mutation of the project repairs progress.
func (e Engine) cascadeProject(ctx context.Context, projectID string, edit func(*domain.Project) error) {
	if projectID == "" {
		return
	}
	if _, err := e.refreshProject(ctx, projectID, edit); err != nil {
		e.logger().Printf("progress: recalculate project %s: %v", projectID, err)
	}
}
