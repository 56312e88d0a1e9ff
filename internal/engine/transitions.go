package engine

import "connex/internal/domain"

// TransitionEvent is a tracked status change of a single entity.
type TransitionEvent struct {
	Type string
	Kind string
	ID   string
}

// DetectTask reports task_completed when old was not Completed and cur is.
// A nil old means creation, which is never a transition.
func DetectTask(old *domain.Task, cur domain.Task) *TransitionEvent {
	if old == nil {
		return nil
	}
	if old.Status != domain.TaskCompleted && cur.Status == domain.TaskCompleted {
		return &TransitionEvent{Type: domain.ActionTaskCompleted, Kind: domain.KindTask, ID: cur.ID}
	}
	return nil
}

func DetectMeeting(old *domain.Meeting, cur domain.Meeting) *TransitionEvent {
	if old == nil {
		return nil
	}
	if old.Status != domain.MeetingCompleted && cur.Status == domain.MeetingCompleted {
		return &TransitionEvent{Type: domain.ActionMeetingCompleted, Kind: domain.KindMeeting, ID: cur.ID}
	}
	return nil
}

var taskTransitions = map[string][]string{
	domain.TaskPending:    {domain.TaskInProgress, domain.TaskBlocked, domain.TaskCancelled},
	domain.TaskInProgress: {domain.TaskCompleted, domain.TaskBlocked, domain.TaskCancelled},
	domain.TaskBlocked:    {domain.TaskInProgress, domain.TaskCancelled},
}

var taskReopen = []string{domain.TaskPending, domain.TaskInProgress}

var meetingTransitions = map[string][]string{
	domain.MeetingScheduled:  {domain.MeetingInProgress, domain.MeetingCancelled},
	domain.MeetingInProgress: {domain.MeetingCompleted, domain.MeetingCancelled},
}

var meetingReopen = []string{domain.MeetingScheduled, domain.MeetingInProgress}

func checkTransition(kind, from, to string, next map[string][]string, reopen []string, allowReopen bool) error {
	if from == to {
		return nil
	}
	if allowed, ok := next[from]; ok {
		if domain.Contains(allowed, to) {
			return nil
		}
	} else if allowReopen && domain.Contains(reopen, to) {
		return nil
	}
	return domain.Validationf("status", "invalid %s status transition %s -> %s", kind, from, to)
}

// CheckTaskTransition enforces the task state machine. Completed and
// Cancelled are terminal unless allowReopen.
func CheckTaskTransition(from, to string, allowReopen bool) error {
	return checkTransition(domain.KindTask, from, to, taskTransitions, taskReopen, allowReopen)
}

func CheckMeetingTransition(from, to string, allowReopen bool) error {
	return checkTransition(domain.KindMeeting, from, to, meetingTransitions, meetingReopen, allowReopen)
}
