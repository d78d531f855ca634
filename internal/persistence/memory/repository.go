// Package memory stores users and activity logs in process memory for local development and tests.
package memory

import (
	"context"
	"sync"

	"example.com/exercisetracker/internal/domain"
)

// Repository implements the domain repositories over maps.
type Repository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	logs  map[string]domain.ActivityLog
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		users: make(map[string]domain.User),
		logs:  make(map[string]domain.ActivityLog),
	}
}

// SaveUser implements domain.UserRepository.
func (r *Repository) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	return nil
}

// FindUser implements domain.UserRepository.
func (r *Repository) FindUser(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// FindLog implements domain.ActivityLogRepository.
func (r *Repository) FindLog(ctx context.Context, userID string) (*domain.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.logs[userID]
	if !ok {
		return nil, nil
	}
	return cloneLog(record, 0), nil
}

// AppendActivity implements domain.ActivityLogRepository. A missing log is left untouched.
func (r *Repository) AppendActivity(ctx context.Context, userID string, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.logs[userID]
	if !ok {
		return nil
	}
	r.logs[userID] = addToSet(record, activity)
	return nil
}

// CreateLog implements domain.ActivityLogRepository.
func (r *Repository) CreateLog(ctx context.Context, userID string, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.logs[userID]
	if !ok {
		record = domain.ActivityLog{ID: userID, UserID: userID}
	}
	r.logs[userID] = addToSet(record, activity)
	return nil
}

// FilterLog implements domain.ActivityLogRepository.
func (r *Repository) FilterLog(ctx context.Context, userID, from, to string, limit int) ([]domain.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.logs[userID]
	if !ok {
		return []domain.ActivityLog{}, nil
	}
	filtered := domain.Truncate(domain.FilterByDate(record.Activities, from, to), limit)
	return []domain.ActivityLog{{ID: record.ID, UserID: record.UserID, Activities: filtered}}, nil
}

// SliceLog implements domain.ActivityLogRepository.
func (r *Repository) SliceLog(ctx context.Context, userID string, limit int) (*domain.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.logs[userID]
	if !ok {
		return nil, nil
	}
	return cloneLog(record, limit), nil
}

func addToSet(record domain.ActivityLog, activity domain.Activity) domain.ActivityLog {
	if domain.ContainsActivity(record.Activities, activity) {
		return record
	}
	activities := make([]domain.Activity, len(record.Activities), len(record.Activities)+1)
	copy(activities, record.Activities)
	record.Activities = append(activities, activity)
	return record
}

func cloneLog(record domain.ActivityLog, limit int) *domain.ActivityLog {
	src := domain.Truncate(record.Activities, limit)
	out := record
	out.Activities = make([]domain.Activity, len(src))
	copy(out.Activities, src)
	return &out
}
