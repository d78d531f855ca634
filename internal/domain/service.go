// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/exercisetracker/internal/events"
	"example.com/exercisetracker/internal/observability"
)

// UserRepository captures user persistence operations.
type UserRepository interface {
	SaveUser(ctx context.Context, user User) error
	// FindUser returns nil, nil when no user has the id.
	FindUser(ctx context.Context, id string) (*User, error)
}

// ActivityLogRepository captures activity-log persistence operations.
type ActivityLogRepository interface {
	// FindLog returns nil, nil when the user has no log yet.
	FindLog(ctx context.Context, userID string) (*ActivityLog, error)
	// AppendActivity adds activity to an existing log unless an equal entry is already present.
	AppendActivity(ctx context.Context, userID string, activity Activity) error
	// CreateLog creates the log keyed by userID holding activity. If a log appeared concurrently
	// the activity is merged into it with the same set semantics as AppendActivity.
	CreateLog(ctx context.Context, userID string, activity Activity) error
	// FilterLog matches the log by userID, keeps activities dated within [from, to] and then at
	// most limit of them (0 for all). No match yields an empty slice.
	FilterLog(ctx context.Context, userID, from, to string, limit int) ([]ActivityLog, error)
	// SliceLog returns the log with its first limit activities (0 for all), or nil, nil.
	SliceLog(ctx context.Context, userID string, limit int) (*ActivityLog, error)
}

// DefaultPublishTimeout bounds how long a request waits on event delivery.
const DefaultPublishTimeout = 2 * time.Second

// EventPublisher delivers domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Service orchestrates user registration and activity logging.
type Service struct {
	users     UserRepository
	logs      ActivityLogRepository
	publisher EventPublisher
	timeout   time.Duration
	now       func() time.Time
}

// NewService constructs a Service. A nil publisher disables events.
func NewService(users UserRepository, logs ActivityLogRepository, publisher EventPublisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{users: users, logs: logs, publisher: publisher, timeout: DefaultPublishTimeout, now: time.Now}
}

// WithPublishTimeout sets the per-event delivery bound. Non-positive values keep the current one.
func (s *Service) WithPublishTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// RegisterUser validates username and stores a new user under a fresh id.
func (s *Service) RegisterUser(ctx context.Context, username string) (*User, error) {
	if !ValidUsername(username) {
		verr := &ValidationError{}
		verr.add("username", "Please enter a valid username.")
		return nil, verr
	}

	user := User{ID: NewUserID(), Username: username}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	observability.RecordUserRegistered()

	s.publish(ctx, events.TopicUserRegistered, user.ID, events.UserRegistered{
		UserID:       user.ID,
		Username:     user.Username,
		RegisteredAt: s.now().UTC(),
	})
	return &user, nil
}

// AddActivity records an activity for an existing user. Both records are looked up before
// deciding between append and create.
func (s *Service) AddActivity(ctx context.Context, input AddActivityInput) (AddOutcome, error) {
	userID := strings.TrimSpace(input.UserID)
	activity := Activity{
		Description: input.Description,
		Duration:    input.Duration,
		Date:        NormalizeDate(input.Date),
	}

	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	existing, err := s.logs.FindLog(ctx, userID)
	if err != nil {
		return "", err
	}

	var outcome AddOutcome
	switch {
	case user == nil:
		outcome = AddOutcomeUnknownUser
	case existing != nil:
		if err := s.logs.AppendActivity(ctx, userID, activity); err != nil {
			return "", err
		}
		outcome = AddOutcomeUpdated
	default:
		if err := s.logs.CreateLog(ctx, userID, activity); err != nil {
			return "", err
		}
		outcome = AddOutcomeCreated
	}
	observability.RecordActivityAdded(string(outcome))

	if outcome != AddOutcomeUnknownUser {
		s.publish(ctx, events.TopicActivityLogged, userID, events.ActivityLogged{
			UserID:      userID,
			Description: activity.Description,
			Duration:    activity.Duration,
			Date:        activity.Date,
			Outcome:     string(outcome),
			LoggedAt:    s.now().UTC(),
		})
	}
	return outcome, nil
}

// QueryLog answers a validated log query.
func (s *Service) QueryLog(ctx context.Context, q LogQuery) (LogResult, error) {
	result := LogResult{Mode: q.Mode()}
	observability.RecordLogQuery(string(result.Mode))

	switch result.Mode {
	case QueryRangeLimit, QueryRange:
		matches, err := s.logs.FilterLog(ctx, q.UserID, q.From, q.To, q.Limit)
		if err != nil {
			return LogResult{}, err
		}
		result.Matches = matches
	default:
		record, err := s.logs.SliceLog(ctx, q.UserID, q.Limit)
		if err != nil {
			return LogResult{}, err
		}
		result.Log = record
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, topic, key string, payload any) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, topic, key, payload); err != nil {
		observability.RecordPublishFailure(topic)
		log.Warn().Err(err).Str("topic", topic).Str("key", key).Msg("event publish failed")
	}
}
