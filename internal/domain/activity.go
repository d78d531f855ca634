package domain

import "fmt"

// Activity is a single logged exercise entry. Two activities are the same entry when every field matches.
type Activity struct {
	Description string
	Duration    string
	Date        string
}

// ActivityLog is the per-user container of activities. ID always equals UserID.
type ActivityLog struct {
	ID         string
	UserID     string
	Activities []Activity
}

// AddOutcome describes which branch AddActivity took.
type AddOutcome string

const (
	AddOutcomeUpdated     AddOutcome = "updated"
	AddOutcomeCreated     AddOutcome = "created"
	AddOutcomeUnknownUser AddOutcome = "unknown_user"
)

// AddActivityInput captures the payload from the API layer.
type AddActivityInput struct {
	UserID      string
	Description string
	Duration    string
	Date        string
}

// ContainsActivity reports whether activities already holds an entry equal to candidate.
func ContainsActivity(activities []Activity, candidate Activity) bool {
	for _, existing := range activities {
		if existing == candidate {
			return true
		}
	}
	return false
}

func (m AddOutcome) String() string {
	return string(m)
}

// Message renders the plain-text response for an add-activity outcome.
func (m AddOutcome) Message(userID string) string {
	switch m {
	case AddOutcomeUpdated:
		return fmt.Sprintf("Updated %s", userID)
	case AddOutcomeCreated:
		return fmt.Sprintf("Created new activity for %s", userID)
	default:
		return "User does not Exist..."
	}
}
