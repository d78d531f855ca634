// Package events defines the payloads the tracker emits and delivers them to Kafka.
package events

import "time"

const (
	// TopicUserRegistered receives UserRegistered payloads.
	TopicUserRegistered = "exercise.user_registered"
	// TopicActivityLogged receives ActivityLogged payloads.
	TopicActivityLogged = "exercise.activity_logged"
)

var eventTypes = map[string]string{
	TopicUserRegistered: "user.registered",
	TopicActivityLogged: "activity.logged",
}

// UserRegistered is emitted after a user record has been written.
type UserRegistered struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ActivityLogged is emitted after an activity was appended to, or created, a user's log.
type ActivityLogged struct {
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Duration    string    `json:"duration"`
	Date        string    `json:"date"`
	Outcome     string    `json:"outcome"`
	LoggedAt    time.Time `json:"logged_at"`
}

// EventType returns the event_type header value for topic.
func EventType(topic string) string {
	if eventType, ok := eventTypes[topic]; ok {
		return eventType
	}
	return topic
}
