// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"example.com/exercisetracker/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	landing http.Handler
}

// NewHandler builds a Handler. landing serves GET /; nil answers it with 404.
func NewHandler(service *domain.Service, landing http.Handler) *Handler {
	return &Handler{service: service, landing: landing}
}

const (
	newUserPath = "/api/exercise/new-user"
	addPath     = "/api/exercise/add"
	logPath     = "/api/exercise/log"
)

// PublicRoute reports whether r may skip bearer-token checks. Only the exercise endpoints are
// guarded, so unmatched paths still answer 404.
func PublicRoute(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	switch r.URL.Path {
	case newUserPath, addPath, logPath:
		return false
	}
	return true
}

// RegisterRoutes wires endpoints to the mux. Anything unmatched gets 404 Page Not Found.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST "+newUserPath, h.handle(h.newUser))
	mux.Handle("POST "+addPath, h.handle(h.addActivity))
	mux.Handle("GET "+logPath, h.handle(h.activityLog))
	mux.HandleFunc("GET /healthz", healthz)
	if h.landing != nil {
		mux.Handle("GET /{$}", h.landing)
	}
	mux.Handle("/", h.handle(notFound))
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func notFound(http.ResponseWriter, *http.Request) error {
	return ErrPageNotFound
}

func (h *Handler) newUser(w http.ResponseWriter, r *http.Request) error {
	fields, err := readFields(w, r)
	if err != nil {
		return err
	}

	user, err := h.service.RegisterUser(r.Context(), fields["username"])
	if err != nil {
		return err
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Added %s to collection.", user.Username))
	return nil
}

func (h *Handler) addActivity(w http.ResponseWriter, r *http.Request) error {
	fields, err := readFields(w, r)
	if err != nil {
		return err
	}

	userID := fields["userid"]
	if userID == "" {
		userID = fields["userId"]
	}
	userID = strings.TrimSpace(userID)

	outcome, err := h.service.AddActivity(r.Context(), domain.AddActivityInput{
		UserID:      userID,
		Description: fields["description"],
		Duration:    fields["duration"],
		Date:        fields["date"],
	})
	if err != nil {
		return err
	}
	writeText(w, http.StatusOK, outcome.Message(userID))
	return nil
}

func (h *Handler) activityLog(w http.ResponseWriter, r *http.Request) error {
	params := r.URL.Query()
	q, err := domain.ParseLogQuery(params.Get("userId"), params.Get("from"), params.Get("to"), params.Get("limit"))
	if err != nil {
		return err
	}

	result, err := h.service.QueryLog(r.Context(), q)
	if err != nil {
		return err
	}

	switch result.Mode {
	case domain.QueryRangeLimit, domain.QueryRange:
		views := make([]ActivityLogView, 0, len(result.Matches))
		for _, match := range result.Matches {
			views = append(views, toActivityLogView(match))
		}
		writeJSON(w, http.StatusOK, views)
	default:
		if result.Log == nil {
			writeJSON(w, http.StatusOK, nil)
			return nil
		}
		writeJSON(w, http.StatusOK, toActivityLogView(*result.Log))
	}
	return nil
}

// ActivityView is the JSON form of one activity.
type ActivityView struct {
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Date        string `json:"date"`
}

// ActivityLogView is the JSON form of a user's activity log.
type ActivityLogView struct {
	ID         string         `json:"_id"`
	UserID     string         `json:"user_id"`
	Activities []ActivityView `json:"activities"`
}

func toActivityLogView(record domain.ActivityLog) ActivityLogView {
	view := ActivityLogView{
		ID:         record.ID,
		UserID:     record.UserID,
		Activities: make([]ActivityView, 0, len(record.Activities)),
	}
	for _, activity := range record.Activities {
		view.Activities = append(view.Activities, ActivityView{
			Description: activity.Description,
			Duration:    activity.Duration,
			Date:        activity.Date,
		})
	}
	return view
}
