package auth

// Scopes checked by the middleware.
const (
	ScopeExerciseWrite = "exercise:write"
	ScopeExerciseRead  = "exercise:read"
)
