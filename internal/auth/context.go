package auth

import (
	"context"
)

// --- Context Helper Functions ---

// GetAdminSubjectFromContext retrieves the admin token subject from the
// request context. Returns the subject and true if found, otherwise "" and
// false.
func GetAdminSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(AdminSubjectKey).(string)
	return subject, ok
}
