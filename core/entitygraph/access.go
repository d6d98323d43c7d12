package entitygraph

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrPermissionDenied is returned when the caller may not read the project.
var ErrPermissionDenied = errors.New("permission denied")

// AccessChecker authorizes a caller for a project before any graph is built.
// Returning a non nil error rejects the request.
type AccessChecker interface {
	CheckAccess(ctx context.Context, caller string, projectID uuid.UUID) error
}

// AccessCheckerFunc adapts a function to an AccessChecker.
type AccessCheckerFunc func(ctx context.Context, caller string, projectID uuid.UUID) error

// CheckAccess calls f.
func (f AccessCheckerFunc) CheckAccess(ctx context.Context, caller string, projectID uuid.UUID) error {
	return f(ctx, caller, projectID)
}

// AllowAll grants every caller access to every project.
type AllowAll struct{}

// CheckAccess always succeeds.
func (AllowAll) CheckAccess(context.Context, string, uuid.UUID) error {
	return nil
}

// ProjectMembers grants access to the listed callers of each project.
type ProjectMembers map[uuid.UUID][]string

// CheckAccess succeeds when caller is a member of projectID.
func (p ProjectMembers) CheckAccess(_ context.Context, caller string, projectID uuid.UUID) error {
	for _, member := range p[projectID] {
		if member == caller {
			return nil
		}
	}
	return ErrPermissionDenied
}
