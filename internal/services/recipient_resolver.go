package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	apperrors "github.com/welldanyogia/projecthub-backend/internal/errors"
	"github.com/welldanyogia/projecthub-backend/internal/models"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
)

// RecipientResolver computes the audience of mail and notification events.
// It only reads; combining callers must drop the acting user with ExcludeActor.
type RecipientResolver interface {
	// ResolveSendAudience validates and de-duplicates an explicit recipient
	// list, dropping the sender
	ResolveSendAudience(senderID uint, explicit []uint) ([]uint, error)

	// ResolveReplyAudience returns every past sender and recipient of the
	// thread except the replier. It must run on the caller's transaction.
	ResolveReplyAudience(ctx context.Context, tx *repository.Store, threadID, replierID uint) ([]uint, error)

	// ProjectMembers returns the members of a project
	ProjectMembers(ctx context.Context, projectID uint) ([]uint, error)

	// ProjectCreator returns the creator of a project, 0 if unknown
	ProjectCreator(ctx context.Context, projectID uint) (uint, error)

	// SuperAdmins returns every user with the SUPER_ADMIN role
	SuperAdmins(ctx context.Context) ([]uint, error)

	// ProjectAudience combines members, super admins and the creator,
	// without the actor
	ProjectAudience(ctx context.Context, projectID, actorID uint) ([]uint, error)

	// ProjectsStartingOn returns non-cancelled projects starting on day (UTC)
	ProjectsStartingOn(ctx context.Context, day time.Time) ([]models.Project, error)
}

// recipientResolver implements RecipientResolver
type recipientResolver struct {
	directory repository.DirectoryRepository
}

// NewRecipientResolver creates a new RecipientResolver instance
func NewRecipientResolver(directory repository.DirectoryRepository) RecipientResolver {
	return &recipientResolver{directory: directory}
}

// ResolveSendAudience validates and de-duplicates the explicit recipients
func (r *recipientResolver) ResolveSendAudience(senderID uint, explicit []uint) ([]uint, error) {
	audience := ExcludeActor(uniqueIDs(explicit), senderID)
	if len(audience) == 0 {
		return nil, apperrors.Validation("at least one recipient other than the sender is required")
	}
	return audience, nil
}

// ResolveReplyAudience unions the thread's senders and recipients, minus the replier
func (r *recipientResolver) ResolveReplyAudience(ctx context.Context, tx *repository.Store, threadID, replierID uint) ([]uint, error) {
	senders, err := tx.Messages.SenderIDsInThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve thread senders: %w", err)
	}
	recipients, err := tx.Recipients.RecipientIDsInThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve thread recipients: %w", err)
	}

	audience := ExcludeActor(uniqueIDs(append(senders, recipients...)), replierID)
	slices.Sort(audience)
	return audience, nil
}

// ProjectMembers returns the members of a project
func (r *recipientResolver) ProjectMembers(ctx context.Context, projectID uint) ([]uint, error) {
	return r.directory.ProjectMemberIDs(ctx, projectID)
}

// ProjectCreator returns the creator of a project
func (r *recipientResolver) ProjectCreator(ctx context.Context, projectID uint) (uint, error) {
	return r.directory.ProjectCreatorID(ctx, projectID)
}

// SuperAdmins returns the highest privilege administrators
func (r *recipientResolver) SuperAdmins(ctx context.Context) ([]uint, error) {
	return r.directory.UserIDsWithRole(ctx, models.RoleSuperAdmin)
}

// ProjectAudience returns members, super admins and the creator of a project
func (r *recipientResolver) ProjectAudience(ctx context.Context, projectID, actorID uint) ([]uint, error) {
	members, err := r.ProjectMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	admins, err := r.SuperAdmins(ctx)
	if err != nil {
		return nil, err
	}
	creator, err := r.ProjectCreator(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ids := append(append(members, admins...), creator)
	return ExcludeActor(uniqueIDs(ids), actorID), nil
}

// ProjectsStartingOn returns projects whose start date falls on the UTC day of day
func (r *recipientResolver) ProjectsStartingOn(ctx context.Context, day time.Time) ([]models.Project, error) {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return r.directory.ProjectsStartingBetween(ctx, from, from.AddDate(0, 0, 1), models.ProjectStatusCancelled)
}

// ExcludeActor removes actorID from ids. An actor never receives a
// notification about their own action.
func ExcludeActor(ids []uint, actorID uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != actorID {
			out = append(out, id)
		}
	}
	return out
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
