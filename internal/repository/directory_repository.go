package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/welldanyogia/projecthub-backend/internal/models"
	"gorm.io/gorm"
)

// DirectoryRepository reads the project, user and role tables owned by the
// wider backend. It never writes.
type DirectoryRepository interface {
	ProjectMemberIDs(ctx context.Context, projectID uint) ([]uint, error)
	ProjectCreatorID(ctx context.Context, projectID uint) (uint, error)
	UserIDsWithRole(ctx context.Context, roleName string) ([]uint, error)
	UserHasRole(ctx context.Context, userID uint, roleName string) (bool, error)
	ProjectsStartingBetween(ctx context.Context, from, to time.Time, excludedStatus string) ([]models.Project, error)
	UsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error)
	SearchUsers(ctx context.Context, query string, excludeUserID uint, excludedRoles []string, limit int) ([]models.UserSuggestion, error)
}

// directoryRepository implements DirectoryRepository using GORM
type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new DirectoryRepository instance
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

// ProjectMemberIDs returns the user IDs of a project's members
func (r *directoryRepository) ProjectMemberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	result := r.db.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Order("user_id ASC").
		Pluck("user_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list project members: %w", result.Error)
	}
	return ids, nil
}

// ProjectCreatorID returns the creator of a project, or 0 when the project is unknown
func (r *directoryRepository) ProjectCreatorID(ctx context.Context, projectID uint) (uint, error) {
	var project models.Project
	result := r.db.WithContext(ctx).Select("id", "created_by").First(&project, projectID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get project creator: %w", result.Error)
	}
	return project.CreatedBy, nil
}

// UserIDsWithRole returns the IDs of every user holding the named role
func (r *directoryRepository) UserIDsWithRole(ctx context.Context, roleName string) ([]uint, error) {
	var ids []uint
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ?", roleName).
		Order("users.id ASC").
		Pluck("users.id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list users with role: %w", result.Error)
	}
	return ids, nil
}

// UserHasRole reports whether the user holds the named role
func (r *directoryRepository) UserHasRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.id = ? AND roles.name = ?", userID, roleName).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check user role: %w", result.Error)
	}
	return count > 0, nil
}

// ProjectsStartingBetween returns projects whose start date falls in [from, to)
// and whose status is not excludedStatus
func (r *directoryRepository) ProjectsStartingBetween(ctx context.Context, from, to time.Time, excludedStatus string) ([]models.Project, error) {
	var projects []models.Project
	result := r.db.WithContext(ctx).
		Where("start_date >= ? AND start_date < ?", from, to).
		Where("status <> ?", excludedStatus).
		Order("id ASC").
		Find(&projects)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list starting projects: %w", result.Error)
	}
	return projects, nil
}

// UsersByIDs loads users keyed by ID
func (r *directoryRepository) UsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	users := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	var rows []models.User
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load users: %w", result.Error)
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

// SearchUsers matches name or email, excluding a user and some roles
func (r *directoryRepository) SearchUsers(ctx context.Context, query string, excludeUserID uint, excludedRoles []string, limit int) ([]models.UserSuggestion, error) {
	pattern := "%" + query + "%"

	tx := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.id, users.name, users.email, roles.name AS role").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.id <> ?", excludeUserID).
		Where("users.name LIKE ? OR users.email LIKE ?", pattern, pattern)
	if len(excludedRoles) > 0 {
		tx = tx.Where("roles.name NOT IN ?", excludedRoles)
	}

	var suggestions []models.UserSuggestion
	result := tx.Order("users.name ASC").Limit(limit).Scan(&suggestions)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to search users: %w", result.Error)
	}
	return suggestions, nil
}
