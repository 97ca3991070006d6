package models

import (
	"time"
)

// Role names with special meaning for audience resolution
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
)

// ProjectStatusCancelled marks projects that never start
const ProjectStatusCancelled = "Cancelled"

// Role is a row of the roles table owned by the wider backend
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:64" json:"name"`
}

// TableName returns the table name for Role
func (Role) TableName() string {
	return "roles"
}

// User is the subset of the users table this service reads
type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255" json:"name"`
	Email  string `gorm:"uniqueIndex;size:255" json:"email"`
	RoleID uint   `gorm:"index" json:"role_id"`

	// Relationships
	Role Role `gorm:"foreignKey:RoleID" json:"-"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// Project is the subset of the projects table this service reads
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Status    string    `gorm:"size:32" json:"status"`
	StartDate time.Time `gorm:"index" json:"start_date"`
	CreatedBy uint      `json:"created_by"`
}

// TableName returns the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectMember links a user to a project
type ProjectMember struct {
	ProjectID uint `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
}

// TableName returns the table name for ProjectMember
func (ProjectMember) TableName() string {
	return "project_members"
}

// UserSuggestion is a user search hit for the recipient picker
type UserSuggestion struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
