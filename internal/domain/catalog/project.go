package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// ProjectStatus represents the lifecycle of a construction project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusPaused    ProjectStatus = "paused"
)

// IsValid checks if the status is known
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusPaused:
		return true
	}
	return false
}

// Project is a construction site that owns requests and quotas
type Project struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Location  string
	ManagerID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Status    ProjectStatus
}

// NewProject creates an active project
func NewProject(code, name, location string) (*Project, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("Project code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Project name cannot be empty")
	}
	return &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Location:          location,
		Status:            ProjectStatusActive,
	}, nil
}

// SetStatus moves the project to another status
func (p *Project) SetStatus(status ProjectStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid project status")
	}
	p.Status = status
	p.Touch()
	return nil
}

// IsActive reports whether the project accepts new requests
func (p *Project) IsActive() bool {
	return p.Status == ProjectStatusActive
}
