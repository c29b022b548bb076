package repository

import (
	"context"
	"errors"
	"time"

	"floorlink/internal/domain"
)

// ErrNotFound is returned when a named project does not exist.
var ErrNotFound = errors.New("project not found")

// ProjectSummary describes a stored project without loading its items.
type ProjectSummary struct {
	Name      string             `json:"name"`
	Items     int                `json:"items"`
	Content   *domain.ContentRef `json:"content,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Repository persists projects.
type Repository interface {
	SaveProject(ctx context.Context, name string, p *domain.Project) error
	LoadProject(ctx context.Context, name string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]ProjectSummary, error)
	DeleteProject(ctx context.Context, name string) error
	Close() error
}
