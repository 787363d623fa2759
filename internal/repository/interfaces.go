package repository

import (
	"context"
	"errors"
	"time"

	"ecocare/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DetectionRepository defines the interface for detection data operations.
type DetectionRepository interface {
	// Create operations
	Insert(ctx context.Context, det *model.Detection) (int64, error)
	InsertBatch(ctx context.Context, detections []model.Detection) error

	// Read operations
	GetByID(ctx context.Context, id int64) (*model.Detection, error)
	List(ctx context.Context, filter *model.DetectionFilter) ([]model.Detection, error)
	ListAll(ctx context.Context) ([]model.Detection, error)
	Count(ctx context.Context, filter *model.CountFilter) (int, error)
	CountByProductType(ctx context.Context, window model.Window) ([]model.GroupCount, error)
	Points(ctx context.Context, window model.Window) ([]model.DetectionPoint, error)

	// Update operations
	UpdateCreatedAt(ctx context.Context, id int64, createdAt time.Time) error

	// Delete operations
	DeleteWithoutImage(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

// UserRepository defines the interface for profile data operations.
type UserRepository interface {
	Insert(ctx context.Context, user *model.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, name, email *string) (*model.User, error)
}
