package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// PostRepo persists posts. Lookups that find nothing return nil with a nil error.
// Failures are returned as *errs.ApiErr.
type PostRepo interface {
	// FindPublished returns published posts, newest created first.
	FindPublished(ctx context.Context) ([]models.Post, error)
	// FindAll returns every post in insertion order.
	FindAll(ctx context.Context) ([]models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	// FindPublishedByTag returns published posts carrying tag, newest first.
	FindPublishedByTag(ctx context.Context, tag string) ([]models.Post, error)
	// SearchPublished matches query literally and case-insensitively against title,
	// content and excerpt of published posts, newest first.
	SearchPublished(ctx context.Context, query string) ([]models.Post, error)
	// Add inserts post and sets its ID.
	Add(ctx context.Context, post *models.Post) error
	// Update applies patch and updatedAt in one write and returns the post after it,
	// or nil when no post has id.
	Update(ctx context.Context, id string, patch models.PostPatch, updatedAt time.Time) (*models.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
	// IncrementViewCount atomically adds one view to the post with slug.
	IncrementViewCount(ctx context.Context, slug string) (bool, error)
}

// ContactRepo persists contact form submissions.
type ContactRepo interface {
	Add(ctx context.Context, submission *models.ContactSubmission) error
	// FindAll returns every submission, newest first.
	FindAll(ctx context.Context) ([]models.ContactSubmission, error)
	// MarkRead flags the submission as read and returns it, or nil when it does not exist.
	MarkRead(ctx context.Context, id string) (*models.ContactSubmission, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountUnread(ctx context.Context) (int64, error)
}

type Database struct {
	postRepo    PostRepo
	contactRepo ContactRepo
	backend     string
	closeFn     func(ctx context.Context) error
}

// New builds a Database from already constructed repositories. closeFn may be nil.
func New(backend string, posts PostRepo, contacts ContactRepo, closeFn func(ctx context.Context) error) Database {
	return Database{
		postRepo:    posts,
		contactRepo: contacts,
		backend:     backend,
		closeFn:     closeFn,
	}
}

// Open connects to the store selected by cfg.DBType. The connection is created once
// and shared by every repository until Close.
func Open(ctx context.Context, cfg config.Config) (Database, error) {
	switch cfg.DBType {
	case config.DBTypeMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
	case config.DBTypePostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case config.DBTypeSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return Database{}, errs.NewInvalidConfigError("DB_TYPE", fmt.Sprintf("unsupported value %q", cfg.DBType))
	}
}

// Accessor methods for each repository

func (d Database) PostRepo() PostRepo {
	return d.postRepo
}

func (d Database) ContactRepo() ContactRepo {
	return d.contactRepo
}

// Backend names the store in use, one of the config.DBType values.
func (d Database) Backend() string {
	return d.backend
}

// Close releases the underlying connection.
func (d Database) Close(ctx context.Context) error {
	if d.closeFn == nil {
		return nil
	}
	return d.closeFn(ctx)
}
