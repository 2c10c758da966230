package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// PostService owns post records and keeps their mirror files in step with the database.
// The database write always comes first; a mirror failure after it is reported in the
// returned PostWriteResult and never undoes the write.
type PostService struct {
	repo   database.PostRepo
	mirror Mirror
	now    func() time.Time
	logger zerolog.Logger
}

// NewPostService builds the service. now defaults to the UTC wall clock when nil.
func NewPostService(repo database.PostRepo, mirror Mirror, now func() time.Time) *PostService {
	if now == nil {
		now = utcNow
	}
	return &PostService{
		repo:   repo,
		mirror: mirror,
		now:    now,
		logger: log.With().Str("component", "posts").Logger(),
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// ListPublished returns published posts, newest first.
func (s *PostService) ListPublished(ctx context.Context) ([]models.Post, error) {
	return s.repo.FindPublished(ctx)
}

// ListAll returns posts of every status, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]models.Post, error) {
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	newest := make([]models.Post, len(posts))
	for i, p := range posts {
		newest[len(posts)-1-i] = p
	}
	sort.SliceStable(newest, func(i, j int) bool {
		return newest[i].CreatedAt.After(newest[j].CreatedAt)
	})
	return newest, nil
}

// GetBySlug returns the post with slug regardless of status, or nil when there is none.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.repo.FindBySlug(ctx, slug)
}

// ListByTag returns published posts carrying tag, newest first.
func (s *PostService) ListByTag(ctx context.Context, tag string) ([]models.Post, error) {
	return s.repo.FindPublishedByTag(ctx, tag)
}

// Search returns published posts whose title, content or excerpt contains query,
// ignoring case. A blank query lists every published post.
func (s *PostService) Search(ctx context.Context, query string) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListPublished(ctx)
	}
	return s.repo.SearchPublished(ctx, query)
}

// Create validates in, inserts it as a new post with zero views and mirrors it.
func (s *PostService) Create(ctx context.Context, in models.PostInput) (*models.PostWriteResult, error) {
	in.Tags = normalizeTags(in.Tags)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, in.Slug); err != nil {
		return nil, err
	}

	post := in.NewPost(s.now())
	if err := s.repo.Add(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info().Str("slug", post.Slug).Str("id", post.ID).Msg("Post created")

	return s.writeMirror(post), nil
}

// Update applies patch to the post with id and rewrites its mirror file. When the slug
// changes the old mirror file is removed once the new one is written. A nil result
// means no post has id.
func (s *PostService) Update(ctx context.Context, id string, patch models.PostPatch) (*models.PostWriteResult, error) {
	if patch.Tags != nil {
		tags := normalizeTags(*patch.Tags)
		patch.Tags = &tags
	}
	if err := validateInput(patch); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}
	if patch.Slug != nil && *patch.Slug != current.Slug {
		if err := s.ensureSlugFree(ctx, *patch.Slug); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, patch, s.now())
	if err != nil || updated == nil {
		return nil, err
	}
	s.logger.Info().Str("slug", updated.Slug).Str("id", updated.ID).Msg("Post updated")

	result := s.writeMirror(updated)
	if result.Mirrored && updated.Slug != current.Slug {
		s.removeMirror(current.Slug)
	}
	return result, nil
}

// Delete removes the post with id and its mirror file. It reports false when no post
// has id.
func (s *PostService) Delete(ctx context.Context, id string) (bool, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil || post == nil {
		return false, err
	}

	s.removeMirror(post.Slug)

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info().Str("slug", post.Slug).Str("id", id).Msg("Post deleted")
	}
	return deleted, nil
}

// IncrementView adds one view to the post with slug and reports whether it exists.
func (s *PostService) IncrementView(ctx context.Context, slug string) (bool, error) {
	return s.repo.IncrementViewCount(ctx, slug)
}

// Stats summarises the whole collection as of now.
func (s *PostService) Stats(ctx context.Context) (models.PostStats, error) {
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return models.PostStats{}, err
	}
	return ComputeStats(posts, s.now()), nil
}

func (s *PostService) ensureSlugFree(ctx context.Context, slug string) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return errs.NewAlreadyExists("post with slug " + slug)
	}
	return nil
}

func (s *PostService) writeMirror(post *models.Post) *models.PostWriteResult {
	result := &models.PostWriteResult{Post: post, Persisted: true}
	if err := s.mirror.Write(*post); err != nil {
		s.logger.Error().Err(err).Str("slug", post.Slug).Msg("Failed to write mirror file")
		result.MirrorError = errorMessage(err)
		return result
	}
	result.Mirrored = true
	return result
}

func (s *PostService) removeMirror(slug string) {
	if err := s.mirror.Remove(slug); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("Failed to remove mirror file")
	}
}

func errorMessage(err error) string {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.GetFullError()
	}
	return err.Error()
}
