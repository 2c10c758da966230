package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/markdown"
	"github.com/rpupo63/blog-backend/models"
)

// stepClock advances one minute per reading so every record gets a distinct timestamp.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func setupPostService(t *testing.T) (*PostService, database.PostRepo, string) {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	dir := t.TempDir()
	clock := &stepClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	return NewPostService(db.PostRepo(), NewFileMirror(dir), clock.Now), db.PostRepo(), dir
}

func validInput(slug string) models.PostInput {
	return models.PostInput{
		Title:    "Hello " + slug,
		Slug:     slug,
		Content:  "# Hello\n\nBody of " + slug + "\n",
		Excerpt:  "About " + slug,
		ReadTime: "3 min read",
		Category: "Go",
		Tags:     []string{" go ", "", "web"},
	}
}

func readMirror(t *testing.T, dir, slug string) markdown.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, slug+".md"))
	if err != nil {
		t.Fatalf("expected mirror file for %s: %v", slug, err)
	}
	return markdown.Parse(string(data))
}

func TestCreateStoresAndMirrorsPost(t *testing.T) {
	svc, repo, dir := setupPostService(t)
	ctx := context.Background()

	result, err := svc.Create(ctx, validInput("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Persisted || !result.Mirrored || result.MirrorError != "" {
		t.Fatalf("unexpected result %+v", result)
	}

	post := result.Post
	if post.Status != models.StatusPublished || post.ViewCount != 0 {
		t.Fatalf("expected published post with no views, got %+v", post)
	}
	if !post.CreatedAt.Equal(post.UpdatedAt) {
		t.Fatalf("expected equal timestamps on create, got %v and %v", post.CreatedAt, post.UpdatedAt)
	}
	if want := []string{"go", "web"}; !reflect.DeepEqual(post.Tags, want) {
		t.Fatalf("expected normalized tags %v, got %v", want, post.Tags)
	}

	stored, err := repo.FindBySlug(ctx, "hello")
	if err != nil || stored == nil {
		t.Fatalf("expected stored post: %v", err)
	}

	doc := readMirror(t, dir, "hello")
	if doc.Title != post.Title || doc.Markdown != post.Content || !reflect.DeepEqual(doc.Tags, post.Tags) {
		t.Fatalf("mirror does not match post: %+v", doc)
	}
	if doc.Excerpt != post.Excerpt || doc.ReadTime != post.ReadTime || doc.Category != post.Category || doc.Status != post.Status {
		t.Fatalf("mirror metadata does not match post: %+v", doc)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, repo, _ := setupPostService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput("dup")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Create(ctx, validInput("dup"))
	if !errs.IsConflict(err) {
		t.Fatalf("expected a conflict, got %v", err)
	}

	all, _ := repo.FindAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected a single post, got %d", len(all))
	}
}

func TestCreateValidationLeavesNoState(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *models.PostInput)
		check  func(error) bool
	}{
		{name: "missing title", mutate: func(in *models.PostInput) { in.Title = "" }, check: errs.IsMissingRequiredFieldError},
		{name: "missing content", mutate: func(in *models.PostInput) { in.Content = "" }, check: errs.IsMissingRequiredFieldError},
		{name: "path traversal slug", mutate: func(in *models.PostInput) { in.Slug = "../escape" }, check: errs.IsInvalidFieldError},
		{name: "slug with spaces", mutate: func(in *models.PostInput) { in.Slug = "two words" }, check: errs.IsInvalidFieldError},
		{name: "unknown status", mutate: func(in *models.PostInput) { in.Status = "archived" }, check: errs.IsInvalidFieldError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, dir := setupPostService(t)
			in := validInput("valid")
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}

			all, _ := repo.FindAll(context.Background())
			if len(all) != 0 {
				t.Fatalf("expected no stored posts, got %d", len(all))
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("expected no mirror files, got %d", len(entries))
			}
		})
	}
}

func TestCreateReportsMirrorFailure(t *testing.T) {
	db, err := database.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	defer db.Close(context.Background())

	// a regular file where the mirror directory should be
	blocked := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create blocking file: %v", err)
	}
	svc := NewPostService(db.PostRepo(), NewFileMirror(blocked), nil)

	result, err := svc.Create(context.Background(), validInput("unmirrored"))
	if err != nil {
		t.Fatalf("a mirror failure must not fail the create: %v", err)
	}
	if !result.Persisted || result.Mirrored || result.MirrorError == "" {
		t.Fatalf("expected persisted but not mirrored, got %+v", result)
	}

	stored, _ := db.PostRepo().FindBySlug(context.Background(), "unmirrored")
	if stored == nil {
		t.Fatal("expected the post to stay in the database")
	}
}

func TestUpdateRenamesMirrorFile(t *testing.T) {
	svc, _, dir := setupPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("old-slug"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newSlug := "new-slug"
	newTitle := "Renamed"
	result, err := svc.Update(ctx, created.Post.ID, models.PostPatch{Slug: &newSlug, Title: &newTitle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || !result.Mirrored {
		t.Fatalf("expected a mirrored update, got %+v", result)
	}
	if result.Post.Slug != newSlug || result.Post.Title != newTitle || result.Post.Content != created.Post.Content {
		t.Fatalf("unexpected post after update %+v", result.Post)
	}
	if !result.Post.UpdatedAt.After(created.Post.UpdatedAt) {
		t.Fatalf("expected updatedAt to move forward")
	}

	if _, err := os.Stat(filepath.Join(dir, "old-slug.md")); !os.IsNotExist(err) {
		t.Fatalf("expected old mirror file to be removed, stat err: %v", err)
	}
	if doc := readMirror(t, dir, newSlug); doc.Title != newTitle {
		t.Fatalf("expected renamed mirror to carry the new title, got %q", doc.Title)
	}
}

func TestUpdateMissingAndConflicting(t *testing.T) {
	svc, _, _ := setupPostService(t)
	ctx := context.Background()

	result, err := svc.Update(ctx, "does-not-exist", models.PostPatch{})
	if err != nil || result != nil {
		t.Fatalf("expected nil result for a missing post, got %+v, %v", result, err)
	}

	first, _ := svc.Create(ctx, validInput("first"))
	if _, err := svc.Create(ctx, validInput("second")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	taken := "second"
	if _, err := svc.Update(ctx, first.Post.ID, models.PostPatch{Slug: &taken}); !errs.IsConflict(err) {
		t.Fatalf("expected a conflict when renaming onto a taken slug, got %v", err)
	}

	empty := ""
	if _, err := svc.Update(ctx, first.Post.ID, models.PostPatch{Title: &empty}); !errs.IsValidationError(err) {
		t.Fatalf("expected a validation error for an empty title, got %v", err)
	}
}

func TestDeleteRemovesRecordAndMirror(t *testing.T) {
	svc, repo, dir := setupPostService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput("doomed"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deleted, err := svc.Delete(ctx, created.Post.ID)
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %v, %v", deleted, err)
	}
	if got, _ := repo.FindBySlug(ctx, "doomed"); got != nil {
		t.Fatal("expected the record to be gone")
	}
	if _, err := os.Stat(filepath.Join(dir, "doomed.md")); !os.IsNotExist(err) {
		t.Fatalf("expected the mirror file to be gone, stat err: %v", err)
	}

	deleted, err = svc.Delete(ctx, created.Post.ID)
	if err != nil || deleted {
		t.Fatalf("expected false for an already deleted post, got %v, %v", deleted, err)
	}
}

func TestIncrementView(t *testing.T) {
	svc, _, _ := setupPostService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validInput("viewed")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if found, err := svc.IncrementView(ctx, "viewed"); err != nil || !found {
			t.Fatalf("increment failed: %v, %v", found, err)
		}
	}
	post, _ := svc.GetBySlug(ctx, "viewed")
	if post.ViewCount != 4 {
		t.Fatalf("expected 4 views, got %d", post.ViewCount)
	}

	if found, err := svc.IncrementView(ctx, "missing"); err != nil || found {
		t.Fatalf("expected not found, got %v, %v", found, err)
	}
}

func TestConcurrentIncrementsOnDistinctSlugs(t *testing.T) {
	svc, _, _ := setupPostService(t)
	ctx := context.Background()

	const perSlug = 50
	slugs := []string{"a1", "b1"}
	for _, slug := range slugs {
		if _, err := svc.Create(ctx, validInput(slug)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var g errgroup.Group
	for i := 0; i < perSlug; i++ {
		for _, slug := range slugs {
			g.Go(func() error {
				found, err := svc.IncrementView(ctx, slug)
				if err == nil && !found {
					return fmt.Errorf("post %s not found", slug)
				}
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	for _, slug := range slugs {
		post, err := svc.GetBySlug(ctx, slug)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if post.ViewCount != perSlug {
			t.Fatalf("expected %d views on %s, got %d", perSlug, slug, post.ViewCount)
		}
	}
}

func TestListingsAndSearch(t *testing.T) {
	svc, _, _ := setupPostService(t)
	ctx := context.Background()

	draft := validInput("draft-post")
	draft.Status = models.StatusDraft
	draft.Title = "Unreleased Kubernetes notes"
	for _, in := range []models.PostInput{validInput("one"), draft, validInput("two")} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	published, err := svc.ListPublished(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(published) != 2 || published[0].Slug != "two" {
		t.Fatalf("expected two published posts newest first, got %+v", published)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].Slug != "two" || all[1].Slug != "draft-post" {
		t.Fatalf("expected all posts newest first, got %d posts", len(all))
	}

	blank, _ := svc.Search(ctx, "   ")
	if len(blank) != len(published) {
		t.Fatalf("blank search should list published posts, got %d", len(blank))
	}
	if hits, _ := svc.Search(ctx, "kubernetes"); len(hits) != 0 {
		t.Fatalf("drafts must not be searchable, got %d hits", len(hits))
	}
	if hits, _ := svc.Search(ctx, "BODY OF ONE"); len(hits) != 1 || hits[0].Slug != "one" {
		t.Fatalf("expected a case-insensitive content match, got %+v", hits)
	}

	tagged, _ := svc.ListByTag(ctx, "web")
	if len(tagged) != 2 {
		t.Fatalf("expected two published posts tagged web, got %d", len(tagged))
	}
}

func TestStatsUsesServiceClock(t *testing.T) {
	svc, _, _ := setupPostService(t)
	ctx := context.Background()

	for _, slug := range []string{"a", "b"} {
		if _, err := svc.Create(ctx, validInput(slug)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	svc.IncrementView(ctx, "b")

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPosts != 2 || stats.ThisMonthPosts != 2 || stats.TotalViews != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if len(stats.TopPosts) != 2 || stats.TopPosts[0].Slug != "b" {
		t.Fatalf("expected b to lead top posts, got %+v", stats.TopPosts)
	}
	if stats.TagDistribution["go"] != 2 {
		t.Fatalf("unexpected tag distribution %v", stats.TagDistribution)
	}
}
