package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/rpupo63/blog-backend/models"
)

func statsPost(slug, status string, views int64, created time.Time, tags ...string) models.Post {
	return models.Post{Slug: slug, Status: status, ViewCount: views, CreatedAt: created, Tags: tags}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, time.Now())
	if stats.TotalPosts != 0 || stats.TotalViews != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.TopPosts == nil || stats.TagDistribution == nil {
		t.Fatal("expected empty, non-nil collections")
	}
}

func TestComputeStatsCounts(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	monthAgo := now.AddDate(0, -1, 0)

	posts := []models.Post{
		statsPost("old", models.StatusPublished, 10, monthAgo.Add(-time.Second), "go"),
		statsPost("boundary", models.StatusPublished, 3, monthAgo, "go", "web"),
		statsPost("recent-draft", models.StatusDraft, 100, now.Add(-time.Hour), "web"),
	}

	stats := ComputeStats(posts, now)
	if stats.TotalPosts != 3 || stats.PublishedPosts != 2 || stats.DraftPosts != 1 {
		t.Fatalf("unexpected status counts %+v", stats)
	}
	if stats.ThisMonthPosts != 2 {
		t.Fatalf("expected the boundary post to count as this month, got %d", stats.ThisMonthPosts)
	}
	if stats.TotalViews != 113 {
		t.Fatalf("expected views over all posts, got %d", stats.TotalViews)
	}
	if stats.TagDistribution["go"] != 2 || stats.TagDistribution["web"] != 2 {
		t.Fatalf("unexpected tag distribution %v", stats.TagDistribution)
	}
	if len(stats.TopPosts) != 2 || stats.TopPosts[0].Slug != "old" {
		t.Fatalf("drafts must not appear in top posts, got %+v", stats.TopPosts)
	}
}

func TestComputeStatsTopPosts(t *testing.T) {
	now := time.Now().UTC()
	views := []int64{5, 9, 5, 1, 9, 7, 5}

	var posts []models.Post
	for i, v := range views {
		posts = append(posts, statsPost(fmt.Sprintf("p%d", i), models.StatusPublished, v, now))
	}

	stats := ComputeStats(posts, now)
	var got []string
	for _, p := range stats.TopPosts {
		got = append(got, p.Slug)
	}

	// equal view counts keep insertion order
	want := []string{"p1", "p4", "p5", "p0", "p2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected top posts %v, got %v", want, got)
	}
}
