package services

import (
	"sort"
	"time"

	"github.com/rpupo63/blog-backend/models"
)

const topPostsLimit = 5

// ComputeStats summarises posts, given in insertion order. Posts created within the
// month before now count towards ThisMonthPosts. TopPosts holds the most viewed
// published posts, keeping insertion order among equal view counts.
func ComputeStats(posts []models.Post, now time.Time) models.PostStats {
	stats := models.PostStats{
		TotalPosts:      len(posts),
		TopPosts:        []models.Post{},
		TagDistribution: map[string]int{},
	}
	monthAgo := now.AddDate(0, -1, 0)

	published := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		switch p.Status {
		case models.StatusPublished:
			stats.PublishedPosts++
			published = append(published, p)
		case models.StatusDraft:
			stats.DraftPosts++
		}
		if !p.CreatedAt.Before(monthAgo) {
			stats.ThisMonthPosts++
		}
		stats.TotalViews += p.ViewCount
		for _, tag := range p.Tags {
			stats.TagDistribution[tag]++
		}
	}

	sort.SliceStable(published, func(i, j int) bool {
		return published[i].ViewCount > published[j].ViewCount
	})
	if len(published) > topPostsLimit {
		published = published[:topPostsLimit]
	}
	stats.TopPosts = append(stats.TopPosts, published...)

	return stats
}
