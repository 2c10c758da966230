package models

import (
	"time"
)

// Post statuses
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Post represents a blog post as stored in the document store and served over the API.
// The slug doubles as the stem of the post's mirror file (<slug>.md).
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt"`
	ReadTime  string    `json:"readTime"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Status    string    `json:"status"`
	ViewCount int64     `json:"viewCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsPublished reports whether the post is visible to readers.
func (p Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// HasTag reports whether tag is one of the post's tags (exact match).
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PostInput is the payload for creating a post.
type PostInput struct {
	Title    string   `json:"title" validate:"required"`
	Slug     string   `json:"slug" validate:"required,slug"`
	Content  string   `json:"content" validate:"required"`
	Excerpt  string   `json:"excerpt"`
	ReadTime string   `json:"readTime"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status" validate:"omitempty,oneof=published draft"`
}

// NewPost builds the record to insert for in. View count starts at zero and both
// timestamps are set to now.
func (in PostInput) NewPost(now time.Time) *Post {
	status := in.Status
	if status == "" {
		status = StatusPublished
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Post{
		Title:     in.Title,
		Slug:      in.Slug,
		Content:   in.Content,
		Excerpt:   in.Excerpt,
		ReadTime:  in.ReadTime,
		Category:  in.Category,
		Tags:      tags,
		Status:    status,
		ViewCount: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PostWriteResult carries both outcomes of a post write: the database write and the
// mirror file write that follows it. A failed database write is returned as an error
// instead, so Persisted is always true on a returned result.
type PostWriteResult struct {
	Post        *Post  `json:"post"`
	Persisted   bool   `json:"persisted"`
	Mirrored    bool   `json:"mirrored"`
	MirrorError string `json:"mirrorError,omitempty"`
}
