package services

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/markdown"
	"github.com/rpupo63/blog-backend/models"
)

// Mirror keeps a file copy of every post outside the database.
type Mirror interface {
	Write(post models.Post) error
	Remove(slug string) error
}

// FileMirror writes posts as <dir>/<slug>.md in the front-matter format read at seeding.
type FileMirror struct {
	dir string
}

func NewFileMirror(dir string) *FileMirror {
	return &FileMirror{dir: dir}
}

// Path returns the mirror file location for slug.
func (m *FileMirror) Path(slug string) string {
	return filepath.Join(m.dir, slug+".md")
}

// Write replaces the mirror file of post. Readers never observe a partially written file.
func (m *FileMirror) Write(post models.Post) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return errs.NewMirrorWriteError(post.Slug, err)
	}

	content := markdown.Serialize(markdown.Document{
		Title:    post.Title,
		Excerpt:  post.Excerpt,
		ReadTime: post.ReadTime,
		Category: post.Category,
		Tags:     post.Tags,
		Status:   post.Status,
		Markdown: post.Content,
	})
	if err := atomic.WriteFile(m.Path(post.Slug), strings.NewReader(content)); err != nil {
		return errs.NewMirrorWriteError(post.Slug, err)
	}
	return nil
}

// Remove deletes the mirror file of slug. A file that is already gone is not an error.
func (m *FileMirror) Remove(slug string) error {
	err := os.Remove(m.Path(slug))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errs.NewMirrorRemoveError(slug, err)
}
