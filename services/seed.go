package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/markdown"
	"github.com/rpupo63/blog-backend/models"
)

const seedReadWorkers = 8

// SeedReport counts what a seeding run did with the files it found.
type SeedReport struct {
	Scanned  int `json:"scanned"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type seedFile struct {
	name string
	doc  markdown.Document
	err  error
}

// SeedFromFiles inserts a post for every <slug>.md file in dir whose slug is not stored
// yet. Existing posts are never overwritten and no mirror files are written, so running
// it again inserts nothing. A missing dir seeds nothing.
func (s *PostService) SeedFromFiles(ctx context.Context, dir string) (SeedReport, error) {
	var report SeedReport

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Str("dir", dir).Msg("Posts directory does not exist, skipping seeding")
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("failed to read posts directory %s: %w", dir, err)
	}

	files := make([]seedFile, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".md" {
			files = append(files, seedFile{name: e.Name()})
		}
	}

	// parse concurrently, insert in directory order
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedReadWorkers)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, files[i].name))
			if err != nil {
				files[i].err = err
				return nil
			}
			files[i].doc = markdown.Parse(string(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, f := range files {
		report.Scanned++
		slug := strings.TrimSuffix(f.name, ".md")

		if f.err != nil {
			s.logger.Warn().Err(f.err).Str("file", f.name).Msg("Could not read post file, skipping")
			report.Skipped++
			continue
		}
		if !ValidSlug(slug) {
			s.logger.Warn().Str("file", f.name).Msg("File name is not a valid slug, skipping")
			report.Skipped++
			continue
		}

		existing, err := s.repo.FindBySlug(ctx, slug)
		if err != nil {
			return report, err
		}
		if existing != nil {
			report.Skipped++
			continue
		}

		post := postFromDocument(slug, f.doc, s.now())
		if err := s.repo.Add(ctx, post); err != nil {
			if errs.IsAlreadyExists(err) {
				report.Skipped++
				continue
			}
			return report, err
		}
		report.Inserted++
		s.logger.Debug().Str("slug", slug).Msg("Seeded post")
	}

	s.logger.Info().
		Str("dir", dir).
		Int("scanned", report.Scanned).
		Int("inserted", report.Inserted).
		Int("skipped", report.Skipped).
		Msg("Seeding finished")

	return report, nil
}

// postFromDocument builds the record seeded for a parsed file. A status other than draft
// is treated as published.
func postFromDocument(slug string, doc markdown.Document, now time.Time) *models.Post {
	status := models.StatusPublished
	if doc.Status == models.StatusDraft {
		status = models.StatusDraft
	}
	return &models.Post{
		Title:     doc.Title,
		Slug:      slug,
		Content:   doc.Markdown,
		Excerpt:   doc.Excerpt,
		ReadTime:  doc.ReadTime,
		Category:  doc.Category,
		Tags:      doc.Tags,
		Status:    status,
		ViewCount: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
