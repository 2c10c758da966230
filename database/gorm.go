package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// zerologWriter routes gorm's logger output through zerolog.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: logger.New(zerologWriter{}, logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}
}

// OpenPostgres connects to the postgres database at dsn and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (Database, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
	if err != nil {
		return Database{}, errs.NewDatabaseConnectionError("connect", err)
	}

	// Test database connection
	var result int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		return Database{}, errs.NewDatabaseConnectionError("ping", err)
	}

	return NewGorm(ctx, config.DBTypePostgres, db)
}

// OpenSQLite opens (creating if needed) the sqlite database at path and migrates the
// schema. ":memory:" gives a private in-process database.
func OpenSQLite(ctx context.Context, path string) (Database, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return Database{}, errs.NewDatabaseConnectionError("open", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return Database{}, errs.NewDatabaseConnectionError("open", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return NewGorm(ctx, config.DBTypeSQLite, db)
}

// NewGorm migrates the post and contact tables on db and returns repositories over it.
func NewGorm(ctx context.Context, backend string, db *gorm.DB) (Database, error) {
	if err := db.WithContext(ctx).AutoMigrate(&postRow{}, &contactRow{}); err != nil {
		return Database{}, gormError("migrate", "schema", err)
	}

	closeFn := func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return New(backend, NewGormPostRepo(db), NewGormContactRepo(db), closeFn), nil
}

// gormError classifies a gorm error into the errs taxonomy.
func gormError(operation, entity string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.NewAlreadyExists(entity)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, context.DeadlineExceeded):
		return errs.NewDatabaseConnectionError(operation+" "+entity, err)
	default:
		return errs.NewDatabaseError(operation, entity, err)
	}
}

type postRow struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	Title     string `gorm:"not null"`
	Slug      string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Content   string `gorm:"type:text;not null"`
	Excerpt   string `gorm:"type:text"`
	ReadTime  string
	Category  string
	Tags      datatypes.JSONSlice[string]
	Status    string    `gorm:"type:varchar(16);index;not null;default:published"`
	ViewCount int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (postRow) TableName() string {
	return "posts"
}

func (r *postRow) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func newPostRow(p *models.Post) postRow {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postRow{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		Excerpt:   p.Excerpt,
		ReadTime:  p.ReadTime,
		Category:  p.Category,
		Tags:      datatypes.JSONSlice[string](tags),
		Status:    p.Status,
		ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func (r postRow) toModel() models.Post {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return models.Post{
		ID:        r.ID,
		Title:     r.Title,
		Slug:      r.Slug,
		Content:   r.Content,
		Excerpt:   r.Excerpt,
		ReadTime:  r.ReadTime,
		Category:  r.Category,
		Tags:      tags,
		Status:    r.Status,
		ViewCount: r.ViewCount,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

var postColumns = map[models.PostField]string{
	models.FieldTitle:    "title",
	models.FieldSlug:     "slug",
	models.FieldContent:  "content",
	models.FieldExcerpt:  "excerpt",
	models.FieldReadTime: "read_time",
	models.FieldCategory: "category",
	models.FieldTags:     "tags",
	models.FieldStatus:   "status",
}

// patchColumns translates patch into a column map for Updates.
func patchColumns(patch models.PostPatch, updatedAt time.Time) map[string]any {
	cols := map[string]any{"updated_at": updatedAt.UTC()}
	for _, c := range patch.Changes() {
		if c.Field == models.FieldTags {
			cols[postColumns[c.Field]] = datatypes.JSONSlice[string](c.Value.([]string))
			continue
		}
		cols[postColumns[c.Field]] = c.Value
	}
	return cols
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a LIKE pattern matching query literally as a lower-cased substring.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

func rowsToPosts(rows []postRow) []models.Post {
	posts := make([]models.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.toModel())
	}
	return posts
}

type GormPostRepo struct {
	db *gorm.DB
}

func NewGormPostRepo(db *gorm.DB) *GormPostRepo {
	return &GormPostRepo{db}
}

func (r *GormPostRepo) FindPublished(ctx context.Context) ([]models.Post, error) {
	var rows []postRow
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPublished).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, gormError("find", "posts", err)
	}
	return rowsToPosts(rows), nil
}

func (r *GormPostRepo) FindAll(ctx context.Context) ([]models.Post, error) {
	var rows []postRow
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, gormError("find", "posts", err)
	}
	return rowsToPosts(rows), nil
}

func (r *GormPostRepo) findOne(ctx context.Context, column, value string) (*models.Post, error) {
	var row postRow
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, gormError("find", "post", err)
	}
	post := row.toModel()
	return &post, nil
}

func (r *GormPostRepo) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *GormPostRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	return r.findOne(ctx, "id", id)
}

// FindPublishedByTag filters in Go since JSON array membership differs per dialect.
func (r *GormPostRepo) FindPublishedByTag(ctx context.Context, tag string) ([]models.Post, error) {
	published, err := r.FindPublished(ctx)
	if err != nil {
		return nil, err
	}
	tagged := make([]models.Post, 0, len(published))
	for _, p := range published {
		if p.HasTag(tag) {
			tagged = append(tagged, p)
		}
	}
	return tagged, nil
}

// SearchPublished matches query as a case-insensitive literal substring. Postgres folds
// case in SQL; SQLite's LOWER only folds ASCII, so other dialects filter in Go.
func (r *GormPostRepo) SearchPublished(ctx context.Context, query string) ([]models.Post, error) {
	if r.db.Dialector.Name() != "postgres" {
		return r.searchInMemory(ctx, query)
	}

	pattern := likePattern(query)
	var rows []postRow
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPublished).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\' OR LOWER(excerpt) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, gormError("search", "posts", err)
	}
	return rowsToPosts(rows), nil
}

func (r *GormPostRepo) searchInMemory(ctx context.Context, query string) ([]models.Post, error) {
	published, err := r.FindPublished(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matched := make([]models.Post, 0, len(published))
	for _, p := range published {
		if containsFold(p.Title, needle) || containsFold(p.Content, needle) || containsFold(p.Excerpt, needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// containsFold reports whether lowerNeedle occurs in s ignoring case.
func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

func (r *GormPostRepo) Add(ctx context.Context, post *models.Post) error {
	row := newPostRow(post)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return gormError("insert", "post", err)
	}
	post.ID = row.ID
	return nil
}

func (r *GormPostRepo) Update(ctx context.Context, id string, patch models.PostPatch, updatedAt time.Time) (*models.Post, error) {
	var row postRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&postRow{}).Where("id = ?", id).Updates(patchColumns(patch, updatedAt))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, gormError("update", "post", err)
	}
	post := row.toModel()
	return &post, nil
}

func (r *GormPostRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&postRow{})
	if res.Error != nil {
		return false, gormError("delete", "post", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormPostRepo) IncrementViewCount(ctx context.Context, slug string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&postRow{}).
		Where("slug = ?", slug).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return false, gormError("increment views of", "post", res.Error)
	}
	return res.RowsAffected > 0, nil
}

type contactRow struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Subject   string    `gorm:"not null"`
	Message   string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"index;not null;default:false"`
	CreatedAt time.Time `gorm:"index"`
}

func (contactRow) TableName() string {
	return "contact_submissions"
}

func (r *contactRow) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r contactRow) toModel() models.ContactSubmission {
	return models.ContactSubmission{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Subject:   r.Subject,
		Message:   r.Message,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type GormContactRepo struct {
	db *gorm.DB
}

func NewGormContactRepo(db *gorm.DB) *GormContactRepo {
	return &GormContactRepo{db}
}

func (r *GormContactRepo) Add(ctx context.Context, s *models.ContactSubmission) error {
	row := contactRow{
		Name:      s.Name,
		Email:     s.Email,
		Subject:   s.Subject,
		Message:   s.Message,
		IsRead:    s.IsRead,
		CreatedAt: s.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return gormError("insert", "contact submission", err)
	}
	s.ID = row.ID
	return nil
}

func (r *GormContactRepo) FindAll(ctx context.Context) ([]models.ContactSubmission, error) {
	var rows []contactRow
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, gormError("find", "contact submissions", err)
	}
	subs := make([]models.ContactSubmission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toModel())
	}
	return subs, nil
}

func (r *GormContactRepo) MarkRead(ctx context.Context, id string) (*models.ContactSubmission, error) {
	var row contactRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&contactRow{}).Where("id = ?", id).UpdateColumn("is_read", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, gormError("update", "contact submission", err)
	}
	sub := row.toModel()
	return &sub, nil
}

func (r *GormContactRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&contactRow{})
	if res.Error != nil {
		return false, gormError("delete", "contact submission", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormContactRepo) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&contactRow{}).Where("is_read = ?", false).Count(&n).Error; err != nil {
		return 0, gormError("count", "contact submissions", err)
	}
	return n, nil
}
