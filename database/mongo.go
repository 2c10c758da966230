package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

const (
	postsCollection   = "posts"
	contactCollection = "contactSubmissions"
	connectTimeout    = 10 * time.Second
)

// OpenMongo connects to uri, verifies the server answers and returns repositories backed
// by the posts and contactSubmissions collections of dbName.
func OpenMongo(ctx context.Context, uri, dbName string) (Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return Database{}, errs.NewDatabaseConnectionError("connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return Database{}, errs.NewDatabaseConnectionError("ping", err)
	}

	db := client.Database(dbName)
	posts := NewMongoPostRepo(db.Collection(postsCollection))
	if err := posts.EnsureIndexes(ctx); err != nil {
		// existing data with duplicate slugs must not keep the server from starting
		log.Warn().Err(err).Msg("Could not create unique slug index")
	}

	return New(config.DBTypeMongo, posts, NewMongoContactRepo(db.Collection(contactCollection)), client.Disconnect), nil
}

// mongoError classifies a driver error into the errs taxonomy.
func mongoError(operation, entity string, err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return errs.NewAlreadyExists(entity)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded),
		strings.Contains(strings.ToLower(err.Error()), "server selection"):
		return errs.NewDatabaseConnectionError(operation+" "+entity, err)
	default:
		return errs.NewDatabaseError(operation, entity, err)
	}
}

// objectID parses a hex id. Ids that are not ObjectIDs cannot match any document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Slug      string             `bson:"slug"`
	Content   string             `bson:"content"`
	Excerpt   string             `bson:"excerpt"`
	ReadTime  string             `bson:"readTime"`
	Category  string             `bson:"category"`
	Tags      []string           `bson:"tags"`
	Status    string             `bson:"status"`
	ViewCount int64              `bson:"viewCount"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func newPostDocument(p *models.Post) postDocument {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postDocument{
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		Excerpt:   p.Excerpt,
		ReadTime:  p.ReadTime,
		Category:  p.Category,
		Tags:      tags,
		Status:    p.Status,
		ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func (d postDocument) toModel() models.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Slug:      d.Slug,
		Content:   d.Content,
		Excerpt:   d.Excerpt,
		ReadTime:  d.ReadTime,
		Category:  d.Category,
		Tags:      tags,
		Status:    d.Status,
		ViewCount: d.ViewCount,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// patchUpdate translates patch into a $set document. Keys match the bson field names,
// which are the PostField values.
func patchUpdate(patch models.PostPatch, updatedAt time.Time) bson.M {
	set := bson.M{"updatedAt": updatedAt.UTC()}
	for _, c := range patch.Changes() {
		set[string(c.Field)] = c.Value
	}
	return bson.M{"$set": set}
}

// searchFilter matches query literally and case-insensitively on published posts.
func searchFilter(query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{
		"status": models.StatusPublished,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"excerpt": pattern},
		},
	}
}

var (
	newestFirst    = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	insertionOrder = bson.D{{Key: "_id", Value: 1}}
)

type MongoPostRepo struct {
	coll *mongo.Collection
}

func NewMongoPostRepo(coll *mongo.Collection) *MongoPostRepo {
	return &MongoPostRepo{coll: coll}
}

// EnsureIndexes creates the unique slug index and the status/createdAt listing index.
func (r *MongoPostRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return mongoError("index", "posts", err)
	}
	return nil
}

func (r *MongoPostRepo) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, mongoError("find", "posts", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongoError("decode", "posts", err)
	}

	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toModel())
	}
	return posts, nil
}

func (r *MongoPostRepo) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var doc postDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mongoError("find", "post", err)
	}
	post := doc.toModel()
	return &post, nil
}

func (r *MongoPostRepo) FindPublished(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{"status": models.StatusPublished}, newestFirst)
}

func (r *MongoPostRepo) FindAll(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, insertionOrder)
}

func (r *MongoPostRepo) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoPostRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoPostRepo) FindPublishedByTag(ctx context.Context, tag string) ([]models.Post, error) {
	// equality on an array field matches any element
	return r.find(ctx, bson.M{"status": models.StatusPublished, "tags": tag}, newestFirst)
}

func (r *MongoPostRepo) SearchPublished(ctx context.Context, query string) ([]models.Post, error) {
	return r.find(ctx, searchFilter(query), newestFirst)
}

func (r *MongoPostRepo) Add(ctx context.Context, post *models.Post) error {
	res, err := r.coll.InsertOne(ctx, newPostDocument(post))
	if err != nil {
		return mongoError("insert", "post", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid.Hex()
	}
	return nil
}

func (r *MongoPostRepo) Update(ctx context.Context, id string, patch models.PostPatch, updatedAt time.Time) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc postDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		patchUpdate(patch, updatedAt),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mongoError("update", "post", err)
	}
	post := doc.toModel()
	return &post, nil
}

func (r *MongoPostRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, mongoError("delete", "post", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoPostRepo) IncrementViewCount(ctx context.Context, slug string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"slug": slug}, bson.M{"$inc": bson.M{"viewCount": 1}})
	if err != nil {
		return false, mongoError("increment views of", "post", err)
	}
	return res.MatchedCount > 0, nil
}

type contactDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Subject   string             `bson:"subject"`
	Message   string             `bson:"message"`
	IsRead    bool               `bson:"isRead"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d contactDocument) toModel() models.ContactSubmission {
	return models.ContactSubmission{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Subject:   d.Subject,
		Message:   d.Message,
		IsRead:    d.IsRead,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type MongoContactRepo struct {
	coll *mongo.Collection
}

func NewMongoContactRepo(coll *mongo.Collection) *MongoContactRepo {
	return &MongoContactRepo{coll: coll}
}

func (r *MongoContactRepo) Add(ctx context.Context, s *models.ContactSubmission) error {
	res, err := r.coll.InsertOne(ctx, contactDocument{
		Name:      s.Name,
		Email:     s.Email,
		Subject:   s.Subject,
		Message:   s.Message,
		IsRead:    s.IsRead,
		CreatedAt: s.CreatedAt.UTC(),
	})
	if err != nil {
		return mongoError("insert", "contact submission", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

func (r *MongoContactRepo) FindAll(ctx context.Context) ([]models.ContactSubmission, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mongoError("find", "contact submissions", err)
	}
	var docs []contactDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongoError("decode", "contact submissions", err)
	}

	subs := make([]models.ContactSubmission, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, d.toModel())
	}
	return subs, nil
}

func (r *MongoContactRepo) MarkRead(ctx context.Context, id string) (*models.ContactSubmission, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc contactDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isRead": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mongoError("update", "contact submission", err)
	}
	sub := doc.toModel()
	return &sub, nil
}

func (r *MongoContactRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, mongoError("delete", "contact submission", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoContactRepo) CountUnread(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"isRead": false})
	if err != nil {
		return 0, mongoError("count", "contact submissions", err)
	}
	return n, nil
}
