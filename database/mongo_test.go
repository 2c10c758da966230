package database

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

func TestPatchUpdateSetsOnlyProvidedFields(t *testing.T) {
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	tags := []string{"go"}
	update := patchUpdate(models.PostPatch{Title: strPtr("New"), Tags: &tags}, now)

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected a $set document, got %#v", update)
	}
	if len(set) != 3 {
		t.Fatalf("expected title, tags and updatedAt, got %#v", set)
	}
	if set["title"] != "New" || !set["updatedAt"].(time.Time).Equal(now) {
		t.Fatalf("unexpected $set %#v", set)
	}
	if got := set["tags"].([]string); len(got) != 1 || got[0] != "go" {
		t.Fatalf("unexpected tags %#v", set["tags"])
	}
}

func TestSearchFilterQuotesQuery(t *testing.T) {
	filter := searchFilter("c++ (intro)")
	if filter["status"] != models.StatusPublished {
		t.Fatalf("search must be limited to published posts: %#v", filter)
	}

	clauses := filter["$or"].(bson.A)
	if len(clauses) != 3 {
		t.Fatalf("expected three clauses, got %d", len(clauses))
	}
	re := clauses[0].(bson.M)["title"].(primitive.Regex)
	if re.Pattern != `c\+\+ \(intro\)` || re.Options != "i" {
		t.Fatalf("unexpected regex %+v", re)
	}
}

func TestObjectIDRejectsGarbage(t *testing.T) {
	if _, ok := objectID("not-an-id"); ok {
		t.Fatal("expected invalid hex to be rejected")
	}
	oid := primitive.NewObjectID()
	if got, ok := objectID(oid.Hex()); !ok || got != oid {
		t.Fatalf("expected %s to parse, got %s", oid.Hex(), got.Hex())
	}
}

func TestPostDocumentRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	post := models.PostInput{Title: "T", Slug: "s", Content: "c"}.NewPost(created)

	doc := newPostDocument(post)
	doc.ID = primitive.NewObjectID()
	got := doc.toModel()

	if got.ID != doc.ID.Hex() || got.Slug != "s" || got.Status != models.StatusPublished {
		t.Fatalf("unexpected model %+v", got)
	}
	if got.Tags == nil || !got.CreatedAt.Equal(created) {
		t.Fatalf("expected empty tags and preserved timestamps, got %+v", got)
	}
}

func TestMongoErrorClassification(t *testing.T) {
	if err := mongoError("find", "posts", errors.New("server selection error: context deadline exceeded")); !errs.IsDatabaseConnectionError(err) {
		t.Fatalf("expected a connectivity error, got %v", err)
	}
	if err := mongoError("find", "posts", errors.New("bad query")); !errs.IsDatabaseQueryError(err) {
		t.Fatalf("expected a query error, got %v", err)
	}
}
