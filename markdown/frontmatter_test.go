package markdown

import (
	"reflect"
	"testing"
)

func TestParseWithoutFrontMatterUsesDefaults(t *testing.T) {
	input := "# Just markdown\n\nNo metadata here.\n"
	doc := Parse(input)

	want := Document{
		Title:    "Untitled",
		Excerpt:  "No excerpt available",
		ReadTime: "5 min read",
		Category: "General",
		Tags:     []string{},
		Status:   "published",
		Markdown: input,
	}
	if !reflect.DeepEqual(doc, want) {
		t.Fatalf("expected %+v, got %+v", want, doc)
	}
}

func TestParseKeepsInputWithUnclosedBlock(t *testing.T) {
	input := "---\ntitle: Never closed\n\nbody"
	doc := Parse(input)
	if doc.Title != DefaultTitle || doc.Markdown != input {
		t.Fatalf("expected the whole input as markdown with defaults, got %+v", doc)
	}
}

func TestParsePartialFrontMatter(t *testing.T) {
	input := "---\ntitle: Hello World\ntags: go, web ,  testing\n---\nBody text\n"
	doc := Parse(input)

	if doc.Title != "Hello World" {
		t.Fatalf("expected title %q, got %q", "Hello World", doc.Title)
	}
	if doc.Excerpt != DefaultExcerpt || doc.ReadTime != DefaultReadTime || doc.Category != DefaultCategory {
		t.Fatalf("missing keys should fall back to defaults, got %+v", doc)
	}
	if doc.Status != DefaultStatus {
		t.Fatalf("expected status %q, got %q", DefaultStatus, doc.Status)
	}
	if want := []string{"go", "web", "testing"}; !reflect.DeepEqual(doc.Tags, want) {
		t.Fatalf("expected tags %v, got %v", want, doc.Tags)
	}
	if doc.Markdown != "Body text\n" {
		t.Fatalf("unexpected body %q", doc.Markdown)
	}
}

func TestParseFieldEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, doc Document)
	}{
		{
			name:  "empty tags line",
			input: "---\ntags:\n---\nbody",
			check: func(t *testing.T, doc Document) {
				if len(doc.Tags) != 0 || doc.Tags == nil {
					t.Fatalf("expected empty non-nil tags, got %#v", doc.Tags)
				}
			},
		},
		{
			name:  "empty excerpt is kept empty",
			input: "---\nexcerpt:\nreadTime: 3 min read\n---\nbody",
			check: func(t *testing.T, doc Document) {
				if doc.Excerpt != "" {
					t.Fatalf("expected empty excerpt, got %q", doc.Excerpt)
				}
				if doc.ReadTime != "3 min read" {
					t.Fatalf("empty value must not swallow the next line, got readTime %q", doc.ReadTime)
				}
			},
		},
		{
			name:  "value containing a colon",
			input: "---\ntitle: Go: the good parts\n---\nbody",
			check: func(t *testing.T, doc Document) {
				if doc.Title != "Go: the good parts" {
					t.Fatalf("unexpected title %q", doc.Title)
				}
			},
		},
		{
			name:  "draft status",
			input: "---\nstatus: draft\n---\nbody",
			check: func(t *testing.T, doc Document) {
				if doc.Status != "draft" {
					t.Fatalf("expected draft, got %q", doc.Status)
				}
			},
		},
		{
			name:  "crlf line endings",
			input: "---\r\ntitle: Windows\r\ncategory: Ops\r\n---\r\nbody\r\n",
			check: func(t *testing.T, doc Document) {
				if doc.Title != "Windows" || doc.Category != "Ops" {
					t.Fatalf("unexpected fields %+v", doc)
				}
				if doc.Markdown != "body\r\n" {
					t.Fatalf("unexpected body %q", doc.Markdown)
				}
			},
		},
		{
			name:  "unknown keys and junk lines are ignored",
			input: "---\nauthor: someone\nnot a pair\ntitle: Kept\n---\nbody",
			check: func(t *testing.T, doc Document) {
				if doc.Title != "Kept" {
					t.Fatalf("unexpected title %q", doc.Title)
				}
			},
		},
		{
			name:  "closing delimiter at end of file",
			input: "---\ntitle: Only metadata\n---",
			check: func(t *testing.T, doc Document) {
				if doc.Title != "Only metadata" || doc.Markdown != "" {
					t.Fatalf("unexpected doc %+v", doc)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Parse(tt.input))
		})
	}
}

func TestSerializeFieldOrder(t *testing.T) {
	doc := Document{
		Title:    "Title",
		Excerpt:  "Short",
		ReadTime: "2 min read",
		Category: "Go",
		Tags:     []string{"a", "b"},
		Status:   "draft",
		Markdown: "# Heading\n\ntext",
	}

	want := "---\n" +
		"title: Title\n" +
		"excerpt: Short\n" +
		"readTime: 2 min read\n" +
		"category: Go\n" +
		"tags: a, b\n" +
		"status: draft\n" +
		"---\n" +
		"\n" +
		"# Heading\n\ntext"

	if got := Serialize(doc); got != want {
		t.Fatalf("unexpected serialization:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	docs := []Document{
		{
			Title:    "Round trip",
			Excerpt:  "An excerpt",
			ReadTime: "7 min read",
			Category: "Engineering",
			Tags:     []string{"go", "markdown"},
			Status:   "published",
			Markdown: "# Round trip\n\nSome *content*.\n",
		},
		{
			Title:    "Empty optionals",
			Excerpt:  "",
			ReadTime: "",
			Category: "",
			Tags:     []string{},
			Status:   "draft",
			Markdown: "body",
		},
		{
			Title:    "Leading blank line in body",
			Excerpt:  "x",
			ReadTime: "1 min read",
			Category: "General",
			Tags:     []string{"solo"},
			Status:   "published",
			Markdown: "\n\n---\nnot front matter\n---\n",
		},
		{
			Title:    "CRLF body",
			Excerpt:  "Written on Windows",
			ReadTime: "2 min read",
			Category: "General",
			Tags:     []string{},
			Status:   "published",
			Markdown: "line one\r\nline two\r\n",
		},
		{
			Title:    "CRLF leading blank line",
			Excerpt:  "x",
			ReadTime: "1 min read",
			Category: "General",
			Tags:     []string{},
			Status:   "published",
			Markdown: "\r\nafter a blank line\r\n",
		},
	}

	for _, doc := range docs {
		t.Run(doc.Title, func(t *testing.T) {
			got := Parse(Serialize(doc))
			if !reflect.DeepEqual(got, doc) {
				t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, doc)
			}
		})
	}
}
