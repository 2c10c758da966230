// Package markdown reads and writes the front-matter file format used for post files
// and renders post content to sanitized HTML.
package markdown

import (
	"strings"
)

const delimiter = "---"

// Defaults used when a key is missing from the front matter.
const (
	DefaultTitle    = "Untitled"
	DefaultExcerpt  = "No excerpt available"
	DefaultReadTime = "5 min read"
	DefaultCategory = "General"
	DefaultStatus   = "published"
)

// Document is a post file split into metadata and markdown body.
type Document struct {
	Title    string
	Excerpt  string
	ReadTime string
	Category string
	Tags     []string
	Status   string
	Markdown string
}

func defaultDocument(body string) Document {
	return Document{
		Title:    DefaultTitle,
		Excerpt:  DefaultExcerpt,
		ReadTime: DefaultReadTime,
		Category: DefaultCategory,
		Tags:     []string{},
		Status:   DefaultStatus,
		Markdown: body,
	}
}

// Parse splits text into front matter and body. It never fails: text without a
// front-matter block is returned whole as the body with every field defaulted, and keys
// missing from a block fall back to their defaults one by one.
func Parse(text string) Document {
	block, body, ok := splitFrontMatter(text)
	if !ok {
		return defaultDocument(text)
	}

	values := parseValues(block)
	doc := defaultDocument(body)
	if v, ok := values["title"]; ok {
		doc.Title = v
	}
	if v, ok := values["excerpt"]; ok {
		doc.Excerpt = v
	}
	if v, ok := values["readTime"]; ok {
		doc.ReadTime = v
	}
	if v, ok := values["category"]; ok {
		doc.Category = v
	}
	if v, ok := values["status"]; ok {
		doc.Status = v
	}
	doc.Tags = splitTags(values["tags"])

	return doc
}

// splitFrontMatter returns the lines between the opening and closing delimiters and the
// body after the closing one. Header lines may end in CRLF; the body is returned as
// written. The blank separator line Serialize writes after the closing delimiter is not
// part of the body.
func splitFrontMatter(text string) (block []string, body string, ok bool) {
	first, rest, more := strings.Cut(text, "\n")
	if !more || strings.TrimSuffix(first, "\r") != delimiter {
		return nil, "", false
	}

	for {
		line, remainder, more := strings.Cut(rest, "\n")
		line = strings.TrimSuffix(line, "\r")
		if line == delimiter {
			if !more {
				return block, "", true
			}
			if after, found := strings.CutPrefix(remainder, "\r\n"); found {
				return block, after, true
			}
			return block, strings.TrimPrefix(remainder, "\n"), true
		}
		if !more {
			return nil, "", false
		}
		block = append(block, line)
		rest = remainder
	}
}

// parseValues reads "key: value" lines. The first occurrence of a key wins.
func parseValues(lines []string) map[string]string {
	values := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, seen := values[key]; seen {
			continue
		}
		values[key] = strings.TrimSpace(value)
	}
	return values
}

func splitTags(raw string) []string {
	tags := []string{}
	if strings.TrimSpace(raw) == "" {
		return tags
	}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Serialize renders doc in the post file format: title, excerpt, readTime, category,
// tags, status, the closing delimiter, a blank line and the raw markdown body.
// Parse(Serialize(doc)) yields doc again for single-line, trimmed field values.
func Serialize(doc Document) string {
	var b strings.Builder
	b.Grow(len(doc.Markdown) + 256)

	b.WriteString(delimiter + "\n")
	writeField(&b, "title", doc.Title)
	writeField(&b, "excerpt", doc.Excerpt)
	writeField(&b, "readTime", doc.ReadTime)
	writeField(&b, "category", doc.Category)
	writeField(&b, "tags", strings.Join(doc.Tags, ", "))
	writeField(&b, "status", doc.Status)
	b.WriteString(delimiter + "\n\n")
	b.WriteString(doc.Markdown)

	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
