package models

// PostField names an updatable post attribute.
type PostField string

const (
	FieldTitle    PostField = "title"
	FieldSlug     PostField = "slug"
	FieldContent  PostField = "content"
	FieldExcerpt  PostField = "excerpt"
	FieldReadTime PostField = "readTime"
	FieldCategory PostField = "category"
	FieldTags     PostField = "tags"
	FieldStatus   PostField = "status"
)

// FieldChange is a single field set by a PostPatch.
// Value is a string for every field except FieldTags, where it is a []string.
type FieldChange struct {
	Field PostField
	Value any
}

// PostPatch is a partial update of a post. Nil fields are left untouched.
type PostPatch struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,min=1"`
	Slug     *string   `json:"slug,omitempty" validate:"omitempty,slug"`
	Content  *string   `json:"content,omitempty" validate:"omitempty,min=1"`
	Excerpt  *string   `json:"excerpt,omitempty"`
	ReadTime *string   `json:"readTime,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Status   *string   `json:"status,omitempty" validate:"omitempty,oneof=published draft"`
}

// IsEmpty reports whether the patch sets no fields.
func (p PostPatch) IsEmpty() bool {
	return len(p.Changes()) == 0
}

// Changes returns the fields set by the patch in a fixed order.
func (p PostPatch) Changes() []FieldChange {
	var changes []FieldChange
	addString := func(field PostField, v *string) {
		if v != nil {
			changes = append(changes, FieldChange{Field: field, Value: *v})
		}
	}

	addString(FieldTitle, p.Title)
	addString(FieldSlug, p.Slug)
	addString(FieldContent, p.Content)
	addString(FieldExcerpt, p.Excerpt)
	addString(FieldReadTime, p.ReadTime)
	addString(FieldCategory, p.Category)
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		changes = append(changes, FieldChange{Field: FieldTags, Value: tags})
	}
	addString(FieldStatus, p.Status)

	return changes
}

// Apply merges the patch into post field by field.
func (p PostPatch) Apply(post *Post) {
	for _, c := range p.Changes() {
		switch c.Field {
		case FieldTitle:
			post.Title = c.Value.(string)
		case FieldSlug:
			post.Slug = c.Value.(string)
		case FieldContent:
			post.Content = c.Value.(string)
		case FieldExcerpt:
			post.Excerpt = c.Value.(string)
		case FieldReadTime:
			post.ReadTime = c.Value.(string)
		case FieldCategory:
			post.Category = c.Value.(string)
		case FieldTags:
			post.Tags = c.Value.([]string)
		case FieldStatus:
			post.Status = c.Value.(string)
		}
	}
}
