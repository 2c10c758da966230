package models

// PostStats is the admin dashboard summary of the post collection.
type PostStats struct {
	TotalPosts      int            `json:"totalPosts"`
	PublishedPosts  int            `json:"publishedPosts"`
	DraftPosts      int            `json:"draftPosts"`
	ThisMonthPosts  int            `json:"thisMonthPosts"`
	TotalViews      int64          `json:"totalViews"`
	TopPosts        []Post         `json:"topPosts"`
	TagDistribution map[string]int `json:"tagDistribution"`
}
