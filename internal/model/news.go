package model

// NewsItem is one search result. Published is display text as provided by
// the source and is not parsed.
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}
