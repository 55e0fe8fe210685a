package model

import "time"

// ExampleDocument is the shape of a viral post stored in Elasticsearch.
type ExampleDocument struct {
	ExampleID      string    `json:"example_id"`
	Platform       string    `json:"platform"`
	ContentType    string    `json:"content_type"`
	Text           string    `json:"text"`
	Hook           string    `json:"hook"`
	Hashtags       []string  `json:"hashtags"`
	Author         string    `json:"author"`
	Category       string    `json:"category"`
	Views          int64     `json:"views"`
	Likes          int64     `json:"likes"`
	Shares         int64     `json:"shares"`
	Comments       int64     `json:"comments"`
	EngagementRate float64   `json:"engagement_rate"`
	Vector         []float32 `json:"vector,omitempty"`
	ModelVersion   string    `json:"model_version"`
	IndexedAt      time.Time `json:"indexed_at"`
}

// ToExample converts a stored document into prompt context.
func (d ExampleDocument) ToExample(score float64) RetrievalExample {
	hashtags := d.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	return RetrievalExample{
		ID:             d.ExampleID,
		Content:        d.Text,
		Platform:       d.Platform,
		Category:       d.Category,
		Hashtags:       hashtags,
		Hook:           d.Hook,
		EngagementRate: d.EngagementRate,
		Score:          score,
	}
}

// TrendingPost is one entry of an uploaded trending manifest. Counters are
// optional.
type TrendingPost struct {
	ID          string   `json:"id"`
	Platform    string   `json:"platform"`
	ContentType string   `json:"content_type"`
	Text        string   `json:"text"`
	Hook        string   `json:"hook"`
	Hashtags    []string `json:"hashtags"`
	Author      string   `json:"author"`
	Category    string   `json:"category"`
	Views       int64    `json:"views"`
	Likes       int64    `json:"likes"`
	Shares      int64    `json:"shares"`
	Comments    int64    `json:"comments"`
}

// TrendingManifest is the JSON document uploaded by administrators.
type TrendingManifest struct {
	Source string         `json:"source"`
	Posts  []TrendingPost `json:"posts"`
}
