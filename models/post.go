package models

import (
	"time"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post represents a generated blog post.
// Collection: posts
type Post struct {
	ID            string       `bson:"_id,omitempty" firestore:"-" json:"id"`
	Title         string       `bson:"title,omitempty" firestore:"title,omitempty" json:"title,omitempty"`
	Slug          string       `bson:"slug,omitempty" firestore:"slug,omitempty" json:"slug,omitempty"`
	Content       string       `bson:"content" firestore:"content" json:"content"`
	Excerpt       string       `bson:"excerpt,omitempty" firestore:"excerpt,omitempty" json:"excerpt,omitempty"`
	Tags          []string     `bson:"tags" firestore:"tags" json:"tags"`
	Thumbnails    []string     `bson:"thumbnails" firestore:"thumbnails" json:"thumbnails"`
	Status        PostStatus   `bson:"status" firestore:"status" json:"status"`
	PublishedAt   time.Time    `bson:"publishedAt" firestore:"publishedAt" json:"publishedAt"`
	CreatedAt     time.Time    `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time    `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"`
	Author        string       `bson:"author" firestore:"author" json:"author"`
	AuthorID      string       `bson:"authorId" firestore:"authorId" json:"authorId"`
	GeneratedByAI bool         `bson:"generatedByAI" firestore:"generatedByAI" json:"generatedByAI"`
	AIModelUsed   string       `bson:"aiModelUsed" firestore:"aiModelUsed" json:"aiModelUsed"`
	Metadata      PostMetadata `bson:"metadata" firestore:"metadata" json:"metadata"`
}

// CoverImage is the first thumbnail, used as the primary visual.
func (p Post) CoverImage() string {
	if len(p.Thumbnails) == 0 {
		return ""
	}
	return p.Thumbnails[0]
}

type PostMetadata struct {
	ReadingTime           int      `bson:"readingTime,omitempty" firestore:"readingTime,omitempty" json:"readingTime,omitempty"`
	ImageCount            int      `bson:"imageCount" firestore:"imageCount" json:"imageCount"`
	ThumbnailDescriptions []string `bson:"thumbnailDescriptions" firestore:"thumbnailDescriptions" json:"thumbnailDescriptions"`
	MetaDescription       string   `bson:"metaDescription,omitempty" firestore:"metaDescription,omitempty" json:"metaDescription,omitempty"`
	Keywords              []string `bson:"keywords,omitempty" firestore:"keywords,omitempty" json:"keywords,omitempty"`
}
