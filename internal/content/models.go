package content

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meta is the bookkeeping shared by every persisted record. It is inlined
// into each record both in JSON and in BSON.
type Meta struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RecordMeta returns the record's bookkeeping fields.
func (m Meta) RecordMeta() Meta { return m }

// Record is implemented by every content type the store persists.
// SortField names the BSON field lists are ordered by (descending) and
// SortKey returns the value of that field.
type Record interface {
	RecordMeta() Meta
	SortKey() time.Time
	SortField() string
}

// Input is a request payload that validates itself into a record of type T.
type Input[T Record] interface {
	Build(meta Meta) (T, error)
}

// ResearchPaper is a published paper with an optional PDF attachment.
type ResearchPaper struct {
	Meta        `bson:",inline"`
	Title       string    `json:"title" bson:"title"`
	Abstract    string    `json:"abstract" bson:"abstract"`
	PDFURL      string    `json:"pdfUrl,omitempty" bson:"pdfUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt" bson:"publishedAt"`
}

func (p ResearchPaper) SortKey() time.Time { return p.PublishedAt }
func (ResearchPaper) SortField() string    { return "publishedAt" }

// BlogPost is a post on the site's blog.
type BlogPost struct {
	Meta          `bson:",inline"`
	Title         string     `json:"title" bson:"title"`
	Content       string     `json:"content" bson:"content"`
	Excerpt       string     `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	Tags          []string   `json:"tags" bson:"tags"`
	CoverImageURL string     `json:"coverImageUrl,omitempty" bson:"coverImageUrl,omitempty"`
	Published     bool       `json:"published" bson:"published"`
	PublishedAt   *time.Time `json:"publishedAt" bson:"publishedAt"`
}

func (p BlogPost) SortKey() time.Time { return p.CreatedAt }
func (BlogPost) SortField() string    { return "createdAt" }

// TeachingExperience is one course or position held at an institution.
type TeachingExperience struct {
	Meta        `bson:",inline"`
	Subject     string     `json:"subject" bson:"subject"`
	Institution string     `json:"institution" bson:"institution"`
	StartDate   time.Time  `json:"startDate" bson:"startDate"`
	EndDate     *time.Time `json:"endDate" bson:"endDate"`
}

func (e TeachingExperience) SortKey() time.Time { return e.StartDate }
func (TeachingExperience) SortField() string    { return "startDate" }
