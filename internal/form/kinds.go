package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/upload"
)

// MaxAttachmentSize is the size limit sent with every attachment upload.
const MaxAttachmentSize = 20 << 20

// Attachment describes the single file an editor may upload and the field
// its URL lands in.
type Attachment struct {
	Field          string
	MIMEType       string
	TypeMessage    string
	SuccessMessage string
	FailedMessage  string
	Options        upload.Options
}

// Kind describes one editable record type: its fields, which of them are
// required, the messages shown to the user and how fields become a payload.
type Kind[T content.Record, I any] struct {
	Fields          []string
	Required        []string
	RequiredMessage string
	SavedMessage    string
	FailedMessage   string
	Attachment      *Attachment

	Defaults   func(now time.Time) map[string]string
	FromRecord func(T) map[string]string
	Input      func(map[string]string) I
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(content.DateLayout)
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return date(*t)
}

// PaperKind edits research papers and accepts a PDF attachment.
var PaperKind = Kind[content.ResearchPaper, content.PaperInput]{
	Fields:          []string{"title", "abstract", "pdfUrl", "publishedAt"},
	Required:        []string{"title", "abstract"},
	RequiredMessage: "Title and abstract are required",
	SavedMessage:    "Research paper saved successfully!",
	FailedMessage:   "Failed to save paper",
	Attachment: &Attachment{
		Field:          "pdfUrl",
		MIMEType:       "application/pdf",
		TypeMessage:    "Please upload a PDF file",
		SuccessMessage: "PDF uploaded successfully!",
		FailedMessage:  "Failed to upload PDF",
		Options: upload.Options{
			BucketName:   "files",
			FolderPath:   "pdfs",
			MaxFileSize:  MaxAttachmentSize,
			AllowedTypes: []string{"application/pdf"},
		},
	},
	Defaults: func(now time.Time) map[string]string {
		return map[string]string{"publishedAt": date(now)}
	},
	FromRecord: func(p content.ResearchPaper) map[string]string {
		return map[string]string{
			"title":       p.Title,
			"abstract":    p.Abstract,
			"pdfUrl":      p.PDFURL,
			"publishedAt": date(p.PublishedAt),
		}
	},
	Input: func(f map[string]string) content.PaperInput {
		return content.PaperInput{Title: f["title"], Abstract: f["abstract"], PDFURL: f["pdfUrl"], PublishedAt: f["publishedAt"]}
	},
}

// TeachingKind edits teaching experiences.
var TeachingKind = Kind[content.TeachingExperience, content.TeachingInput]{
	Fields:          []string{"subject", "institution", "startDate", "endDate"},
	Required:        []string{"subject", "institution", "startDate"},
	RequiredMessage: "Subject, institution, and start date are required",
	SavedMessage:    "Teaching experience saved successfully!",
	FailedMessage:   "Failed to save teaching experience",
	Defaults:        func(time.Time) map[string]string { return map[string]string{} },
	FromRecord: func(e content.TeachingExperience) map[string]string {
		return map[string]string{
			"subject":     e.Subject,
			"institution": e.Institution,
			"startDate":   date(e.StartDate),
			"endDate":     optionalDate(e.EndDate),
		}
	},
	Input: func(f map[string]string) content.TeachingInput {
		return content.TeachingInput{Subject: f["subject"], Institution: f["institution"], StartDate: f["startDate"], EndDate: f["endDate"]}
	},
}

// PostKind edits blog posts. tags is a comma separated list and published
// is parsed with strconv.ParseBool.
var PostKind = Kind[content.BlogPost, content.PostInput]{
	Fields:          []string{"title", "content", "excerpt", "tags", "coverImageUrl", "published", "publishedAt"},
	Required:        []string{"title", "content"},
	RequiredMessage: "Title and content are required",
	SavedMessage:    "Blog post saved successfully!",
	FailedMessage:   "Failed to save post",
	Defaults:        func(time.Time) map[string]string { return map[string]string{"published": "false"} },
	FromRecord: func(p content.BlogPost) map[string]string {
		return map[string]string{
			"title":         p.Title,
			"content":       p.Content,
			"excerpt":       p.Excerpt,
			"tags":          strings.Join(p.Tags, ", "),
			"coverImageUrl": p.CoverImageURL,
			"published":     strconv.FormatBool(p.Published),
			"publishedAt":   optionalDate(p.PublishedAt),
		}
	},
	Input: func(f map[string]string) content.PostInput {
		published, _ := strconv.ParseBool(f["published"])
		var tags []string
		for _, t := range strings.Split(f["tags"], ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		return content.PostInput{
			Title:         f["title"],
			Content:       f["content"],
			Excerpt:       f["excerpt"],
			Tags:          tags,
			CoverImageURL: f["coverImageUrl"],
			Published:     published,
			PublishedAt:   f["publishedAt"],
		}
	},
}
