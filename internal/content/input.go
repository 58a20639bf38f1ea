package content

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DateLayout is the calendar-date form the forms send.
const DateLayout = "2006-01-02"

// ValidationError reports a payload that cannot become a record. Message is
// safe to show to the user.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: msg}
}

// ParseDate accepts either YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func missing(values map[string]string, order ...string) []string {
	var out []string
	for _, k := range order {
		if strings.TrimSpace(values[k]) == "" {
			out = append(out, k)
		}
	}
	return out
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// PaperInput is the create/update payload for a research paper.
type PaperInput struct {
	Title       string `json:"title"`
	Abstract    string `json:"abstract"`
	PDFURL      string `json:"pdfUrl"`
	PublishedAt string `json:"publishedAt"`
}

// Build validates the payload. An empty publishedAt defaults to today (UTC).
func (in PaperInput) Build(meta Meta) (ResearchPaper, error) {
	if m := missing(map[string]string{"title": in.Title, "abstract": in.Abstract}, "title", "abstract"); len(m) > 0 {
		return ResearchPaper{}, invalid("Title and abstract are required", m...)
	}
	pdf := strings.TrimSpace(in.PDFURL)
	if pdf != "" && !validURL(pdf) {
		return ResearchPaper{}, invalid("PDF URL must be a valid http(s) URL", "pdfUrl")
	}
	published := time.Now().UTC().Truncate(24 * time.Hour)
	if strings.TrimSpace(in.PublishedAt) != "" {
		t, err := ParseDate(in.PublishedAt)
		if err != nil {
			return ResearchPaper{}, invalid("Publication date must be a date (YYYY-MM-DD)", "publishedAt")
		}
		published = t
	}
	return ResearchPaper{
		Meta:        meta,
		Title:       strings.TrimSpace(in.Title),
		Abstract:    strings.TrimSpace(in.Abstract),
		PDFURL:      pdf,
		PublishedAt: published,
	}, nil
}

// PostInput is the create/update payload for a blog post.
type PostInput struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Tags          []string `json:"tags"`
	CoverImageURL string   `json:"coverImageUrl"`
	Published     bool     `json:"published"`
	PublishedAt   string   `json:"publishedAt"`
}

// Build validates the payload. A published post without publishedAt is
// stamped with the record's update time.
func (in PostInput) Build(meta Meta) (BlogPost, error) {
	if m := missing(map[string]string{"title": in.Title, "content": in.Content}, "title", "content"); len(m) > 0 {
		return BlogPost{}, invalid("Title and content are required", m...)
	}
	cover := strings.TrimSpace(in.CoverImageURL)
	if cover != "" && !validURL(cover) {
		return BlogPost{}, invalid("Cover image URL must be a valid http(s) URL", "coverImageUrl")
	}
	published, err := parseOptionalDate(in.PublishedAt)
	if err != nil {
		return BlogPost{}, invalid("Publication date must be a date (YYYY-MM-DD)", "publishedAt")
	}
	if in.Published && published == nil {
		t := meta.UpdatedAt
		published = &t
	}
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return BlogPost{
		Meta:          meta,
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		Excerpt:       strings.TrimSpace(in.Excerpt),
		Tags:          tags,
		CoverImageURL: cover,
		Published:     in.Published,
		PublishedAt:   published,
	}, nil
}

// TeachingInput is the create/update payload for a teaching experience.
type TeachingInput struct {
	Subject     string `json:"subject"`
	Institution string `json:"institution"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Build validates the payload. endDate is optional and stays nil when absent.
func (in TeachingInput) Build(meta Meta) (TeachingExperience, error) {
	vals := map[string]string{"subject": in.Subject, "institution": in.Institution, "startDate": in.StartDate}
	if m := missing(vals, "subject", "institution", "startDate"); len(m) > 0 {
		return TeachingExperience{}, invalid("Subject, institution, and start date are required", m...)
	}
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return TeachingExperience{}, invalid("Start date must be a date (YYYY-MM-DD)", "startDate")
	}
	end, err := parseOptionalDate(in.EndDate)
	if err != nil {
		return TeachingExperience{}, invalid("End date must be a date (YYYY-MM-DD)", "endDate")
	}
	if end != nil && end.Before(start) {
		return TeachingExperience{}, invalid("End date must not be before start date", "endDate")
	}
	return TeachingExperience{
		Meta:        meta,
		Subject:     strings.TrimSpace(in.Subject),
		Institution: strings.TrimSpace(in.Institution),
		StartDate:   start,
		EndDate:     end,
	}, nil
}
