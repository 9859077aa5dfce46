package content

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/folioadmin/folioadmin/internal/apiclient"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// BlogCategory groups blog posts.
type BlogCategory struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description" yaml:"description"`
}

// Experience is one work experience entry.
type Experience struct {
	Designation    string   `json:"designation" yaml:"designation" validate:"required"`
	Company        string   `json:"company" yaml:"company" validate:"required"`
	Desc           string   `json:"desc" yaml:"desc"`
	StartYear      string   `json:"startYear" yaml:"startYear" validate:"required"`
	EndYear        string   `json:"endYear" yaml:"endYear"`
	KeyAchievement []string `json:"keyAchievement" yaml:"keyAchievement"`
	Learn          []string `json:"learn" yaml:"learn"`
}

// Skill is a single skill inside a category.
type Skill struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Icon  string `json:"icon" yaml:"icon" validate:"required"`
	Level string `json:"level" yaml:"level"`
}

// SkillSet is a skill category together with its skills.
type SkillSet struct {
	Category string  `json:"category" yaml:"category" validate:"required"`
	Skills   []Skill `json:"skills" yaml:"skills" validate:"dive"`
}

// Link is an icon + URL pair used by the footer.
type Link struct {
	Icon string `json:"icon" yaml:"icon"`
	URL  string `json:"url" yaml:"url"`
}

// FooterContent is the site footer.
type FooterContent struct {
	Email         string   `json:"email" yaml:"email" validate:"required"`
	Phone         string   `json:"phone" yaml:"phone"`
	Content       string   `json:"content" yaml:"content"`
	Location      string   `json:"location" yaml:"location"`
	FollowMeLinks []Link   `json:"followMeLinks" yaml:"followMeLinks" validate:"dive"`
	SocialLinks   []Link   `json:"socialLinks" yaml:"socialLinks" validate:"dive"`
	Services      []string `json:"services" yaml:"services"`
}

// Newsletter is sent to all subscribers or to an explicit recipient list.
type Newsletter struct {
	Subject    string   `json:"subject" yaml:"subject" validate:"required"`
	Content    string   `json:"content" yaml:"content" validate:"required"`
	Recipients []string `json:"recipients" yaml:"recipients" validate:"dive,required"`
	SendToAll  bool     `json:"sendToAll" yaml:"sendToAll"`
}

// Blog is a blog post. It is sent as multipart because of the thumbnail.
type Blog struct {
	Title                  string    `yaml:"title" validate:"required"`
	Desc                   string    `yaml:"desc" validate:"required"`
	Date                   time.Time `yaml:"date"`
	ReadTime               string    `yaml:"readTime"`
	IsFeatured             bool      `yaml:"isFeatured"`
	Category               string    `yaml:"category" validate:"required"`
	Tags                   []string  `yaml:"tags"`
	ShareLink              string    `yaml:"shareLink"`
	RelatedBlogs           []string  `yaml:"relatedBlogs"`
	AuthorName             string    `yaml:"authorName"`
	AuthorDesc             string    `yaml:"authorDesc"`
	AuthorGithubLink       string    `yaml:"authorGithubLink"`
	AuthorPortfolioLink    string    `yaml:"authorPortfolioLink"`
	AuthorOtherProfileLink string    `yaml:"authorOtherProfileLink"`
	Content                string    `yaml:"content" validate:"required"`

	// ThumbnailPath is a local image uploaded as thumbnailImg.
	ThumbnailPath string `yaml:"thumbnail"`
}

// Form encodes the post the way the blog endpoints expect: lists joined
// with commas and the date as RFC 3339.
func (b Blog) Form() (*apiclient.Form, error) {
	f := apiclient.NewForm().
		Set("title", b.Title).
		Set("desc", b.Desc).
		Set("readTime", b.ReadTime).
		Set("isFeatured", strconv.FormatBool(b.IsFeatured)).
		Set("category", b.Category).
		Set("tags", strings.Join(b.Tags, ",")).
		Set("shareLink", b.ShareLink).
		Set("relatedBlogs", strings.Join(b.RelatedBlogs, ",")).
		Set("authorName", b.AuthorName).
		Set("authorDesc", b.AuthorDesc).
		Set("authorGithubLink", b.AuthorGithubLink).
		Set("authorPortfolioLink", b.AuthorPortfolioLink).
		Set("authorOtherProfileLink", b.AuthorOtherProfileLink).
		Set("content", b.Content)

	if !b.Date.IsZero() {
		f.Set("date", b.Date.UTC().Format(time.RFC3339))
	}
	if b.ThumbnailPath != "" {
		f.AttachPath("thumbnailImg", b.ThumbnailPath)
	}
	return f, nil
}

// TechChallenge is a question/answer pair shown on a project page.
type TechChallenge struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Project is a portfolio project. It is sent as multipart because of the
// thumbnail.
type Project struct {
	Title                           string          `yaml:"title" validate:"required"`
	Desc                            string          `yaml:"desc" validate:"required"`
	TechUsed                        []string        `yaml:"techUsed"`
	Category                        string          `yaml:"category"`
	Tags                            []string        `yaml:"tags"`
	GithubLink                      string          `yaml:"githubLink"`
	LivePreviewLink                 string          `yaml:"livePreviewLink"`
	KeyFeatures                     []string        `yaml:"keyFeatures"`
	IsFeatured                      bool            `yaml:"isFeatured"`
	Client                          string          `yaml:"client"`
	CompleteDate                    time.Time       `yaml:"completeDate"`
	TechnicalChallengesAndSolutions []TechChallenge `yaml:"technicalChallengesAndSolutions"`
	AboutProjectContent             string          `yaml:"aboutProjectContent"`

	ThumbnailPath string `yaml:"thumbnail"`
}

// Form encodes the project the way the project endpoints expect: list
// fields as JSON arrays and empty challenge rows dropped.
func (p Project) Form() (*apiclient.Form, error) {
	challenges := make([]TechChallenge, 0, len(p.TechnicalChallengesAndSolutions))
	for _, tc := range p.TechnicalChallengesAndSolutions {
		if strings.TrimSpace(tc.Question) != "" || strings.TrimSpace(tc.Answer) != "" {
			challenges = append(challenges, tc)
		}
	}

	f := apiclient.NewForm().
		Set("title", p.Title).
		Set("desc", p.Desc).
		Set("category", p.Category).
		Set("githubLink", p.GithubLink).
		Set("livePreviewLink", p.LivePreviewLink).
		Set("isFeatured", strconv.FormatBool(p.IsFeatured)).
		Set("client", p.Client).
		Set("aboutProjectContent", p.AboutProjectContent)

	lists := []struct {
		name  string
		value any
	}{
		{"techUsed", nonNil(p.TechUsed)},
		{"tags", nonNil(p.Tags)},
		{"keyFeatures", nonNil(p.KeyFeatures)},
		{"technicalChallengesAndSolutions", challenges},
	}
	for _, l := range lists {
		encoded, err := json.Marshal(l.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", l.name, err)
		}
		f.Set(l.name, string(encoded))
	}

	if !p.CompleteDate.IsZero() {
		f.Set("completeDate", p.CompleteDate.UTC().Format(time.RFC3339))
	}
	if p.ThumbnailPath != "" {
		f.AttachPath("thumbnailImg", p.ThumbnailPath)
	}
	return f, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Item is one record as returned by the backend.
type Item map[string]any

// ID returns the record's identifier.
func (i Item) ID() string {
	for _, key := range []string{"_id", "id"} {
		if v, ok := i[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Label returns the first non-empty display field.
func (i Item) Label() string {
	for _, key := range []string{"title", "name", "designation", "category", "subject", "email"} {
		if s, ok := i[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// String returns the named field rendered as text.
func (i Item) String(key string) string {
	v, ok := i[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fmt.Sprint(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// SkillCategory renames an existing skill category.
type SkillCategory struct {
	Category string `json:"category" yaml:"category" validate:"required"`
}
