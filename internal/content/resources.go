package content

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
)

// Resource describes how one content type maps onto backend endpoints.
type Resource struct {
	Name  string // CLI and dashboard name
	Title string // human readable plural
	Path  string // collection path

	// ListField and ItemField name the envelope field holding the payload;
	// "" means the body itself is the payload.
	ListField string
	ItemField string

	CreatePath   string // defaults to Path
	UpdatePath   string // printf pattern with the id, defaults to Path/%s
	UpdateMethod string
	DeletePath   string // printf pattern with the id, defaults to Path/%s

	// Multipart resources send *apiclient.Form bodies.
	Multipart bool
	// Protected resources need a token even to read.
	Protected bool
	// ReadOnly resources have no create/update/delete endpoints.
	ReadOnly bool

	// Columns are shown in listings after the id and label.
	Columns []string
}

func (r Resource) createPath() string {
	if r.CreatePath != "" {
		return r.CreatePath
	}
	return r.Path
}

func (r Resource) itemPath(id string) string {
	return fmt.Sprintf("%s/%s", r.Path, url.PathEscape(id))
}

func (r Resource) updatePath(id string) string {
	if r.UpdatePath != "" {
		return fmt.Sprintf(r.UpdatePath, url.PathEscape(id))
	}
	return r.itemPath(id)
}

func (r Resource) deletePath(id string) string {
	if r.DeletePath != "" {
		return fmt.Sprintf(r.DeletePath, url.PathEscape(id))
	}
	return r.itemPath(id)
}

func (r Resource) updateMethod() string {
	if r.UpdateMethod != "" {
		return r.UpdateMethod
	}
	return http.MethodPatch
}

var (
	Blogs = Resource{
		Name: "blog", Title: "Blogs", Path: "/blog",
		ListField: "data", ItemField: "data",
		UpdateMethod: http.MethodPut,
		Multipart:    true,
		Columns:      []string{"category", "readTime", "isFeatured"},
	}
	BlogCategories = Resource{
		Name: "category", Title: "Blog categories", Path: "/blogCategory",
		Columns: []string{"description"},
	}
	Experiences = Resource{
		Name: "exp", Title: "Experience", Path: "/exp",
		CreatePath: "/exp/create",
		Columns:    []string{"company", "startYear", "endYear"},
	}
	SkillSets = Resource{
		Name: "skill", Title: "Skills", Path: "/skills",
		CreatePath: "/skills/create",
		UpdatePath: "/skills/category/%s",
		Columns:    []string{"skills"},
	}
	Projects = Resource{
		Name: "project", Title: "Projects", Path: "/project",
		ListField: "projects",
		Multipart: true,
		Columns:   []string{"category", "client", "isFeatured"},
	}
	Footers = Resource{
		Name: "footer", Title: "Footer content", Path: "/footerContent",
		ListField: "data", ItemField: "data",
		Columns: []string{"phone", "location"},
	}
	Subscribers = Resource{
		Name: "subscriber", Title: "Subscribers", Path: "/subscribe/list",
		Protected: true,
		ReadOnly:  true,
		Columns:   []string{"createdAt"},
	}
)

var registry = map[string]Resource{}

func init() {
	for _, r := range []Resource{Blogs, BlogCategories, Experiences, SkillSets, Projects, Footers, Subscribers} {
		registry[r.Name] = r
	}
}

// Lookup returns the resource registered under name.
func Lookup(name string) (Resource, bool) {
	r, ok := registry[name]
	return r, ok
}

// All returns every resource ordered by name.
func All() []Resource {
	out := make([]Resource, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
