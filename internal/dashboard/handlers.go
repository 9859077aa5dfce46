package dashboard

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folioadmin/folioadmin/internal/apiclient"
	"github.com/folioadmin/folioadmin/internal/content"
)

// page is the data every template receives.
type page struct {
	Title         string
	Authenticated bool
	Resources     []content.Resource
	EditorAPIKey  string
	Notice        string
	Error         string
	Data          any
}

type row struct {
	ID    string
	Label string
	Cells []string
}

type field struct {
	Name  string
	Value string
}

type listView struct {
	Resource content.Resource
	Rows     []row
}

type detailView struct {
	Resource content.Resource
	ID       string
	Label    string
	Fields   []field
	NotFound bool
}

type newsletterView struct {
	Subscribers []content.Item
	Form        content.Newsletter
}

func (s *Server) render(c *gin.Context, status int, name, title string, data any) {
	p := page{
		Title:         title,
		Authenticated: s.sessions.State().IsAuthenticated,
		Resources:     content.All(),
		EditorAPIKey:  s.config.Editor.APIKey,
		Notice:        c.Query("notice"),
		Data:          data,
	}
	if msg, ok := c.Get("error"); ok {
		p.Error, _ = msg.(string)
	}
	c.HTML(status, name, p)
}

// failed renders a backend failure. A 401 from the backend means the
// stored token is no longer accepted, so the session is dropped.
func (s *Server) failed(c *gin.Context, name, title string, res apiclient.Response, data any) {
	if res.Status == http.StatusUnauthorized {
		if err := s.sessions.Logout(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear rejected session")
		}
		c.Redirect(http.StatusSeeOther, "/login?notice=Session+expired.+Please+log+in+again")
		return
	}
	c.Set("error", res.Message)
	s.render(c, statusFor(res), name, title, data)
}

// statusFor maps an envelope onto the status the page is served with.
func statusFor(res apiclient.Response) int {
	switch res.Kind {
	case apiclient.KindValidation:
		return http.StatusUnprocessableEntity
	case apiclient.KindUnauthorized:
		return http.StatusUnauthorized
	case apiclient.KindNotFound:
		return http.StatusNotFound
	case apiclient.KindHTTP:
		if res.Status >= http.StatusBadRequest {
			return res.Status
		}
	}
	return http.StatusBadGateway
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "online",
		"timestamp":     time.Now().UTC(),
		"service":       "folioadmin-dashboard",
		"authenticated": s.sessions.State().IsAuthenticated,
	})
}

func (s *Server) loginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "login", "Log in", content.Credentials{})
}

func (s *Server) login(c *gin.Context) {
	creds := content.Credentials{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	res := s.content.Login(c.Request.Context(), creds, s.sessions)
	if !res.Success {
		c.Set("error", res.Message)
		status := statusFor(res)
		if res.Kind == apiclient.KindHTTP || res.Kind == apiclient.KindNotFound {
			status = http.StatusUnauthorized
		}
		creds.Password = ""
		s.render(c, status, "login", "Log in", creds)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) logout(c *gin.Context) {
	if err := s.sessions.Logout(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to erase persisted token")
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) overview(c *gin.Context) {
	counts := s.content.Overview(c.Request.Context())
	s.render(c, http.StatusOK, "overview", "Overview", counts)
}

func (s *Server) resource(c *gin.Context) (content.Resource, bool) {
	r, ok := content.Lookup(c.Param("resource"))
	if !ok {
		s.notFound(c)
	}
	return r, ok
}

func (s *Server) manageList(c *gin.Context) {
	r, ok := s.resource(c)
	if !ok {
		return
	}

	listing := s.content.List(c.Request.Context(), r)
	view := listView{Resource: r}
	if !listing.Success {
		s.failed(c, "list", r.Title, listing.Response, view)
		return
	}

	view.Rows = make([]row, 0, len(listing.Items))
	for _, item := range listing.Items {
		cells := make([]string, 0, len(r.Columns))
		for _, col := range r.Columns {
			cells = append(cells, truncate(item.String(col), 80))
		}
		view.Rows = append(view.Rows, row{ID: item.ID(), Label: item.Label(), Cells: cells})
	}
	s.render(c, http.StatusOK, "list", r.Title, view)
}

func (s *Server) manageDetail(c *gin.Context) {
	r, ok := s.resource(c)
	if !ok {
		return
	}

	id := c.Param("id")
	view := detailView{Resource: r, ID: id}

	item, res := s.content.Get(c.Request.Context(), r, id)
	if !res.Success {
		if res.Kind == apiclient.KindNotFound {
			view.NotFound = true
			s.render(c, http.StatusNotFound, "detail", r.Title, view)
			return
		}
		s.failed(c, "detail", r.Title, res, view)
		return
	}

	view.Label = item.Label()
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		view.Fields = append(view.Fields, field{Name: k, Value: item.String(k)})
	}
	s.render(c, http.StatusOK, "detail", r.Title, view)
}

func (s *Server) manageDelete(c *gin.Context) {
	r, ok := s.resource(c)
	if !ok {
		return
	}

	id := c.Param("id")
	res := s.content.Delete(c.Request.Context(), r, id)
	if !res.Success {
		s.failed(c, "list", r.Title, res, listView{Resource: r})
		return
	}
	c.Redirect(http.StatusSeeOther, "/manage/"+r.Name+"?notice=Deleted+"+id)
}

func (s *Server) subscriberPage(c *gin.Context) {
	view := newsletterView{}
	listing := s.content.List(c.Request.Context(), content.Subscribers)
	if !listing.Success {
		s.failed(c, "newsletter", "Subscribers", listing.Response, view)
		return
	}
	view.Subscribers = listing.Items
	s.render(c, http.StatusOK, "newsletter", "Subscribers", view)
}

func (s *Server) sendNewsletter(c *gin.Context) {
	n := content.Newsletter{
		Subject:    strings.TrimSpace(c.PostForm("subject")),
		Content:    c.PostForm("content"),
		Recipients: c.PostFormArray("recipients"),
		SendToAll:  c.PostForm("sendToAll") == "on",
	}

	res := s.content.SendNewsletter(c.Request.Context(), n)
	if !res.Success {
		view := newsletterView{Form: n}
		if listing := s.content.List(c.Request.Context(), content.Subscribers); listing.Success {
			view.Subscribers = listing.Items
		}
		s.failed(c, "newsletter", "Subscribers", res, view)
		return
	}
	c.Redirect(http.StatusSeeOther, "/manage-subscriber?notice=Newsletter+sent")
}

func (s *Server) notFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "not_found", "Not found", c.Request.URL.Path)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
