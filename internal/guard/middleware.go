package guard

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/folioadmin/folioadmin/internal/session"
)

// Middleware adapts g to gin. A blocking decision answers 303 See Other and
// aborts the chain; a passthrough redirect is sent as a Refresh header after
// the page renders.
func Middleware(g Guard, sessions session.Reader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Decide(sessions.State())

		if !d.Render {
			log.Debug().
				Str("path", c.Request.URL.Path).
				Str("redirect", d.Redirect).
				Msg("Guard redirected request")
			c.Redirect(http.StatusSeeOther, d.Redirect)
			c.Abort()
			return
		}

		if d.Redirect != "" {
			c.Header("Refresh", fmt.Sprintf("0; url=%s", d.Redirect))
		}
		c.Next()
	}
}
