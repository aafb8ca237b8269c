// Package render writes templ components to gin responses.
package render

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// HTML renders component with the given status. Render failures are attached
// to the context so the logging middleware reports them.
func HTML(c *gin.Context, status int, component templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")

	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, "failed to render page")
		}
	}
}
