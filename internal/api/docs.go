package api

import (
	"net/http"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/gin-gonic/gin"
)

// handleDocs renders the API reference from the OpenAPI file in DocsDir.
func (s *Server) handleDocs(c *gin.Context) {
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir(s.opts.DocsDir),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("Grocery Feed API"),
		),
	)
	if err != nil {
		s.logger.Error("render api docs failed", "error", err)
		writeInternalServerError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
