package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const problemContentType = "application/problem+json"

// ProblemDetails follows RFC 7807.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

func writeProblem(c *gin.Context, status int, detail string) {
	pd := &ProblemDetails{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
	}
	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(status, pd)
}

func writeNotFound(c *gin.Context, detail string) {
	writeProblem(c, http.StatusNotFound, detail)
}

func writeBadRequest(c *gin.Context, detail string) {
	writeProblem(c, http.StatusBadRequest, detail)
}

func writeInternalServerError(c *gin.Context, err error) {
	writeProblem(c, http.StatusInternalServerError, err.Error())
}
