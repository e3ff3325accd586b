package api

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFS embed.FS

// SetupStaticRoutes sets up routes for serving the embedded chat client
func SetupStaticRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		serveStaticFile(c, "index.html")
	})
	r.GET("/app.js", func(c *gin.Context) {
		serveStaticFile(c, "app.js")
	})
	r.GET("/style.css", func(c *gin.Context) {
		serveStaticFile(c, "style.css")
	})
}

func serveStaticFile(c *gin.Context, filename string) {
	content, err := staticFS.ReadFile("static/" + filename)
	if err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	contentType := "text/html; charset=utf-8"
	if len(filename) > 3 && filename[len(filename)-3:] == ".js" {
		contentType = "application/javascript"
	} else if len(filename) > 4 && filename[len(filename)-4:] == ".css" {
		contentType = "text/css"
	}

	c.Data(http.StatusOK, contentType, content)
}
