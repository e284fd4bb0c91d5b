// Package web embeds the dashboard page. The page is a self-contained
// client: it fetches the user list, computes status and countdown locally,
// and issues the create/update calls.
package web

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var staticFS embed.FS

func DashboardHandler() gin.HandlerFunc {
	page, err := staticFS.ReadFile("static/index.html")

	if err != nil {
		// embed guarantees the file is present at build time
		panic(err)
	}

	return func(ctx *gin.Context) {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
}
