// Package web 提供单页聊天前端
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"researchai/internal/ui"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type researchItem struct {
	Title   string
	Icon    string
	Updated string
	Active  bool
}

type messageView struct {
	Role    string
	Name    string
	Icon    string
	Content template.HTML
	Time    string
}

type pageData struct {
	AppName       string
	Status        ui.ConnectionStatus
	Messages      []messageView
	ResearchItems []researchItem
	Tags          []string
}

var (
	researchItems = []researchItem{
		{Title: "AI Ethics Framework", Icon: "fa-book-open", Updated: "Last updated 2 hours ago", Active: true},
		{Title: "Neural Networks", Icon: "fa-microchip", Updated: "Yesterday"},
	}
	tags = []string{"ethics", "ai-safety", "research"}
)

// Register 在 / 挂载页面，在 /static 挂载静态资源
func Register(router *gin.Engine, appName string) {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(assets))

	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", newPageData(appName, time.Now()))
	})
}

func newPageData(appName string, now time.Time) pageData {
	welcome := ui.Message{Role: ui.RoleAssistant, Content: ui.WelcomeMessage, Timestamp: now}

	return pageData{
		AppName:       appName,
		Status:        ui.StatusChecking,
		Messages:      []messageView{toView(welcome)},
		ResearchItems: researchItems,
		Tags:          tags,
	}
}

func toView(msg ui.Message) messageView {
	icon := "fa-robot"
	if msg.Role == ui.RoleUser {
		icon = "fa-user"
	}

	return messageView{
		Role: string(msg.Role),
		Name: msg.Role.DisplayName(),
		Icon: icon,
		// FormatContent 已经过白名单过滤
		Content: template.HTML(ui.FormatContent(msg.Content)),
		Time:    msg.Time(),
	}
}
