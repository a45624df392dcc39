package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
	pub "github.com/DoyleJ11/batalla-naval/pkg/types"
)

//go:embed templates/*.html.tmpl static/*.svg
var files embed.FS

type Page struct {
	tmpl     *template.Template
	basePath string
}

type pageData struct {
	Code     string
	BasePath string
	Prompt   string
	Board    pub.Board
}

func NewPage(basePath string) (*Page, error) {
	tmpl, err := template.New("index.html.tmpl").
		Funcs(template.FuncMap{"iconURL": func(icon string) string { return IconURL(basePath, icon) }}).
		ParseFS(files, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return &Page{tmpl: tmpl, basePath: basePath}, nil
}

func (p *Page) Render(w io.Writer, code string, board pub.Board) error {
	return p.tmpl.Execute(w, pageData{
		Code:     code,
		BasePath: p.basePath,
		Prompt:   engine.ResetPrompt,
		Board:    board,
	})
}

// Assets serves the cell icons; mount it with the prefix stripped.
func Assets() http.Handler {
	static, err := fs.Sub(files, "static")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return http.FileServer(http.FS(static))
}

func IconURL(basePath, icon string) string {
	return basePath + "/assets/" + icon
}
