package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Template names
const (
	templateIndex  = "index.html"
	templateReport = "report.html"
)

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// renderTemplate executes a template into a buffer first so a template
// error never leaves a half written page
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("[Templates] rendering %s failed: %v", name, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed"})
		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
