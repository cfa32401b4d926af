package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"wmlconv/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context  string
	Name     string
	Ext      string
	Format   string
	Title    string
	Author   string
	Language string
	Date     string
}

func expandTemplate(src *source, name config.TemplateFieldName, field string, format config.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	ext := filepath.Ext(src.name)
	values := Values{
		Context:  string(name),
		Name:     strings.TrimSuffix(filepath.Base(src.name), ext),
		Ext:      strings.TrimPrefix(ext, "."),
		Format:   format.String(),
		Title:    src.meta.Title,
		Author:   src.meta.Author,
		Language: src.meta.Language,
		Date:     src.meta.Date,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
