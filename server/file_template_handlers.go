package server

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

// ParsePage parses name together with the shared layout. Pages define "title" and
// "content" blocks and are executed through the layout.
func ParsePage(name string) (*template.Template, error) {
	tmpl, err := ParseTemplate(layoutTemplate)
	if err != nil {
		return nil, err
	}
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	if _, err := tmpl.New(name).Parse(string(content)); err != nil {
		return nil, err
	}
	return tmpl, nil
}
