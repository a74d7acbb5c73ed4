package web

import "embed"

// TemplatesFS embeds the page and fragment templates.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the page script and stylesheet.
//go:embed static/*
var StaticFS embed.FS
