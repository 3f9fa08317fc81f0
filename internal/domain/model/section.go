package model

// SectionData is the JSON-compatible value stored under one section key.
// The shape of each section is a convention owned by the web layer; the
// stores treat it as opaque.
type SectionData map[string]any

// SiteData is the full mapping of section key to section content.
type SiteData map[string]SectionData

// PagesKey is the section under which per-page content blocks are nested
// (e.g. the "sobre" and "consultas" pages).
const PagesKey = "pages"
