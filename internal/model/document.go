package model

import (
	"fmt"
	"strings"
)

// TemplateType is the extension of a document's template file.
type TemplateType string

const (
	TemplateDOCX TemplateType = "docx"
	TemplateMD   TemplateType = "md"
	TemplateHTML TemplateType = "html"
	TemplateTXT  TemplateType = "txt"
)

// DefaultTemplateType is used when a document is created without an explicit type.
const DefaultTemplateType = TemplateDOCX

// TemplateTypes lists the supported template types in display order.
func TemplateTypes() []TemplateType {
	return []TemplateType{TemplateDOCX, TemplateMD, TemplateHTML, TemplateTXT}
}

// TemplateTypeNames returns TemplateTypes as plain strings (for flag help and prompts).
func TemplateTypeNames() []string {
	types := TemplateTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// ParseTemplateType validates a template type name.
func ParseTemplateType(s string) (TemplateType, error) {
	for _, t := range TemplateTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: invalid report type: %s. Must be one of [%s]", ErrValidation, s, strings.Join(TemplateTypeNames(), ", "))
}

// ReadMode returns how a rendered file of this type is read when exported.
func (t TemplateType) ReadMode() ReadMode {
	if t == TemplateDOCX {
		return ModeBinary
	}
	return ModeText
}

// ReadMode tells an exporter whether the source file is binary or text.
type ReadMode string

const (
	ModeBinary ReadMode = "rb"
	ModeText   ReadMode = "r"
)

// DocumentConfig is the content of a document's config.json.
type DocumentConfig struct {
	DefaultExportName string         `json:"default_export_name"`
	Kwargs            map[string]any `json:"kwargs"`
	TemplateSchema    map[string]any `json:"template_schema"`
	RequiredModules   []string       `json:"required_modules"`
	TemplateType      TemplateType   `json:"template_type"`

	// LegacyRequiredModules is the misspelled key written by older versions.
	LegacyRequiredModules []string `json:"require_modules,omitempty"`
}

// NewDocumentConfig returns the config written for a freshly scaffolded document.
func NewDocumentConfig(name string, templateType TemplateType) *DocumentConfig {
	return &DocumentConfig{
		DefaultExportName: name,
		Kwargs:            map[string]any{},
		TemplateSchema:    map[string]any{},
		RequiredModules:   []string{},
		TemplateType:      templateType,
	}
}

// Requirements returns required_modules, falling back to the legacy key.
func (c *DocumentConfig) Requirements() []string {
	if len(c.RequiredModules) > 0 {
		return c.RequiredModules
	}
	return c.LegacyRequiredModules
}

// ExportFileName is the name of the rendered file handed to the exporter.
func (c *DocumentConfig) ExportFileName(documentName string) string {
	name := c.DefaultExportName
	if name == "" {
		name = documentName
	}
	return name + "." + string(c.TemplateType)
}
