// Package assets embeds the manifest JSON schemas shipped with the binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_schemas
var schemaFS embed.FS

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Kind string // manifest kind the schema validates
	Path string // embed path
}

// Registry lists embedded schemas available at runtime.
// Update this when adding/removing curated schema assets.
var Registry = []SchemaInfo{
	{Kind: "version", Path: "embedded_schemas/version.schema.json"},
	{Kind: "installer", Path: "embedded_schemas/installer.schema.json"},
	{Kind: "defaultLocale", Path: "embedded_schemas/defaultLocale.schema.json"},
	{Kind: "locale", Path: "embedded_schemas/locale.schema.json"},
	{Kind: "singleton", Path: "embedded_schemas/singleton.schema.json"},
}

// GetSchema returns the embedded schema bytes by embed path.
func GetSchema(path string) ([]byte, bool) {
	data, err := schemaFS.ReadFile(path)
	return data, err == nil
}

// GetSchemasFS returns the schema tree rooted at the embedded directory.
func GetSchemasFS() fs.FS {
	if sub, err := fs.Sub(schemaFS, "embedded_schemas"); err == nil {
		return sub
	}
	return schemaFS
}
