// Package schemas provides access to embedded JSON schemas.
package schemas

import (
	_ "embed"
)

// Embed the command spec JSON Schema into the binary for export and tooling.
// The schema mirrors the checks pkg/spec performs and enables IDE
// autocompletion and schema-guided spec generation.
//
//go:embed command-spec.schema.json
var commandSpecSchema []byte

// GetCommandSpecSchema returns the embedded command spec JSON Schema as raw bytes.
func GetCommandSpecSchema() []byte {
	return commandSpecSchema
}

// GetCommandSpecSchemaString returns the embedded command spec JSON Schema as a string.
func GetCommandSpecSchemaString() string {
	return string(commandSpecSchema)
}
