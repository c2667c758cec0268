// Package migrations embeds the archive schema so the migrate binary does
// not depend on its working directory.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed *.sql
var files embed.FS

// Direction selects which half of a migration to apply
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Schema is the only migration the archive needs
const Schema = "001_create_schema"

// Read returns the SQL for the schema migration in the given direction
func Read(direction Direction) (string, string, error) {
	if direction != Up && direction != Down {
		return "", "", fmt.Errorf("unknown migration direction %q", direction)
	}
	name := fmt.Sprintf("%s.%s.sql", Schema, direction)
	content, err := files.ReadFile(name)
	if err != nil {
		return "", "", fmt.Errorf("failed to read migration %s: %w", name, err)
	}
	return name, string(content), nil
}
