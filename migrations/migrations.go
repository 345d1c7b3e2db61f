// Package migrations embeds the schema files for every supported dialect
package migrations

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS

// Source returns the embedded files, or dir when an override directory is configured
func Source(dir string) fs.FS {
	if dir == "" {
		return FS
	}
	return os.DirFS(dir)
}
