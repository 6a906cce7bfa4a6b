// Package migrations embeds the SQL schema applied by scripts/seed.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Script is one migration file.
type Script struct {
	Name string
	SQL  string
}

// Scripts returns the migrations in lexical order.
func Scripts() ([]Script, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]Script, 0, len(names))
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Script{Name: name, SQL: string(body)})
	}
	return out, nil
}
