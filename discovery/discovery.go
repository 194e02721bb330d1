// Package discovery scans the source data directories and turns matching
// files into units of load work.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ShapefileItem is one admin boundary file to import. DeleteTable items
// create a fresh table and are safe to run in parallel (distinct targets);
// append items insert into an existing table and must run one at a time.
type ShapefileItem struct {
	FilePath    string
	Table       string
	Schema      string
	Spatial     bool // false for a standalone DBF (attributes only)
	DeleteTable bool
}

// GnafLoadItems walks dir for <prefix>_<table>.psv files and returns one
// COPY statement per file, targeting schema. File paths are translated to
// serverDir, the path of the same directory as seen by the Postgres server
// process (which may be a different host or OS).
func GnafLoadItems(dir, serverDir, schema, prefix string) ([]string, error) {
	prefix = strings.ToLower(prefix)

	var stmts []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := strings.ToLower(d.Name())
		if !strings.HasPrefix(name, prefix+"_") || !strings.HasSuffix(name, ".psv") {
			return nil
		}

		table := strings.Replace(name, prefix+"_", "", 1)
		table = strings.ReplaceAll(table, "_psv", "")
		table = strings.TrimSuffix(table, ".psv")

		stmts = append(stmts, fmt.Sprintf("COPY %s.%s FROM '%s' DELIMITER '|' CSV HEADER;",
			schema, table, TranslatePath(path, dir, serverDir)))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stmts, nil
}

// TranslatePath maps a local file path to the Postgres server's view of it.
// When the server is POSIX and the orchestrator is Windows, backslashes are
// fixed up too.
func TranslatePath(path, localDir, serverDir string) string {
	path = strings.Replace(path, localDir, serverDir, 1)
	if strings.HasPrefix(serverDir, "/") {
		path = strings.ReplaceAll(path, "\\", "/")
	}
	return path
}

// ShapefileLoadItems walks dir for <state>_<table>.shp files and standalone
// <state>_<table>_shp.dbf files, mapping each to table aus_<table> in
// schema. The first file seen for a table goes on the create list; files
// for the same table from later states go on the append list.
func ShapefileLoadItems(dir string, states []string, schema string) (creates, appends []ShapefileItem, err error) {
	seen := make(map[string]bool)

	for _, state := range states {
		prefix := strings.ToLower(state) + "_"

		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			name := strings.ToLower(d.Name())
			if !strings.HasPrefix(name, prefix) {
				return nil
			}

			item := ShapefileItem{Schema: schema}

			switch {
			case strings.HasSuffix(name, ".shp"):
				item.Spatial = true
				item.FilePath = path
			case strings.HasSuffix(name, "_shp.dbf") &&
				!strings.HasSuffix(name, "_polygon_shp.dbf") &&
				!strings.HasSuffix(name, "_point_shp.dbf"):
				// standalone DBF - attribute data with no geometry file
				item.FilePath = path
			default:
				return nil
			}

			item.Table = "aus_" + trimShapefileName(name, prefix)

			// the Towns folder carries a duplicate locality DBF
			if strings.Contains(strings.ToLower(path), "town points") &&
				strings.HasSuffix(name, "_locality_shp.dbf") {
				return nil
			}

			if !seen[item.Table] {
				seen[item.Table] = true
				item.DeleteTable = true
				creates = append(creates, item)
			} else {
				appends = append(appends, item)
			}

			return nil
		})
		if walkErr != nil {
			return nil, nil, walkErr
		}
	}

	return creates, appends, nil
}

func trimShapefileName(name, prefix string) string {
	table := strings.Replace(name, prefix, "", 1)
	table = strings.TrimSuffix(table, ".dbf")
	table = strings.TrimSuffix(table, ".shp")
	table = strings.TrimSuffix(table, "_shp")
	return table
}
