// Package data holds the files embedded into the testvox binary.
package data

import (
	"embed"
	"io/fs"
)

//go:embed schemas
var schemas embed.FS

// Schemas returns the embedded JSON schemas, rooted at the schemas directory.
func Schemas() fs.FS {
	sub, err := fs.Sub(schemas, "schemas")
	if err != nil {
		// only fails on an invalid path, which is a constant
		panic(err)
	}
	return sub
}

// GetAllFilenames return all file names under path in fsys.
func GetAllFilenames(fsys fs.FS, path string) (files []string, err error) {
	if err := fs.WalkDir(fsys, path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		files = append(files, path)

		return nil
	}); err != nil {
		return nil, err
	}

	return files, nil
}
