package testing

import (
	"github.com/modwarden/modwarden/internal/catalog"
)

// Project builds a catalog project fixture
func Project(id, slug, title string) catalog.Project {
	return catalog.Project{
		ID:          id,
		Slug:        slug,
		Title:       title,
		Description: title + " does things",
		IconURL:     "https://cdn.example.com/" + slug + ".png",
		Downloads:   1000,
		Author:      "author-" + slug,
	}
}

// Version builds a catalog version fixture with a single primary file
func Version(id, number, versionType, filename, fileURL string) catalog.Version {
	return catalog.Version{
		ID:            id,
		Name:          "Build " + number,
		VersionNumber: number,
		VersionType:   versionType,
		Changelog:     "Changes in " + number,
		Files: []catalog.VersionFile{{
			URL:      fileURL,
			Filename: filename,
			Primary:  true,
			Size:     2048,
		}},
	}
}
