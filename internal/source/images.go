package source

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ListImages returns the ordered image pool under root. Numeric-named
// top-level entries come first in numeric order, then remaining entries
// lexicographically (case-insensitive); directories are expanded (sorted
// filenames) before root-level loose images are appended. Paths are
// de-duplicated. A missing or unreadable root yields an empty pool.
func ListImages(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	isDir := make(map[string]bool, len(entries))

	for _, e := range entries {
		names = append(names, e.Name())
		isDir[e.Name()] = e.IsDir()
	}

	sortNumericFirst(names)

	var (
		images []string
		seen   = make(map[string]bool)
	)

	appendImage := func(path string) {
		if !seen[path] {
			seen[path] = true
			images = append(images, path)
		}
	}

	for _, name := range names {
		if !isDir[name] {
			continue
		}

		dir := filepath.Join(root, name)

		children, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		childNames := make([]string, 0, len(children))

		for _, c := range children {
			if !c.IsDir() && isImageFile(c.Name()) {
				childNames = append(childNames, c.Name())
			}
		}

		sort.Strings(childNames)

		for _, c := range childNames {
			appendImage(filepath.Join(dir, c))
		}
	}

	// Root-level loose images come after expanded directories.
	loose := make([]string, 0, len(names))

	for _, name := range names {
		if !isDir[name] && isImageFile(name) {
			loose = append(loose, name)
		}
	}

	sort.Strings(loose)

	for _, name := range loose {
		appendImage(filepath.Join(root, name))
	}

	return images
}

// sortNumericFirst orders entry names with numeric names first (by value),
// then the rest lexicographically, case-insensitive.
func sortNumericFirst(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ni, iok := numericName(names[i])
		nj, jok := numericName(names[j])

		switch {
		case iok && jok:
			return ni < nj
		case iok:
			return true
		case jok:
			return false
		default:
			return strings.ToLower(names[i]) < strings.ToLower(names[j])
		}
	})
}

// numericName parses an all-digit entry name.
func numericName(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return n, true
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}
