package patterns

import "strings"

// matchesFile reports whether a single applicability entry covers filename.
// "*" covers every file, "*suffix" is a suffix match, and a literal entry
// matches the exact filename or a path ending in "/<entry>"
func matchesFile(entry, filename string) bool {
	if entry == "*" {
		return true
	}
	if strings.HasPrefix(entry, "*") {
		return strings.HasSuffix(filename, entry[1:])
	}
	return filename == entry || strings.HasSuffix(filename, "/"+entry)
}

// appliesTo reports whether the pattern's file list covers filename.
// An empty list covers nothing
func (p Pattern) appliesTo(filename string) bool {
	for _, f := range p.files {
		if matchesFile(f, filename) {
			return true
		}
	}
	return false
}
