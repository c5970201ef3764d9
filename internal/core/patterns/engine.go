package patterns

import "strings"

// RepoContext carries the repository attribution for findings
type RepoContext struct {
	Owner   string
	Repo    string
	RepoURL string
	FileURL string
}

// Finding is one masked match inside one file
type Finding struct {
	Owner      string
	Repo       string
	File       string
	Line       int
	SecretType string
	MaskedText string
	RepoURL    string
	FileURL    string
}

// Scan runs every applicable pattern over content and returns one Finding
// per match. Line numbers are 1-based; a line can yield several findings
// for the same pattern when it matches more than once
func (e *Engine) Scan(content, filename string, rc RepoContext) []Finding {
	var out []Finding
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		for _, p := range e.patterns {
			if !p.appliesTo(filename) {
				continue
			}
			for _, loc := range p.re.FindAllStringIndex(line, -1) {
				out = append(out, Finding{
					Owner:      rc.Owner,
					Repo:       rc.Repo,
					File:       filename,
					Line:       i + 1,
					SecretType: p.Name,
					MaskedText: Mask(line[loc[0]:loc[1]]),
					RepoURL:    rc.RepoURL,
					FileURL:    rc.FileURL,
				})
			}
		}
	}
	return out
}
