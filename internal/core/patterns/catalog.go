// Package patterns loads the secret detection catalog and scans file content.
// A catalog is a YAML document with entries of {name, regex, files}
package patterns

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	perr "overwatch/internal/platform/errors"
	"overwatch/internal/platform/logger"
)

type rawCatalog struct {
	Patterns []rawPattern `yaml:"patterns"`
}

type rawPattern struct {
	Name  string   `yaml:"name"`
	Regex string   `yaml:"regex"`
	Files []string `yaml:"files"`
}

// Pattern is one compiled detection rule
type Pattern struct {
	Name  string
	re    *regexp.Regexp
	files []string
}

// Engine holds the compiled catalog and runs scans
type Engine struct {
	patterns []Pattern
	log      logger.Logger
}

// New returns an empty Engine; load a catalog with Parse or LoadFile
func New() *Engine {
	return &Engine{log: *logger.Named("patterns")}
}

// Parse compiles a catalog document into the engine, replacing any prior
// catalog. Entries that are incomplete or fail to compile are logged and
// skipped; a document that does not parse at all leaves the engine empty
// and returns an error. Returns the number of patterns loaded
func (e *Engine) Parse(b []byte) (int, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(b, &raw); err != nil {
		e.patterns = nil
		return 0, perr.Wrapf(err, perr.ErrorCodeValidation, "pattern catalog parse failed")
	}

	pats := make([]Pattern, 0, len(raw.Patterns))
	for _, rp := range raw.Patterns {
		if rp.Name == "" || rp.Regex == "" {
			e.log.Warn().Str("name", rp.Name).Msg("skipping catalog entry missing name or regex")
			continue
		}
		rx := rp.Regex
		if !strings.HasPrefix(rx, "(?i)") {
			rx = "(?i)" + rx
		}
		re, err := regexp.Compile(rx)
		if err != nil {
			e.log.Warn().Err(err).Str("name", rp.Name).Msg("skipping catalog entry with invalid regex")
			continue
		}
		pats = append(pats, Pattern{Name: rp.Name, re: re, files: rp.Files})
	}
	e.patterns = pats
	e.log.Info().Int("loaded", len(pats)).Int("declared", len(raw.Patterns)).Msg("pattern catalog loaded")
	return len(pats), nil
}

// LoadFile reads and parses a catalog file
func (e *Engine) LoadFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		e.patterns = nil
		return 0, perr.Wrapf(err, perr.ErrorCodeValidation, "pattern catalog unreadable")
	}
	return e.Parse(b)
}

// Len returns the number of loaded patterns
func (e *Engine) Len() int { return len(e.patterns) }
