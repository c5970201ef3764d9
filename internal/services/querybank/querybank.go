// Package querybank manages the saved search query collection.
// The bank is a YAML file of {id, name, query, tags, max_repos} entries
package querybank

import (
	"math/rand/v2"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	perr "overwatch/internal/platform/errors"
	"overwatch/internal/platform/logger"
)

// Query is one saved search
type Query struct {
	ID       int      `yaml:"id"                 json:"id"`
	Name     string   `yaml:"name"               json:"name"               validate:"required"`
	Query    string   `yaml:"query"              json:"query"              validate:"required"`
	Tags     []string `yaml:"tags,omitempty"     json:"tags,omitempty"`
	MaxRepos int      `yaml:"max_repos"          json:"max_repos"          validate:"gte=0"`
}

type bankFile struct {
	Queries []Query `yaml:"queries"`
}

// seam for deterministic Random in tests
var randIntN = rand.IntN

// Bank is the in-memory view of the query file
type Bank struct {
	path     string
	queries  []Query
	validate *validator.Validate
	log      logger.Logger
}

// Load reads the bank from path. A missing file yields an empty bank;
// a file that does not parse is an error
func Load(path string) (*Bank, error) {
	b := &Bank{
		path:     path,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      *logger.Named("querybank"),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "read query bank %s", path)
	}
	var f bankFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "query bank parse failed")
	}
	b.queries = f.Queries
	return b, nil
}

// Save writes the bank back to its file
func (b *Bank) Save() error {
	out, err := yaml.Marshal(bankFile{Queries: b.queries})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "marshal query bank")
	}
	if err := os.WriteFile(b.path, out, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "write query bank %s", b.path)
	}
	return nil
}

// NextID returns one past the highest id in the bank
func (b *Bank) NextID() int {
	max := 0
	for _, q := range b.queries {
		if q.ID > max {
			max = q.ID
		}
	}
	return max + 1
}

// Add validates, assigns an id, appends, and saves
func (b *Bank) Add(name, query string, tags []string, maxRepos int) (Query, error) {
	q := Query{ID: b.NextID(), Name: name, Query: query, Tags: tags, MaxRepos: maxRepos}
	if err := b.validate.Struct(q); err != nil {
		return Query{}, perr.Wrapf(err, perr.ErrorCodeValidation, "invalid query entry")
	}
	b.queries = append(b.queries, q)
	if err := b.Save(); err != nil {
		return Query{}, err
	}
	b.log.Info().Int("id", q.ID).Str("name", q.Name).Msg("query added")
	return q, nil
}

// Delete removes the entry with the given id and saves
func (b *Bank) Delete(id int) error {
	for i, q := range b.queries {
		if q.ID == id {
			b.queries = append(b.queries[:i], b.queries[i+1:]...)
			return b.Save()
		}
	}
	return perr.NotFoundf("no query with id %d", id)
}

// Get returns the entry with the given id
func (b *Bank) Get(id int) (Query, bool) {
	for _, q := range b.queries {
		if q.ID == id {
			return q, true
		}
	}
	return Query{}, false
}

// List returns all entries in file order
func (b *Bank) List() []Query {
	out := make([]Query, len(b.queries))
	copy(out, b.queries)
	return out
}

// FilterByTag returns the entries carrying the given tag (case-insensitive)
func (b *Bank) FilterByTag(tag string) []Query {
	var out []Query
	for _, q := range b.queries {
		for _, t := range q.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, q)
				break
			}
		}
	}
	return out
}

// Random returns a uniformly chosen entry
func (b *Bank) Random() (Query, error) {
	if len(b.queries) == 0 {
		return Query{}, perr.NotFoundf("query bank is empty")
	}
	return b.queries[randIntN(len(b.queries))], nil
}

// Len returns the number of entries
func (b *Bank) Len() int { return len(b.queries) }
