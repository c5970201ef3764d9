package domain

import (
	"context"

	"overwatch/internal/adapters/github"
	"overwatch/internal/core/patterns"
)

// RunnerPort runs scans
type RunnerPort interface {
	Run(ctx context.Context, in Input) (Summary, error)
}

// ClientPort is the slice of the GitHub client the scanner needs
type ClientPort interface {
	SearchRepositories(ctx context.Context, query string, maxResults int) ([]github.Repository, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (string, string, error)
	CheckAndHandleRateLimit(ctx context.Context) bool
}

// EnginePort matches patterns against file content
type EnginePort interface {
	Scan(content, filename string, rc patterns.RepoContext) []patterns.Finding
	Len() int
}

// SeenPort tracks repositories already scanned, across runs.
// Entries are only ever added
type SeenPort interface {
	Seen(owner, name string) bool
	Add(owner, name string) error
}
