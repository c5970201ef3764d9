// Package domain defines the types and interfaces for the scan service
package domain

// Input configures one scan run
type Input struct {
	Query    string
	MaxRepos int
}

// Summary reports what a run did. A run that completes returns a Summary
// even when individual repositories or files were skipped along the way
type Summary struct {
	ReposScanned    int
	ReposSkipped    int
	FilesScanned    int
	FindingsWritten int
}
