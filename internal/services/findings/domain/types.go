// Package domain defines the types and interfaces for the findings service
package domain

import "time"

// Finding is one masked secret match attributed to a repository file.
// MaskedText never contains the raw matched value
type Finding struct {
	Owner      string    `json:"owner"`
	Repo       string    `json:"repo"`
	File       string    `json:"file"`
	Line       int       `json:"line"`
	SecretType string    `json:"secret_type"`
	MaskedText string    `json:"masked_text"`
	Timestamp  time.Time `json:"timestamp"`
	RepoURL    string    `json:"repo_url"`
	FileURL    string    `json:"file_url"`
}
