package github

import "time"

// Repository is a partial GitHub repository document with fields we use
type Repository struct {
	Owner     string
	Name      string
	HTMLURL   string
	Stars     int
	Language  string
	CreatedAt time.Time
}

// repoItem is the wire shape of a search result entry
type repoItem struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	HTMLURL    string    `json:"html_url"`
	Stargazers int       `json:"stargazers_count"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"created_at"`
}

func (it repoItem) toRepository() Repository {
	return Repository{
		Owner:     it.Owner.Login,
		Name:      it.Name,
		HTMLURL:   it.HTMLURL,
		Stars:     it.Stargazers,
		Language:  it.Language,
		CreatedAt: it.CreatedAt,
	}
}
