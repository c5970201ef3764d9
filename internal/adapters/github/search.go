package github

import (
	"context"
	json "encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	perr "overwatch/internal/platform/errors"
)

const (
	perPageMax = 100

	// searchCeiling is the provider's hard cap on retrievable search results
	searchCeiling = 1000
)

// SearchRepositories runs a repository search and collects up to maxResults
// items in provider order. maxResults == 0 means everything the provider will
// serve, which tops out at the 1000-result ceiling.
// A page rejected by the provider logs and returns whatever was collected so
// far, first page included, so one bad query never aborts a run. Only a
// transport or parse failure on the first page is an error
func (c *Client) SearchRepositories(ctx context.Context, query string, maxResults int) ([]Repository, error) {
	target := maxResults
	if target <= 0 || target > searchCeiling {
		target = searchCeiling
	}

	var out []Repository
	totalCount := 0
	for page := 1; len(out) < target; page++ {
		per := target - len(out)
		if per > perPageMax {
			per = perPageMax
		}
		path := fmt.Sprintf("/search/repositories?q=%s&per_page=%d&page=%d", url.QueryEscape(query), per, page)
		items, tc, err := c.searchPage(ctx, path)
		if err != nil {
			var st *GHStatusError
			if page == 1 {
				if !errors.As(err, &st) {
					return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "repository search failed")
				}
				c.log.Warn().
					Int("status", st.Status).
					Str("query", query).
					Msg("search rejected by provider, returning no results")
				return out, nil
			}
			c.log.Warn().
				Err(err).
				Int("page", page).
				Int("collected", len(out)).
				Msg("search page failed, keeping partial results")
			return out, nil
		}
		if page == 1 {
			totalCount = tc
			c.log.Info().Str("query", query).Int("total_count", tc).Msg("repository search")
		}
		for _, it := range items {
			out = append(out, it.toRepository())
		}
		if len(items) < per {
			break
		}
	}

	if maxResults <= 0 && len(out) >= searchCeiling && totalCount > searchCeiling {
		c.log.Warn().
			Int("total_count", totalCount).
			Int("collected", len(out)).
			Msg("search results truncated at provider ceiling")
	}
	return out, nil
}

func (c *Client) searchPage(ctx context.Context, path string) ([]repoItem, int, error) {
	resp, err := c.Do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, &GHStatusError{Status: resp.StatusCode}
	}

	var out struct {
		TotalCount int        `json:"total_count"`
		Items      []repoItem `json:"items"`
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, 0, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.TotalCount, nil
}
