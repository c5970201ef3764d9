package github

import (
	"context"
	"encoding/base64"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"strings"

	perr "overwatch/internal/platform/errors"
)

// GetFileContent fetches and decodes a file via the contents API.
// Returns the decoded text and the file's html_url.
// 404 maps to ErrorCodeNotFound and other failures to ErrorCodeUnavailable;
// callers treat both as "file absent, move on"
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path string) (string, string, error) {
	p := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	resp, err := c.Do(ctx, http.MethodGet, p)
	if err != nil {
		return "", "", perr.WrapIf(err, perr.ErrorCodeUnavailable, "file contents unavailable")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", p).Msg("github close body failed")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return "", "", perr.NotFoundf("no file at %s/%s/%s", owner, repo, path)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", perr.Wrap(
			&GHStatusError{Status: resp.StatusCode},
			perr.ErrorCodeUnavailable,
			"file contents unavailable",
		)
	}

	var out struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		HTMLURL  string `json:"html_url"`
		Type     string `json:"type"`
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "file contents read failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "file contents parse failed")
	}
	if out.Type != "" && out.Type != "file" && out.Type != "symlink" {
		return "", "", perr.NotFoundf("%s/%s/%s is not a file", owner, repo, path)
	}

	// the API wraps base64 payloads with embedded newlines
	raw := strings.NewReplacer("\n", "", "\r", "").Replace(out.Content)
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "file contents decode failed")
	}
	return string(decoded), out.HTMLURL, nil
}
