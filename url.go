package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var defaultBranches = []string{"main", "master"}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && strings.Contains(s, "://") && u.Scheme != ""
}

// readmeURL resolves GitHub/GitLab repo shorthand, with or without protocol,
// to that repo's raw readme and fetches it. Returns nil when the argument
// doesn't look like a repo URL at all.
func readmeURL(arg string) (*source, error) {
	s := strings.TrimPrefix(arg, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")

	var rawPattern string
	switch {
	case strings.HasPrefix(s, "github.com/"):
		rawPattern = "https://raw.githubusercontent.com/%s/%s/%s"
	case strings.HasPrefix(s, "gitlab.com/"):
		rawPattern = "https://gitlab.com/%s/-/raw/%s/%s"
	default:
		return nil, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		// Not a bare owner/repo reference; treat it as a regular URL.
		return nil, nil
	}
	repo := parts[1] + "/" + parts[2]

	for _, branch := range defaultBranches {
		for _, name := range readmeNames {
			u := fmt.Sprintf(rawPattern, repo, branch, name)
			resp, err := http.Get(u) //nolint:noctx,gosec,bodyclose
			if err != nil {
				return nil, fmt.Errorf("unable to get url: %w", err)
			}
			if resp.StatusCode == http.StatusOK {
				return &source{resp.Body, u}, nil
			}
			_ = resp.Body.Close()
		}
	}

	return nil, fmt.Errorf("no readme found in %s", arg)
}
