// Package forge talks to the GitHub-hosted manifest repository: package
// lookup, manifest content retrieval, and pull-request submission. All
// errors are translated into the package's taxonomy at this boundary.
package forge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/go-github/v74/github"
	goversion "github.com/hashicorp/go-version"
	"golang.org/x/oauth2"

	"github.com/fulmenhq/manifold/pkg/config"
	"github.com/fulmenhq/manifold/pkg/logger"
)

// Client wraps the GitHub API for one manifest repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
	// branch is the upstream default branch submissions target.
	branch string
	root   string
	// viaFork routes submissions through the authenticated user's fork.
	viaFork bool
}

// New builds a Client from settings and an optional token. Lookup
// operations work unauthenticated; submission requires a token.
func New(cfg config.Config, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	gh := github.NewClient(httpClient)
	return &Client{
		gh:      gh,
		owner:   cfg.Forge.Owner,
		repo:    cfg.Forge.Repo,
		branch:  cfg.Forge.DefaultBranch,
		root:    cfg.Manifest.Root,
		viaFork: cfg.Forge.SubmitViaFork,
	}
}

// NewWithHTTP builds a Client with an injectable HTTP client and API base
// URL for testing. An empty baseURL keeps the real API endpoint.
func NewWithHTTP(cfg config.Config, httpClient *http.Client, baseURL string) *Client {
	gh := github.NewClient(httpClient)
	if baseURL != "" {
		if u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/"); err == nil {
			gh.BaseURL = u
		}
	}
	return &Client{
		gh:      gh,
		owner:   cfg.Forge.Owner,
		repo:    cfg.Forge.Repo,
		branch:  cfg.Forge.DefaultBranch,
		root:    cfg.Manifest.Root,
		viaFork: cfg.Forge.SubmitViaFork,
	}
}

// translate maps GitHub API failures onto the package error taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return &RateLimitError{
			RetryAfter: rle.Rate.Reset.Time,
			Limit:      rle.Rate.Limit,
			Remaining:  rle.Rate.Remaining,
			Message:    rle.Message,
		}
	}
	var arle *github.AbuseRateLimitError
	if errors.As(err, &arle) {
		return &RateLimitError{Message: arle.Message}
	}
	var ghe *github.ErrorResponse
	if errors.As(err, &ghe) && ghe.Response != nil {
		switch ghe.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrPackageNotFound, ghe.Message)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrForbidden, ghe.Message)
		}
	}
	return err
}

// packagePath returns the repository path for a package identifier:
// <root>/<lowercased first letter>/<identifier parts>.
func (c *Client) packagePath(packageIdentifier string) string {
	parts := append(
		[]string{c.root, strings.ToLower(packageIdentifier[:1])},
		strings.Split(packageIdentifier, ".")...)
	return strings.Join(parts, "/")
}

// FindPackageID resolves a possibly mis-cased identifier to the canonical
// identifier stored in the repository by probing the directory tree one
// dot-separated segment at a time. Returns ErrPackageNotFound when no path
// matches.
func (c *Client) FindPackageID(ctx context.Context, fuzzyID string) (string, error) {
	if fuzzyID == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrPackageNotFound)
	}
	segments := strings.Split(fuzzyID, ".")
	current := c.root + "/" + strings.ToLower(fuzzyID[:1])
	var canonical []string

	for _, seg := range segments {
		entries, err := c.listDir(ctx, current)
		if err != nil {
			return "", err
		}
		found := ""
		for _, e := range entries {
			if e.GetType() == "dir" && strings.EqualFold(e.GetName(), seg) {
				found = e.GetName()
				break
			}
		}
		if found == "" {
			return "", fmt.Errorf("%w: %s", ErrPackageNotFound, fuzzyID)
		}
		canonical = append(canonical, found)
		current = current + "/" + found
	}
	return strings.Join(canonical, "."), nil
}

// ListVersions returns the versions published for a package, unsorted.
func (c *Client) ListVersions(ctx context.Context, packageIdentifier string) ([]string, error) {
	entries, err := c.listDir(ctx, c.packagePath(packageIdentifier))
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.GetType() == "dir" {
			versions = append(versions, e.GetName())
		}
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s has no published versions", ErrVersionNotFound, packageIdentifier)
	}
	return versions, nil
}

// LatestVersion picks the highest version using semantic ordering when the
// strings parse, falling back to lexicographic order otherwise.
func LatestVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	parsed := make([]*goversion.Version, 0, len(versions))
	byParsed := make(map[*goversion.Version]string, len(versions))
	for _, v := range versions {
		if pv, err := goversion.NewVersion(v); err == nil {
			parsed = append(parsed, pv)
			byParsed[pv] = v
		}
	}
	if len(parsed) == len(versions) {
		sort.Sort(goversion.Collection(parsed))
		return byParsed[parsed[len(parsed)-1]]
	}
	sorted := append([]string(nil), versions...)
	sort.Strings(sorted)
	return sorted[len(sorted)-1]
}

// GetManifestContent fetches the raw document texts for one package
// version. An empty version selects the latest.
func (c *Client) GetManifestContent(ctx context.Context, packageIdentifier, version string) ([][]byte, string, error) {
	if version == "" {
		versions, err := c.ListVersions(ctx, packageIdentifier)
		if err != nil {
			return nil, "", err
		}
		version = LatestVersion(versions)
		logger.Debug("resolved latest version", logger.String("version", version))
	}

	dir := c.packagePath(packageIdentifier) + "/" + version
	entries, err := c.listDir(ctx, dir)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, "", fmt.Errorf("%w: %s %s", ErrVersionNotFound, packageIdentifier, version)
		}
		return nil, "", err
	}

	var raws [][]byte
	for _, e := range entries {
		if e.GetType() != "file" {
			continue
		}
		name := strings.ToLower(e.GetName())
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".json") {
			continue
		}
		fc, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, e.GetPath(),
			&github.RepositoryContentGetOptions{Ref: c.branch})
		if err != nil {
			return nil, "", translate(err)
		}
		content, err := fc.GetContent()
		if err != nil {
			return nil, "", fmt.Errorf("decoding %s: %w", e.GetPath(), err)
		}
		raws = append(raws, []byte(content))
	}
	if len(raws) == 0 {
		return nil, "", fmt.Errorf("%w: %s %s contains no manifest files", ErrVersionNotFound, packageIdentifier, version)
	}
	return raws, version, nil
}

func (c *Client) listDir(ctx context.Context, path string) ([]*github.RepositoryContent, error) {
	_, entries, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: c.branch})
	if err != nil {
		return nil, translate(err)
	}
	return entries, nil
}
