// Package flows wires the manifest pipelines behind the CLI commands. Each
// flow takes its collaborators through Deps so commands and tests inject
// their own forge client and download cache.
package flows

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fulmenhq/manifold/internal/download"
	"github.com/fulmenhq/manifold/internal/forge"
	"github.com/fulmenhq/manifold/internal/sniff"
	"github.com/fulmenhq/manifold/pkg/config"
	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/schema"
)

// ErrHashUnchanged reports that an update produced installers whose hashes
// all match the previous version, so there is nothing worth submitting.
var ErrHashUnchanged = errors.New("installer hashes unchanged from existing manifest")

// ErrValidationFailed wraps schema diagnostics surfaced by a flow.
var ErrValidationFailed = errors.New("manifest validation failed")

// Deps carries the collaborators a flow needs.
type Deps struct {
	Cfg    config.Config
	Client *forge.Client
	Cache  *download.Cache
	Codec  manifest.Codec
}

// DetectInstallers downloads each URL through the cache and sniffs the
// resulting files. One URL can yield several detected installers (bundles,
// zips with multiple architectures).
func DetectInstallers(ctx context.Context, cache *download.Cache, urls []string) ([]manifest.DetectedInstaller, error) {
	paths, err := cache.GetAll(ctx, urls)
	if err != nil {
		return nil, err
	}
	var detected []manifest.DetectedInstaller
	for _, u := range urls {
		found, err := sniff.Sniff(u, paths[u])
		if err != nil {
			return nil, fmt.Errorf("analyzing %s: %w", u, err)
		}
		detected = append(detected, found...)
	}
	logger.Debug("installer analysis complete",
		logger.Int("urls", len(urls)),
		logger.Int("detected", len(detected)))
	return detected, nil
}

// validateSet runs schema validation and folds diagnostics into an error.
func validateSet(s manifest.Set, codec manifest.Codec) error {
	res, err := schema.ValidateSet(s, codec)
	if err != nil {
		return err
	}
	if res.Valid {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		if e.Path != "" {
			msgs = append(msgs, e.Path+": "+e.Message)
		} else {
			msgs = append(msgs, e.Message)
		}
	}
	return fmt.Errorf("%w:\n  %s", ErrValidationFailed, strings.Join(msgs, "\n  "))
}

// installerURLs returns the distinct installer URLs of a manifest in first
// appearance order.
func installerURLs(installers []manifest.Installer) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, inst := range installers {
		if _, ok := seen[inst.InstallerURL]; !ok {
			seen[inst.InstallerURL] = struct{}{}
			urls = append(urls, inst.InstallerURL)
		}
	}
	return urls
}

// describeMatchFailure turns matcher partitions into a user-facing error.
func describeMatchFailure(res manifest.MatchResult) error {
	var parts []string
	for _, d := range res.Unmatched {
		parts = append(parts, fmt.Sprintf("no existing installer matches %s (%s, %s)", d.InstallerURL, d.Architecture, d.InstallerType))
	}
	for _, d := range res.MultipleMatched {
		parts = append(parts, fmt.Sprintf("%s (%s, %s) matches more than one existing installer", d.InstallerURL, d.Architecture, d.InstallerType))
	}
	for _, u := range res.UnaddressedURLs {
		parts = append(parts, fmt.Sprintf("existing installer %s received no update", u))
	}
	sort.Strings(parts)
	return fmt.Errorf("installer matching failed:\n  %s", strings.Join(parts, "\n  "))
}
