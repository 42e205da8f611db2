package flows

import (
	"context"
	"fmt"

	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

// NewOptions parameterize the create-new flow.
type NewOptions struct {
	PackageIdentifier string
	PackageVersion    string
	DefaultLocale     string
	URLs              []string

	// OutDir is the local root the manifests are written under.
	OutDir string

	Submit bool
	Title  string
}

// NewResult reports what the create-new flow produced.
type NewResult struct {
	Set         manifest.Set
	Paths       []string
	PullRequest *PullRequestInfo
}

// PullRequestInfo mirrors the forge result for command output.
type PullRequestInfo struct {
	Number int
	URL    string
}

// New scaffolds a fresh manifest set from installer URLs: download, sniff,
// build the set, prune, validate, write, and optionally submit.
func New(ctx context.Context, deps Deps, opts NewOptions) (NewResult, error) {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en-US"
	}
	if err := manifest.ValidateLocaleTag(opts.DefaultLocale); err != nil {
		return NewResult{}, err
	}

	detected, err := DetectInstallers(ctx, deps.Cache, opts.URLs)
	if err != nil {
		return NewResult{}, err
	}
	if len(detected) == 0 {
		return NewResult{}, fmt.Errorf("no installers detected from %d URL(s)", len(opts.URLs))
	}

	s := manifest.NewSet(opts.PackageIdentifier, opts.PackageVersion, opts.DefaultLocale, detected)
	s.Installer = manifest.ShiftInstallerFieldsToRootLevel(s.Installer)
	s = manifest.RemoveEmptyFields(s)

	if err := validateSet(s, deps.Codec); err != nil {
		return NewResult{}, err
	}

	dir := manifest.SetDirectory(opts.OutDir, opts.PackageIdentifier, opts.PackageVersion)
	paths, err := manifest.WriteSet(dir, s, deps.Codec)
	if err != nil {
		return NewResult{}, err
	}
	logger.Info("manifests written",
		logger.String("package", opts.PackageIdentifier),
		logger.String("version", opts.PackageVersion),
		logger.Int("files", len(paths)))

	result := NewResult{Set: s, Paths: paths}
	if opts.Submit {
		pr, err := deps.Client.SubmitPullRequest(ctx, s, deps.Codec, submitOpts(opts.Title, "", false))
		if err != nil {
			return result, err
		}
		result.PullRequest = &PullRequestInfo{Number: pr.Number, URL: pr.URL}
	}
	return result, nil
}
