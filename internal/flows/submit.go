package flows

import (
	"context"
	"fmt"

	"github.com/fulmenhq/manifold/internal/forge"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

// SubmitOptions parameterize submission of local manifests.
type SubmitOptions struct {
	// Dir holds a complete manifest set (one version directory).
	Dir string

	Title          string
	Replace        bool
	ReplaceVersion string
}

// Submit validates a local manifest set and opens a pull request for it.
func Submit(ctx context.Context, deps Deps, opts SubmitOptions) (PullRequestInfo, error) {
	s, err := manifest.ReadSetDir(opts.Dir)
	if err != nil {
		return PullRequestInfo{}, err
	}
	s = manifest.ConvertSingletonToMultiFile(s)
	s = manifest.EnsureManifestVersionConsistency(s)

	if err := validateSet(s, deps.Codec); err != nil {
		return PullRequestInfo{}, err
	}
	if opts.Replace && opts.ReplaceVersion == "" {
		return PullRequestInfo{}, fmt.Errorf("replace requested without a version to replace")
	}

	pr, err := deps.Client.SubmitPullRequest(ctx, s, deps.Codec, forge.SubmitOptions{
		Title:          opts.Title,
		Replace:        opts.Replace,
		ReplaceVersion: opts.ReplaceVersion,
	})
	if err != nil {
		return PullRequestInfo{}, err
	}
	return PullRequestInfo{Number: pr.Number, URL: pr.URL}, nil
}

func submitOpts(title, replaceVersion string, replace bool) forge.SubmitOptions {
	return forge.SubmitOptions{
		Title:          title,
		Replace:        replace,
		ReplaceVersion: replaceVersion,
	}
}
