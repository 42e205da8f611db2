package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

// UpdateOptions parameterize the update-existing flow.
type UpdateOptions struct {
	PackageIdentifier string

	// NewVersion is the version being published. Empty keeps the existing
	// version (hash-only refresh).
	NewVersion string

	// URLs override the installer URLs. When empty the existing URLs are
	// reused with the old version substituted for the new one.
	URLs []string

	OutDir string

	Submit bool
	Title  string

	// Replace removes the previous version's manifests in the same pull
	// request.
	Replace bool
}

// UpdateResult reports what the update flow produced.
type UpdateResult struct {
	Set                  manifest.Set
	Paths                []string
	PreviousVersion      string
	ArchitectureWarnings []manifest.ArchitectureWarning
	PullRequest          *PullRequestInfo
}

// Update runs the full update pipeline: fetch, deserialize, convert, stamp,
// download, match, reconcile, hash gate, validate, serialize, and optionally
// submit. Any failure halts the pipeline with the manifest untouched.
func Update(ctx context.Context, deps Deps, opts UpdateOptions) (UpdateResult, error) {
	id, err := deps.Client.FindPackageID(ctx, opts.PackageIdentifier)
	if err != nil {
		return UpdateResult{}, err
	}
	if id != opts.PackageIdentifier {
		logger.Info("resolved package identifier",
			logger.String("given", opts.PackageIdentifier),
			logger.String("resolved", id))
	}

	raws, prevVersion, err := deps.Client.GetManifestContent(ctx, id, "")
	if err != nil {
		return UpdateResult{}, err
	}
	existing, err := manifest.ParseDocuments(raws)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("parsing existing manifests for %s %s: %w", id, prevVersion, err)
	}
	existing = manifest.ConvertSingletonToMultiFile(existing)

	newVersion := opts.NewVersion
	if newVersion == "" {
		newVersion = prevVersion
	}

	urls := opts.URLs
	if len(urls) == 0 {
		urls = substituteVersion(installerURLs(existing.Installer.Installers), prevVersion, newVersion)
	}

	detected, err := DetectInstallers(ctx, deps.Cache, urls)
	if err != nil {
		return UpdateResult{}, err
	}

	// Self-contained installer entries match more precisely, so push the
	// root-level shared fields down before matching.
	updated := existing.Clone()
	updated.Installer = manifest.ShiftRootFieldsToInstallerLevel(updated.Installer)

	// URL-exact identity must survive the version bump: existing entries
	// whose URL embeds the previous version are rewritten to the new one
	// before matching, so they line up with the freshly detected URLs.
	for i := range updated.Installer.Installers {
		inst := &updated.Installer.Installers[i]
		inst.InstallerURL = substituteVersionURL(inst.InstallerURL, prevVersion, newVersion)
	}

	res, err := manifest.MatchInstallers(updated.Installer.Installers, detected)
	if err != nil {
		return UpdateResult{}, err
	}
	if !res.OK {
		return UpdateResult{}, describeMatchFailure(res)
	}
	for _, w := range res.ArchitectureWarnings {
		logger.Warn("architecture hint mismatch", logger.String("detail", w.String()))
	}

	// The hash gate blocks pull-request submission only; a local
	// regeneration of unchanged installers is legitimate.
	if opts.Submit && !manifest.VerifyInstallerHashChanged(existing.Installer.Installers, res.Installers) {
		return UpdateResult{}, fmt.Errorf("%w: %s %s", ErrHashUnchanged, id, newVersion)
	}

	updated.Installer.Installers = res.Installers
	updated.Installer = manifest.ShiftInstallerFieldsToRootLevel(updated.Installer)
	updated = manifest.StampIdentifiers(updated, id, newVersion)
	updated = manifest.EnsureManifestVersionConsistency(updated)
	updated = manifest.RemoveEmptyFields(updated)

	if err := validateSet(updated, deps.Codec); err != nil {
		return UpdateResult{}, err
	}

	result := UpdateResult{
		Set:                  updated,
		PreviousVersion:      prevVersion,
		ArchitectureWarnings: res.ArchitectureWarnings,
	}
	if opts.OutDir != "" {
		dir := manifest.SetDirectory(opts.OutDir, id, newVersion)
		paths, err := manifest.WriteSet(dir, updated, deps.Codec)
		if err != nil {
			return result, err
		}
		result.Paths = paths
	}

	if opts.Submit {
		pr, err := deps.Client.SubmitPullRequest(ctx, updated, deps.Codec, submitOpts(opts.Title, prevVersion, opts.Replace))
		if err != nil {
			return result, err
		}
		result.PullRequest = &PullRequestInfo{Number: pr.Number, URL: pr.URL}
	}
	return result, nil
}

// substituteVersion rewrites version tokens inside reused installer URLs.
// URLs that do not embed the old version pass through unchanged; the
// downloader will fail loudly if they have gone stale.
func substituteVersion(urls []string, oldVersion, newVersion string) []string {
	if oldVersion == "" || oldVersion == newVersion {
		return urls
	}
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = substituteVersionURL(u, oldVersion, newVersion)
	}
	return out
}

func substituteVersionURL(u, oldVersion, newVersion string) string {
	if oldVersion == "" || oldVersion == newVersion {
		return u
	}
	return strings.ReplaceAll(u, oldVersion, newVersion)
}
