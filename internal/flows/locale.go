package flows

import (
	"context"
	"fmt"

	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

// LocaleOptions parameterize the locale add/update flows.
type LocaleOptions struct {
	PackageIdentifier string

	// Version selects the manifest version to edit; empty picks the latest.
	Version string

	// Locale carries the tag plus whatever fields the caller filled in.
	Locale manifest.LocaleManifest

	// Reference names the locale whose display fields seed unset fields of
	// a new locale. Empty uses the default locale.
	Reference string

	OutDir string
	Submit bool
	Title  string
}

// LocaleResult reports what a locale flow produced.
type LocaleResult struct {
	Set         manifest.Set
	Paths       []string
	PullRequest *PullRequestInfo
}

// AddLocale fetches the package's manifests, appends a new locale seeded
// from a reference locale, and writes or submits the result.
func AddLocale(ctx context.Context, deps Deps, opts LocaleOptions) (LocaleResult, error) {
	s, err := fetchSet(ctx, deps, &opts)
	if err != nil {
		return LocaleResult{}, err
	}

	ref, err := manifest.ResolveReferenceLocale(opts.Reference, s)
	if err != nil {
		return LocaleResult{}, err
	}
	locale := manifest.PopulateFromReference(opts.Locale, ref, manifest.LocaleFieldNames())

	s, err = manifest.AddLocale(s, locale)
	if err != nil {
		return LocaleResult{}, err
	}
	return finishLocale(ctx, deps, opts, s)
}

// UpdateLocale fetches the package's manifests and replaces the fields of an
// existing locale.
func UpdateLocale(ctx context.Context, deps Deps, opts LocaleOptions) (LocaleResult, error) {
	s, err := fetchSet(ctx, deps, &opts)
	if err != nil {
		return LocaleResult{}, err
	}
	s, err = manifest.UpdateLocale(s, opts.Locale)
	if err != nil {
		return LocaleResult{}, err
	}
	return finishLocale(ctx, deps, opts, s)
}

func fetchSet(ctx context.Context, deps Deps, opts *LocaleOptions) (manifest.Set, error) {
	if err := manifest.ValidateLocaleTag(opts.Locale.PackageLocale); err != nil {
		return manifest.Set{}, err
	}
	id, err := deps.Client.FindPackageID(ctx, opts.PackageIdentifier)
	if err != nil {
		return manifest.Set{}, err
	}
	opts.PackageIdentifier = id

	raws, version, err := deps.Client.GetManifestContent(ctx, id, opts.Version)
	if err != nil {
		return manifest.Set{}, err
	}
	opts.Version = version

	s, err := manifest.ParseDocuments(raws)
	if err != nil {
		return manifest.Set{}, fmt.Errorf("parsing existing manifests for %s %s: %w", id, version, err)
	}
	return manifest.ConvertSingletonToMultiFile(s), nil
}

func finishLocale(ctx context.Context, deps Deps, opts LocaleOptions, s manifest.Set) (LocaleResult, error) {
	s = manifest.StampIdentifiers(s, opts.PackageIdentifier, opts.Version)
	s = manifest.EnsureManifestVersionConsistency(s)
	s = manifest.RemoveEmptyFields(s)

	if err := validateSet(s, deps.Codec); err != nil {
		return LocaleResult{}, err
	}

	result := LocaleResult{Set: s}
	if opts.OutDir != "" {
		dir := manifest.SetDirectory(opts.OutDir, opts.PackageIdentifier, opts.Version)
		paths, err := manifest.WriteSet(dir, s, deps.Codec)
		if err != nil {
			return result, err
		}
		result.Paths = paths
	}
	if opts.Submit {
		pr, err := deps.Client.SubmitPullRequest(ctx, s, deps.Codec, submitOpts(opts.Title, "", false))
		if err != nil {
			return result, err
		}
		result.PullRequest = &PullRequestInfo{Number: pr.Number, URL: pr.URL}
	}
	logger.Info("locale flow complete",
		logger.String("package", opts.PackageIdentifier),
		logger.String("locale", opts.Locale.PackageLocale))
	return result, nil
}
