package forge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/google/go-github/v74/github"
	"github.com/google/uuid"

	"github.com/fulmenhq/manifold/pkg/buildinfo"
	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

// SubmitOptions controls pull-request creation.
type SubmitOptions struct {
	// Title overrides the generated PR title.
	Title string

	// Replace deletes the manifests of ReplaceVersion in the same commit,
	// for resubmissions that supersede a broken version.
	Replace        bool
	ReplaceVersion string
}

// PullRequest identifies a submitted pull request.
type PullRequest struct {
	Number int
	URL    string
}

// prBodyTemplate renders the pull-request description.
const prBodyTemplate = `### Package update
- **Package**: {{packageIdentifier}}
- **Version**: {{packageVersion}}
{{#if replaceVersion}}- **Replaces**: {{replaceVersion}}
{{/if}}
#### Installers
{{#each installerUrls}}- {{this}}
{{/each}}
---
Submitted with manifold {{toolVersion}}.
`

func renderPRBody(s manifest.Set, opts SubmitOptions) (string, error) {
	urls := make([]string, 0, len(s.Installer.Installers))
	seen := make(map[string]struct{})
	for _, inst := range s.Installer.Installers {
		if _, dup := seen[inst.InstallerURL]; !dup {
			seen[inst.InstallerURL] = struct{}{}
			urls = append(urls, inst.InstallerURL)
		}
	}
	ctx := map[string]interface{}{
		"packageIdentifier": s.Version.PackageIdentifier,
		"packageVersion":    s.Version.PackageVersion,
		"installerUrls":     urls,
		"toolVersion":       buildinfo.BinaryVersion,
	}
	if opts.Replace {
		ctx["replaceVersion"] = opts.ReplaceVersion
	}
	return raymond.Render(prBodyTemplate, ctx)
}

// SubmitPullRequest serializes the set, pushes it to a fresh branch (on the
// user's fork when configured), and opens a pull request against the
// manifest repository. The set must already be validated; this is the only
// externally visible commit point of a run.
func (c *Client) SubmitPullRequest(ctx context.Context, s manifest.Set, codec manifest.Codec, opts SubmitOptions) (PullRequest, error) {
	id := s.Version.PackageIdentifier
	version := s.Version.PackageVersion

	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return PullRequest{}, translate(err)
	}
	login := user.GetLogin()

	headOwner := c.owner
	if c.viaFork {
		headOwner = login
		if err := c.ensureFork(ctx); err != nil {
			return PullRequest{}, err
		}
	}

	// Branch from the current upstream head so the PR carries only our
	// commit.
	baseRef, _, err := c.gh.Git.GetRef(ctx, c.owner, c.repo, "refs/heads/"+c.branch)
	if err != nil {
		return PullRequest{}, translate(err)
	}
	baseSHA := baseRef.GetObject().GetSHA()

	branchName := branchNameSafe(fmt.Sprintf("manifold/%s-%s-%s", id, version, uuid.NewString()[:8]))
	newRef := &github.Reference{
		Ref:    github.Ptr("refs/heads/" + branchName),
		Object: &github.GitObject{SHA: github.Ptr(baseSHA)},
	}
	if _, _, err := c.gh.Git.CreateRef(ctx, headOwner, c.repo, newRef); err != nil {
		return PullRequest{}, fmt.Errorf("%w: %v", ErrBranchConflict, translate(err))
	}

	entries, err := c.manifestTreeEntries(ctx, headOwner, s, codec)
	if err != nil {
		return PullRequest{}, err
	}
	if opts.Replace && opts.ReplaceVersion != "" && opts.ReplaceVersion != version {
		deletions, err := c.deletionEntries(ctx, id, opts.ReplaceVersion)
		if err != nil {
			return PullRequest{}, err
		}
		entries = append(entries, deletions...)
	}

	tree, _, err := c.gh.Git.CreateTree(ctx, headOwner, c.repo, baseSHA, entries)
	if err != nil {
		return PullRequest{}, translate(err)
	}

	message := fmt.Sprintf("%s version %s", id, version)
	commit := &github.Commit{
		Message: github.Ptr(message),
		Tree:    tree,
		Parents: []*github.Commit{{SHA: github.Ptr(baseSHA)}},
	}
	created, _, err := c.gh.Git.CreateCommit(ctx, headOwner, c.repo, commit, nil)
	if err != nil {
		return PullRequest{}, translate(err)
	}

	newRef.Object.SHA = created.SHA
	if _, _, err := c.gh.Git.UpdateRef(ctx, headOwner, c.repo, newRef, true); err != nil {
		return PullRequest{}, translate(err)
	}

	title := opts.Title
	if title == "" {
		title = message
	}
	body, err := renderPRBody(s, opts)
	if err != nil {
		return PullRequest{}, fmt.Errorf("rendering pull request body: %w", err)
	}
	head := branchName
	if headOwner != c.owner {
		head = login + ":" + branchName
	}
	pr, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, &github.NewPullRequest{
		Title:               github.Ptr(title),
		Head:                github.Ptr(head),
		Base:                github.Ptr(c.branch),
		Body:                github.Ptr(body),
		MaintainerCanModify: github.Ptr(true),
	})
	if err != nil {
		return PullRequest{}, translate(err)
	}

	logger.Info("pull request opened",
		logger.Int("number", pr.GetNumber()),
		logger.String("url", pr.GetHTMLURL()))
	return PullRequest{Number: pr.GetNumber(), URL: pr.GetHTMLURL()}, nil
}

// ensureFork creates (or reuses) the authenticated user's fork. GitHub
// answers fork creation with 202 while it copies the repository; that is
// success for our purposes.
func (c *Client) ensureFork(ctx context.Context) error {
	_, _, err := c.gh.Repositories.CreateFork(ctx, c.owner, c.repo, &github.RepositoryCreateForkOptions{DefaultBranchOnly: true})
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			return nil
		}
		return translate(err)
	}
	return nil
}

// manifestTreeEntries serializes every document in the set into git tree
// entries under the repository manifest layout.
func (c *Client) manifestTreeEntries(ctx context.Context, headOwner string, s manifest.Set, codec manifest.Codec) ([]*github.TreeEntry, error) {
	id := s.Version.PackageIdentifier
	version := s.Version.PackageVersion
	dir := c.packagePath(id) + "/" + version

	type doc struct {
		name string
		body any
	}
	docs := []doc{
		{manifest.FileName(manifest.KindVersion, id, "", codec.Format), s.Version},
		{manifest.FileName(manifest.KindInstaller, id, "", codec.Format), s.Installer},
		{manifest.FileName(manifest.KindDefaultLocale, id, s.DefaultLocale.PackageLocale, codec.Format), s.DefaultLocale},
	}
	for _, l := range s.Locales {
		docs = append(docs, doc{manifest.FileName(manifest.KindLocale, id, l.PackageLocale, codec.Format), l})
	}

	var entries []*github.TreeEntry
	for _, d := range docs {
		data, err := codec.Marshal(d.body)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", d.name, err)
		}
		blob := &github.Blob{
			Content:  github.Ptr(string(data)),
			Encoding: github.Ptr("utf-8"),
		}
		created, _, err := c.gh.Git.CreateBlob(ctx, headOwner, c.repo, blob)
		if err != nil {
			return nil, translate(err)
		}
		entries = append(entries, &github.TreeEntry{
			Path: github.Ptr(dir + "/" + d.name),
			Mode: github.Ptr("100644"),
			Type: github.Ptr("blob"),
			SHA:  created.SHA,
		})
	}
	return entries, nil
}

// deletionEntries marks every manifest file of a superseded version for
// removal (nil SHA in a tree entry deletes the path).
func (c *Client) deletionEntries(ctx context.Context, packageIdentifier, version string) ([]*github.TreeEntry, error) {
	dir := c.packagePath(packageIdentifier) + "/" + version
	files, err := c.listDir(ctx, dir)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, fmt.Errorf("%w: cannot replace %s %s", ErrVersionNotFound, packageIdentifier, version)
		}
		return nil, err
	}
	var entries []*github.TreeEntry
	for _, f := range files {
		if f.GetType() != "file" {
			continue
		}
		entries = append(entries, &github.TreeEntry{
			Path: github.Ptr(f.GetPath()),
			Mode: github.Ptr("100644"),
			Type: github.Ptr("blob"),
		})
	}
	return entries, nil
}

// branchNameSafe guards against identifiers that would break a ref name.
func branchNameSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '~', '^', ':', '?', '*', '[', '\\':
			return '-'
		}
		return r
	}, s)
}
