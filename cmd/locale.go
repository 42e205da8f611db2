/*
Copyright © 2026 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/manifold/internal/flows"
	"github.com/fulmenhq/manifold/pkg/manifest"
)

var localeCmd = &cobra.Command{
	Use:   "locale",
	Short: "Manage locale manifests of a package",
}

var localeAddCmd = &cobra.Command{
	Use:   "add <package-identifier>",
	Short: "Add a new locale to a package",
	Long: `Adds a locale manifest for a tag the package does not have yet. Fields
not given on the command line are seeded from the reference locale
(--reference, default: the package's default locale).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocale(cmd, args[0], flows.AddLocale)
	},
}

var localeUpdateCmd = &cobra.Command{
	Use:   "update <package-identifier>",
	Short: "Update an existing locale of a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocale(cmd, args[0], flows.UpdateLocale)
	},
}

func init() {
	for _, c := range []*cobra.Command{localeAddCmd, localeUpdateCmd} {
		c.Flags().String("locale", "", "Locale tag (for example fr-FR)")
		c.Flags().String("pkg-version", "", "Manifest version to edit (default: latest)")
		c.Flags().String("reference", "", "Locale to seed unset fields from")
		c.Flags().Bool("submit", false, "Open a pull request after writing")
		c.Flags().String("title", "", "Pull request title override")

		c.Flags().String("publisher", "", "Publisher display name")
		c.Flags().String("package-name", "", "Package display name")
		c.Flags().String("short-description", "", "Short description")
		c.Flags().String("description", "", "Full description")
		c.Flags().String("license", "", "License name")
		c.Flags().String("copyright", "", "Copyright line")
		c.Flags().String("release-notes", "", "Release notes text")
		c.Flags().String("release-notes-url", "", "Release notes URL")
		c.Flags().StringSlice("tags", nil, "Search tags")
		_ = c.MarkFlagRequired("locale")
	}
	localeCmd.AddCommand(localeAddCmd)
	localeCmd.AddCommand(localeUpdateCmd)
}

type localeFlow func(ctx context.Context, deps flows.Deps, opts flows.LocaleOptions) (flows.LocaleResult, error)

func runLocale(cmd *cobra.Command, packageIdentifier string, flow localeFlow) error {
	submit, _ := cmd.Flags().GetBool("submit")
	deps, err := buildDeps(cmd, submit)
	if err != nil {
		return err
	}
	dir, err := outDir(cmd)
	if err != nil {
		return err
	}

	version, _ := cmd.Flags().GetString("pkg-version")
	reference, _ := cmd.Flags().GetString("reference")
	title, _ := cmd.Flags().GetString("title")

	result, err := flow(cmd.Context(), deps, flows.LocaleOptions{
		PackageIdentifier: packageIdentifier,
		Version:           version,
		Locale:            localeFromFlags(cmd),
		Reference:         reference,
		OutDir:            dir,
		Submit:            submit,
		Title:             title,
	})
	if err != nil {
		return err
	}

	for _, p := range result.Paths {
		cmd.Println(p)
	}
	if result.PullRequest != nil {
		cmd.Printf("Pull request #%d: %s\n", result.PullRequest.Number, result.PullRequest.URL)
	}
	return nil
}

// localeFromFlags builds the locale document from whichever field flags were
// set. Unset flags stay nil so reference seeding can fill them.
func localeFromFlags(cmd *cobra.Command) manifest.LocaleManifest {
	l := manifest.LocaleManifest{}
	l.PackageLocale, _ = cmd.Flags().GetString("locale")

	strFlag := func(name string, dst **string) {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			*dst = manifest.Ptr(v)
		}
	}
	strFlag("publisher", &l.Publisher)
	strFlag("package-name", &l.PackageName)
	strFlag("short-description", &l.ShortDescription)
	strFlag("description", &l.Description)
	strFlag("license", &l.License)
	strFlag("copyright", &l.Copyright)
	strFlag("release-notes", &l.ReleaseNotes)
	strFlag("release-notes-url", &l.ReleaseNotesURL)
	if tags, _ := cmd.Flags().GetStringSlice("tags"); len(tags) > 0 {
		l.Tags = tags
	}
	return l
}
