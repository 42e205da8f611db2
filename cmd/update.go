/*
Copyright © 2026 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/manifold/internal/flows"
)

var updateCmd = &cobra.Command{
	Use:   "update <package-identifier>",
	Short: "Update an existing package to a new version",
	Long: `Fetches the latest manifests for a package, downloads the new installers,
matches them against the existing installer entries, and produces an updated
manifest set. Without --urls the existing installer URLs are reused with the
version substituted. Pass --submit to open a pull request.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().String("version", "", "New package version (default: keep existing)")
	updateCmd.Flags().StringSlice("urls", nil, "Installer URLs for the new version")
	updateCmd.Flags().Bool("submit", false, "Open a pull request after the update")
	updateCmd.Flags().Bool("replace", false, "Remove the previous version in the same pull request")
	updateCmd.Flags().String("title", "", "Pull request title override")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	submit, _ := cmd.Flags().GetBool("submit")
	deps, err := buildDeps(cmd, submit)
	if err != nil {
		return err
	}
	dir, err := outDir(cmd)
	if err != nil {
		return err
	}

	version, _ := cmd.Flags().GetString("version")
	urls, _ := cmd.Flags().GetStringSlice("urls")
	replace, _ := cmd.Flags().GetBool("replace")
	title, _ := cmd.Flags().GetString("title")

	result, err := flows.Update(cmd.Context(), deps, flows.UpdateOptions{
		PackageIdentifier: args[0],
		NewVersion:        version,
		URLs:              urls,
		OutDir:            dir,
		Submit:            submit,
		Replace:           replace,
		Title:             title,
	})
	if err != nil {
		return err
	}

	cmd.Println(flows.RenderInstallerTable(result.Set.Installer))
	for _, w := range result.ArchitectureWarnings {
		cmd.Printf("Warning: %s\n", w.String())
	}
	for _, p := range result.Paths {
		cmd.Println(p)
	}
	if result.PullRequest != nil {
		cmd.Printf("Pull request #%d: %s\n", result.PullRequest.Number, result.PullRequest.URL)
	}
	return nil
}
