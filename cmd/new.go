/*
Copyright © 2026 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/manifold/internal/flows"
)

var newCmd = &cobra.Command{
	Use:   "new <installer-url> [installer-url...]",
	Short: "Create a manifest set from installer URLs",
	Long: `Downloads each installer URL, detects architecture, installer type,
hashes, and package identity, and writes a fresh multi-file manifest set.
Pass --submit to open a pull request against the manifest repository.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().String("id", "", "Package identifier (Publisher.Package)")
	newCmd.Flags().String("version", "", "Package version")
	newCmd.Flags().String("locale", "en-US", "Default locale tag")
	newCmd.Flags().Bool("submit", false, "Open a pull request after writing")
	newCmd.Flags().String("title", "", "Pull request title override")
	_ = newCmd.MarkFlagRequired("id")
	_ = newCmd.MarkFlagRequired("version")
}

func runNew(cmd *cobra.Command, args []string) error {
	submit, _ := cmd.Flags().GetBool("submit")
	deps, err := buildDeps(cmd, submit)
	if err != nil {
		return err
	}
	dir, err := outDir(cmd)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("id")
	version, _ := cmd.Flags().GetString("version")
	locale, _ := cmd.Flags().GetString("locale")
	title, _ := cmd.Flags().GetString("title")

	result, err := flows.New(cmd.Context(), deps, flows.NewOptions{
		PackageIdentifier: id,
		PackageVersion:    version,
		DefaultLocale:     locale,
		URLs:              args,
		OutDir:            dir,
		Submit:            submit,
		Title:             title,
	})
	if err != nil {
		return err
	}

	cmd.Println(flows.RenderInstallerTable(result.Set.Installer))
	for _, p := range result.Paths {
		cmd.Println(p)
	}
	if result.PullRequest != nil {
		cmd.Printf("Pull request #%d: %s\n", result.PullRequest.Number, result.PullRequest.URL)
	}
	return nil
}
