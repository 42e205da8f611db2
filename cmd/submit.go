/*
Copyright © 2026 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fulmenhq/manifold/internal/flows"
	"github.com/fulmenhq/manifold/pkg/schema"
)

var submitCmd = &cobra.Command{
	Use:   "submit <manifest-dir>",
	Short: "Validate local manifests and open a pull request",
	Long: `Reads a complete manifest set from a local directory, validates it
against the manifest schemas, and opens a pull request against the manifest
repository. With --validate-only no pull request is opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().Bool("validate-only", false, "Validate without submitting")
	submitCmd.Flags().String("title", "", "Pull request title override")
	submitCmd.Flags().Bool("replace", false, "Remove a superseded version in the same pull request")
	submitCmd.Flags().String("replace-version", "", "Version to remove when --replace is set")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	validateOnly, _ := cmd.Flags().GetBool("validate-only")
	if validateOnly {
		res, err := schema.ValidateDir(args[0])
		if err != nil {
			return err
		}
		reportValidation(cmd, res)
		if !res.Valid {
			return flows.ErrValidationFailed
		}
		return nil
	}

	deps, err := buildDeps(cmd, true)
	if err != nil {
		return err
	}
	title, _ := cmd.Flags().GetString("title")
	replace, _ := cmd.Flags().GetBool("replace")
	replaceVersion, _ := cmd.Flags().GetString("replace-version")

	pr, err := flows.Submit(cmd.Context(), deps, flows.SubmitOptions{
		Dir:            args[0],
		Title:          title,
		Replace:        replace,
		ReplaceVersion: replaceVersion,
	})
	if err != nil {
		return err
	}
	cmd.Printf("Pull request #%d: %s\n", pr.Number, pr.URL)
	return nil
}
