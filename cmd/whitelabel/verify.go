package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/whitelabel/pkg/logger"
)

var errUnknownOutput = errors.New("whitelabel: output must be yaml or json")

// verifyResult is printed after a persisted run.
type verifyResult struct {
	OrganizationID uuid.UUID `json:"organization_id" yaml:"organization_id"`
	Verified       bool      `json:"verified" yaml:"verified"`
}

func newVerifyCmd() *cobra.Command {
	var (
		output string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "verify <org-id>",
		Short: "Verify an organization's custom domain",
		Long: `Run the CNAME, TXT and TLS checks for an organization's custom domain.

With --dry-run the checks run and the full report is printed, but nothing
is stored. Without it the verdict is stored and the branding cache is
invalidated, exactly as the operator API does.`,
		Example: `  whitelabel verify 6f1d1a52-3b0c-4c5e-9a51-0c9c1d3a2b11 --dry-run
  whitelabel verify 6f1d1a52-3b0c-4c5e-9a51-0c9c1d3a2b11 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID, err := uuid.Parse(args[0])
			if err != nil || orgID == uuid.Nil {
				return fmt.Errorf("invalid organization id %q", args[0])
			}
			if output != "yaml" && output != "json" {
				return errUnknownOutput
			}

			cfg, err := loadBase(nil)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log, cmd.ErrOrStderr())

			d, err := openDeps(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer d.close()

			v := d.svc.Verifier()
			if dryRun {
				report, err := v.Details(cmd.Context(), orgID)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, report)
			}

			verified, err := v.Verify(cmd.Context(), orgID)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, verifyResult{OrganizationID: orgID, Verified: verified})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the checks without storing the result")
	return cmd
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errUnknownOutput
	}
}
