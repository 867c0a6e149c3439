package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mercator-hq/orison/pkg/cli"
	"github.com/mercator-hq/orison/pkg/registry"
)

var validateRegistryFlags struct {
	manifest string
	emit     bool
	version  string
}

var validateRegistryCmd = &cobra.Command{
	Use:   "validate-registry",
	Short: "Validate a model capability manifest",
	Long: `Parse a manifest file, reject unknown fields and malformed entries,
and build a registry snapshot from it. With --emit, re-print the
manifest in its normalized form after validation succeeds.`,
	RunE: runValidateRegistry,
}

func init() {
	rootCmd.AddCommand(validateRegistryCmd)

	validateRegistryCmd.Flags().StringVar(&validateRegistryFlags.manifest, "manifest", "", "path to the manifest file (required)")
	validateRegistryCmd.Flags().BoolVar(&validateRegistryFlags.emit, "emit", false, "print the normalized manifest to stdout")
	validateRegistryCmd.Flags().StringVar(&validateRegistryFlags.version, "emit-version", "v1", "manifest schema version to emit")
	validateRegistryCmd.MarkFlagRequired("manifest")
}

func runValidateRegistry(cmd *cobra.Command, args []string) error {
	models, err := registry.LoadManifest(validateRegistryFlags.manifest)
	if err != nil {
		return cli.NewCommandError("validate-registry", fmt.Errorf("manifest invalid: %w", err))
	}

	reg, err := registry.NewFromModels(models)
	if err != nil {
		return cli.NewCommandError("validate-registry", fmt.Errorf("building registry: %w", err))
	}

	fmt.Printf("ok: %d models loaded\n", reg.Len())
	for _, id := range reg.SortedIDs() {
		m, _ := reg.Get(id)
		fmt.Printf("  %-30s provider=%-12s maturity=%s\n", m.ID, m.Provider, m.Maturity)
	}

	if validateRegistryFlags.emit {
		out, err := reg.Serialize(validateRegistryFlags.version)
		if err != nil {
			return cli.NewCommandError("validate-registry", fmt.Errorf("serializing manifest: %w", err))
		}
		fmt.Println("---")
		fmt.Println(string(out))
	}

	return nil
}
