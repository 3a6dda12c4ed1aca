package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample API manifest",
		Long:  "Scaffold a commented API manifest that documents the available fields.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "damascus.yaml", "Where to write the sample manifest")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "damascus.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleManifestYAML) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample manifest to %s\n", absPath)
	return nil
}

// sampleManifestYAML is a commented example manifest documenting the fields.
const sampleManifestYAML = `# damascus API manifest (YAML)

# The API name. Required; also names the generated client file.
name: calc

# Optional metadata carried into generated file headers.
# description: A calculator API
# organization: acme
# repository: https://github.com/acme/calc
# website: https://calc.example.com
# docs: https://docs.calc.example.com

# Optional OpenAPI document; its components become addressable via
# "component: <Name>" type nodes.
# openapi: ./openapi.yaml

# Root headers sent with every request. A header is a literal, a parameter,
# or a pattern with one {param} placeholder.
# headers:
#   Authorization:
#     pattern: "Bearer {token}"
#     param: token
#     type: {schema: {type: string}}
#   X-Api-Version:
#     literal: "1"

services:
  math:
    endpoints:
      operation:
        method: POST
        path: math/{operation}
        params:
          operation:
            schema:
              title: EnumOperation
              enum: [Add, Subtract]
        body:
          schema:
            title: Input
            type: object
            required: [a, b]
            properties:
              a: {type: integer}
              b: {type: integer}
        response:
          schema:
            title: Output
            type: object
            required: [output]
            properties:
              output: {type: integer}
`
