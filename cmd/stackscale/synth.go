package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rshade/stackscale/internal/construct"
	"github.com/rshade/stackscale/internal/manifest"
	"github.com/rshade/stackscale/internal/template"
)

var (
	synthManifest string
	synthFormat   string
	synthOutput   string
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Synthesize a manifest into a deployment template",
	RunE:  runSynth,
}

func init() {
	synthCmd.Flags().StringVarP(&synthManifest, "manifest", "m", "stack.yaml", "Path to the stack manifest")
	synthCmd.Flags().StringVarP(&synthFormat, "format", "f", "json", "Output format: json or yaml")
	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "", "Write the template to a file instead of stdout")
	rootCmd.AddCommand(synthCmd)
}

func runSynth(cmd *cobra.Command, args []string) error {
	tpl, err := synthesize(synthManifest)
	if err != nil {
		return err
	}

	var out []byte
	switch synthFormat {
	case "json":
		out, err = tpl.JSON()
	case "yaml":
		out, err = tpl.YAML()
	default:
		return fmt.Errorf("unknown format %q (expected json or yaml)", synthFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if synthOutput == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(synthOutput, out, 0o644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	log.Info().Str("path", synthOutput).Int("resources", len(tpl.Resources)).Msg("Template written")
	return nil
}

// synthesize loads the manifest, builds the construct tree and emits the
// template. Shared by the synth and serve commands.
func synthesize(path string) (*template.Template, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("stack", m.Name).Int("groups", len(m.Groups)).Msg("Manifest loaded")

	tree := construct.NewTree()
	if err := m.Build(tree); err != nil {
		return nil, err
	}
	tpl, err := template.Synthesize(tree)
	if err != nil {
		return nil, err
	}
	tpl.Description = m.Name
	return tpl, nil
}
