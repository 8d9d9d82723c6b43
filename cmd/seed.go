package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/SaugatGautam100/courseplex-sub001/logging"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

var fixtureFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture tree into the store in one update",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fixtureFile == "" {
			return fmt.Errorf("--file is required")
		}
		// seeding happens here, not at startup
		cfg.SeedFile = ""
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := seedStore(cmd.Context(), a.st, fixtureFile)
		if err != nil {
			return err
		}
		logging.Logger.Info("🌱 fixtures loaded",
			zap.String("file", fixtureFile),
			zap.String("store", cfg.StoreBackend),
			zap.Int("collections", n))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&fixtureFile, "file", "", "YAML fixture file")
	rootCmd.AddCommand(seedCmd)
}

// seedStore writes every top-level collection of the fixture file in a
// single update and returns how many were written.
func seedStore(ctx context.Context, st store.Store, path string) (int, error) {
	values, err := loadFixtures(path)
	if err != nil {
		return 0, err
	}
	if err := st.Update(ctx, values); err != nil {
		return 0, fmt.Errorf("seed %s: %w", path, err)
	}
	return len(values), nil
}

func loadFixtures(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = normalizeYAML(v)
	}
	return out, nil
}

// normalizeYAML turns maps with non-string keys (numeric ids) into
// string-keyed maps so the tree can be stored as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeYAML(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalizeYAML(child)
		}
		return t
	default:
		return v
	}
}
