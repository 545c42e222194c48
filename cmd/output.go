package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// writePortfolio writes p as indented JSON to dir/<name>.json, dropping an
// "_opt" marker from the file name.
func writePortfolio(dir string, p portfolio.Portfolio) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling portfolio %q: %w", p.Name, err)
	}
	path := filepath.Join(dir, strings.Replace(p.Name, "_opt", "", 1)+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing portfolio %q: %w", p.Name, err)
	}
	return nil
}

// writeExecutorConfig writes a simulate command config that replays portfolios.
func writeExecutorConfig(path string, cfg *ExecutorConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling executor config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing executor config: %w", err)
	}
	return nil
}
