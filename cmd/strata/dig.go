package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/strata"
	"github.com/tsawler/strata/model"
)

var (
	digFormat  string
	digOutDir  string
	digWorkers int
)

var digCmd = &cobra.Command{
	Use:   "dig <pages.json> [pages.json ...]",
	Short: "Reconstruct documents from analyzer page JSON",
	Long: `Run the reconstruction pipeline over one or more analyzer page files.

Each input file holds the page JSON emitted by the upstream layout
analyzer. With --out the result is written next to the input name in
the given directory; otherwise it goes to stdout.

Examples:
  strata dig report.json                      # JSON document on stdout
  strata dig --format html report.json        # HTML on stdout
  strata dig --format markdown --out docs/ *.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, err := formatExt(digFormat)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		pipeline, err := strata.NewPipelineWithConfig(cfg)
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		jobs := make([]strata.Job, 0, len(args))
		for _, path := range args {
			pages, err := readPages(path)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			jobs = append(jobs, strata.Job{Name: name, Pages: pages})
		}

		runner := strata.NewRunner(pipeline, digWorkers, logger)
		results := runner.Run(cmd.Context(), jobs)

		failed := 0
		for _, res := range results {
			if res.Failed() {
				failed++
				continue
			}
			if err := writeDocument(res.Document, ext); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(jobs))
		}
		return nil
	},
}

func init() {
	digCmd.Flags().StringVarP(&digFormat, "format", "f", "json", "output format: json, yaml, html, or markdown")
	digCmd.Flags().StringVarP(&digOutDir, "out", "o", "", "output directory (default: stdout)")
	digCmd.Flags().IntVarP(&digWorkers, "workers", "w", runtime.NumCPU(), "number of concurrent documents")

	rootCmd.AddCommand(digCmd)
}

func formatExt(format string) (string, error) {
	switch format {
	case "json":
		return ".json", nil
	case "yaml":
		return ".yaml", nil
	case "html":
		return ".html", nil
	case "markdown":
		return ".md", nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, yaml, html, or markdown)", format)
	}
}

func readPages(path string) ([]*model.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages, err := model.DecodePages(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pages, nil
}

func renderDocument(doc *model.Document, format string) ([]byte, error) {
	switch format {
	case "json":
		return doc.ToJSON()
	case "yaml":
		return doc.ToYAML()
	case "html":
		return []byte(doc.ToHTML()), nil
	case "markdown":
		return []byte(doc.ToMarkdown()), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeDocument(doc *model.Document, ext string) error {
	data, err := renderDocument(doc, digFormat)
	if err != nil {
		return err
	}
	if digOutDir == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(digOutDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(digOutDir, doc.Name+ext), data, 0o644)
}
