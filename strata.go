// Package strata reconstructs document structure from layout-analyzer
// output. Given pages of positioned elements (text blocks, lines,
// drawing rules), a pipeline of transformations removes repeated and
// non-content material, detects table regions, reconciles multi-column
// layouts, infers the title hierarchy from font prominence, and emits an
// ordered stream of titles, paragraphs, and tables.
//
// Basic usage:
//
//	pipeline := strata.NewPipeline()
//	doc, err := pipeline.Dig(ctx, "report", pages)
//	if err != nil {
//	    // handle error
//	}
//	html := doc.ToHTML()
//
// With options:
//
//	config := strata.DefaultConfig()
//	config.HeaderFooter.Margins = [4]float64{0.3, 0.2, 0.2, 0.2}
//	config.CellExtractor = myExtractor
//	pipeline, err := strata.NewPipelineWithConfig(config)
//
// For batch processing over many documents, see [Runner]. The lower
// level model, layout, and tables packages are also available.
package strata

import (
	"context"
	"fmt"

	"github.com/tsawler/strata/layout"
	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/tables"
)

// Config collects the tunables of every pipeline stage. The zero value
// is not usable; start from [DefaultConfig].
type Config struct {
	Landscape    layout.LandscapeConfig
	TOC          layout.TOCConfig
	HeaderFooter layout.HeaderFooterConfig
	LineMerge    layout.LineMergeConfig
	Tables       tables.Config
	TableMerge   tables.MergeConfig
	SplitBlock   layout.SplitBlockConfig
	OneLiner     layout.OneLinerConfig
	Font         layout.FontConfig

	// CellExtractor optionally supplies structured cell grids for
	// detected table regions. When nil, tables are emitted without rows.
	CellExtractor tables.CellExtractor

	// GroupBullets folds a colon-terminated paragraph and the bulleted
	// paragraphs following it into one paragraph node.
	GroupBullets bool

	// Linear skips the defensive page copy at the start of a run. The
	// input pages are then mutated in place; callers that do not reuse
	// them afterwards can avoid the copy.
	Linear bool
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Landscape:    layout.DefaultLandscapeConfig(),
		TOC:          layout.DefaultTOCConfig(),
		HeaderFooter: layout.DefaultHeaderFooterConfig(),
		LineMerge:    layout.DefaultLineMergeConfig(),
		Tables:       tables.DefaultConfig(),
		TableMerge:   tables.DefaultMergeConfig(),
		SplitBlock:   layout.DefaultSplitBlockConfig(),
		OneLiner:     layout.DefaultOneLinerConfig(),
		Font:         layout.DefaultFontConfig(),
		GroupBullets: true,
	}
}

// Validate checks every stage configuration. A pipeline is never built
// from an invalid configuration; failures surface here, before any
// document is processed.
func (c Config) Validate() error {
	checks := []struct {
		name string
		err  error
	}{
		{"header-footer", c.HeaderFooter.Validate()},
		{"line-merge", c.LineMerge.Validate()},
		{"tables", c.Tables.Validate()},
		{"table-merge", c.TableMerge.Validate()},
		{"split-block", c.SplitBlock.Validate()},
		{"one-liner", c.OneLiner.Validate()},
		{"font", c.Font.Validate()},
	}
	for _, check := range checks {
		if check.err != nil {
			return fmt.Errorf("%s config: %w", check.name, check.err)
		}
	}
	return nil
}

// Stage is a single transformation run by the pipeline over a
// document's pages.
type Stage interface {
	// Name identifies the stage in errors and logs.
	Name() string
	// Run transforms the pages in place.
	Run(pages []*model.Page) error
}

type stage struct {
	name string
	run  func(pages []*model.Page) error
}

func (s stage) Name() string                  { return s.name }
func (s stage) Run(pages []*model.Page) error { return s.run(pages) }

// Pipeline runs the full reconstruction over one document. A Pipeline
// is safe for concurrent use: stages hold no per-document state.
type Pipeline struct {
	config Config
	stages []Stage
}

// NewPipeline creates a pipeline with default configuration.
func NewPipeline() *Pipeline {
	p, err := NewPipelineWithConfig(DefaultConfig())
	if err != nil {
		// DefaultConfig always validates.
		panic(err)
	}
	return p
}

// NewPipelineWithConfig creates a pipeline with the given configuration.
func NewPipelineWithConfig(config Config) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	headerFooter, err := layout.NewHeaderFooterDetectorWithConfig(config.HeaderFooter)
	if err != nil {
		return nil, err
	}
	lineMerger, err := layout.NewLineMergerWithConfig(config.LineMerge)
	if err != nil {
		return nil, err
	}
	detector, err := tables.NewDetectorWithConfig(config.Tables)
	if err != nil {
		return nil, err
	}
	oneLiner, err := layout.NewOneLinerRepairerWithConfig(config.OneLiner)
	if err != nil {
		return nil, err
	}
	fonts, err := layout.NewFontExtractorWithConfig(config.Font)
	if err != nil {
		return nil, err
	}
	titles := layout.NewTitleClassifier()

	silent := func(fn func(pages []*model.Page)) func(pages []*model.Page) error {
		return func(pages []*model.Page) error {
			fn(pages)
			return nil
		}
	}
	perPage := func(fn func(page *model.Page)) func(pages []*model.Page) error {
		return func(pages []*model.Page) error {
			for _, page := range pages {
				fn(page)
			}
			return nil
		}
	}

	stages := []Stage{
		stage{"remove-landscape-pages", silent(func(pages []*model.Page) {
			layout.RemoveLandscapePages(pages, config.Landscape)
		})},
		stage{"remove-toc", silent(func(pages []*model.Page) {
			layout.RemoveTOCPages(pages, config.TOC)
		})},
		stage{"remove-non-searchable", silent(layout.RemoveNonSearchablePages)},
		stage{"remove-math-text", silent(layout.RemoveMathText)},
		stage{"remove-empty-lines", silent(layout.RemoveEmptyLines)},
		stage{"remove-headers", silent(headerFooter.Remove)},
		stage{"merge-column-lines", perPage(lineMerger.Merge)},
		stage{"reorder-columns", perPage(func(page *model.Page) {
			layout.ReorderColumns(page, config.LineMerge.MiddleMargin)
		})},
		stage{"detect-tables", func(pages []*model.Page) error {
			detected := detector.DetectPages(pages)
			return tables.ExtractInto(config.CellExtractor, pages, detected)
		}},
		stage{"merge-tables", silent(func(pages []*model.Page) {
			tables.MergeAcrossPages(pages, config.TableMerge)
		})},
		stage{"fix-split-blocks", silent(func(pages []*model.Page) {
			layout.FixSplitBlocks(pages, config.SplitBlock)
		})},
		stage{"repair-one-liners", oneLiner.Repair},
		stage{"extract-fonts", silent(fonts.ExtractPages)},
		stage{"classify-titles", silent(titles.Classify)},
		stage{"normalize-title-levels", silent(layout.NormalizeTitleLevels)},
	}

	return &Pipeline{config: config, stages: stages}, nil
}

// Stages returns the pipeline's stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Dig runs the full reconstruction over one document and assembles the
// resulting node stream. Cancellation is honored between stages; a
// started stage always runs to completion, keeping the pages in a
// stage-consistent state. A stage error abandons the document.
func (p *Pipeline) Dig(ctx context.Context, name string, pages []*model.Page) (*model.Document, error) {
	if !p.config.Linear {
		pages = model.ClonePages(pages)
	}
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.Run(pages); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return Assemble(name, pages, p.config.GroupBullets), nil
}
