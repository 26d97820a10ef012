// Package layout reclassifies analyzer output into document structure.
//
// The package provides the per-document transformation stages that turn a
// flat list of positioned page elements into material ready for assembly:
//
//   - Page cleaning: dropping landscape pages, tables of contents,
//     non-searchable pages, math characters, and empty lines.
//   - [HeaderFooterDetector] - finds and removes content repeated across
//     pages in the page margins.
//   - [LineMerger] and [ReorderColumns] - reconcile multi-column layouts
//     with the analyzer's line segmentation.
//   - [FontExtractor] - summarizes each text block's visual style.
//   - [TitleClassifier] and [NormalizeTitleLevels] - infer the title
//     hierarchy from font prominence and document structure.
//   - [FixSplitBlocks] and [OneLinerRepairer] - merge paragraphs the
//     analyzer split apart.
//
// Stages mutate pages in place and are silent; orchestration, logging and
// defensive copying live in the root package.
package layout
