package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wudi/coursekit/ingest"
	"github.com/wudi/coursekit/model"
	"github.com/wudi/coursekit/report"
)

type ingestOptions struct {
	kind     string
	courseID int64
	format   string
	out      string
	noOCR    bool
}

func newIngestCmd(g *globalOptions) *cobra.Command {
	opts := &ingestOptions{}
	cmd := &cobra.Command{
		Use:   "ingest <pdf>",
		Short: "Extract, OCR and chunk one PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, g, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.kind, "kind", "k", string(model.MaterialSlides), "Material type: "+kindList())
	f.Int64Var(&opts.courseID, "course", 0, "Course id stamped on every chunk")
	f.StringVarP(&opts.format, "format", "f", string(report.FormatJSON), "Output format: json, markdown or html")
	f.StringVarP(&opts.out, "out", "o", "", "Write the report to this file instead of stdout")
	f.BoolVar(&opts.noOCR, "no-ocr", false, "Disable OCR for this run")
	return cmd
}

func kindList() string {
	kinds := model.MaterialKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

func runIngest(cmd *cobra.Command, g *globalOptions, opts *ingestOptions, path string) error {
	kind, err := model.ParseMaterialKind(opts.kind)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg := g.cfg.Ingest
	if opts.noOCR {
		cfg.UseOCR = false
	}
	pipeline, err := ingest.New(cfg, ingest.WithLogger(g.logger))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	meta, chunks, err := pipeline.ChunkAndEnrich(cmd.Context(), f, kind, opts.courseID)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		out, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		w = out
	}
	return report.Write(w, format, report.Document{
		Source:   filepath.Base(path),
		Kind:     kind,
		CourseID: opts.courseID,
		Metadata: meta,
		Chunks:   chunks,
	})
}
