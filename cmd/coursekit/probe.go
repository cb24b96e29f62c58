package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wudi/coursekit/ingest"
	"github.com/wudi/coursekit/ocr"
	"github.com/wudi/coursekit/raster"
)

func newProbeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report the OCR and rasterizer backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := g.cfg.Ingest
			cfg.UseOCR = true
			fmt.Fprintf(out, "rasterizer: %s\n", raster.Default().Name())
			fmt.Fprintf(out, "ocr backends: %s\n", strings.Join(ocr.Registered(), ", "))

			pipeline, err := ingest.New(cfg, ingest.WithLogger(g.logger))
			if err != nil {
				return err
			}
			caps := pipeline.Capabilities()
			if !pipeline.OCRReady() {
				fmt.Fprintf(out, "ocr %s: unavailable\n", cfg.OCRBackend)
				return nil
			}
			fmt.Fprintf(out, "ocr %s: %s %s\n", cfg.OCRBackend, caps.Engine, caps.Version)
			fmt.Fprintf(out, "engine modes: %s\n", supported(caps.EngineModes))
			if len(caps.Languages) > 0 {
				fmt.Fprintf(out, "languages: %s\n", strings.Join(caps.Languages, ", "))
			}
			for _, lang := range []string{ocr.LangEnglish, ocr.LangGerman} {
				if !caps.HasLanguage(lang) {
					fmt.Fprintf(out, "missing language pack: %s\n", lang)
				}
			}
			return nil
		},
	}
}

func supported(ok bool) string {
	if ok {
		return "supported"
	}
	return "ignored"
}
