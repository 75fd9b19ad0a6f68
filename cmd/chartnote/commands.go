/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"chartnote/internal/annotation"
	"chartnote/internal/config"
	"chartnote/internal/crash"
	"chartnote/internal/document"
	"chartnote/internal/export"
	applog "chartnote/internal/log"
	"chartnote/internal/ui"
	"chartnote/internal/version"
)

// app carries what every subcommand shares once the root has run.
type app struct {
	cfg   config.AppConfig
	log   *slog.Logger
	crash *crash.Context

	configPath string
	logLevel   string
}

func newRootCmd(cr *crash.Context) *cobra.Command {
	a := &app{crash: cr}
	root := &cobra.Command{
		Use:           "chartnote",
		Short:         "Annotate charts and export them",
		Long:          "chartnote loads chart documents with annotations, replays pointer scripts\nagainst them and exports the result as SVG, PNG or PDF.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: user config dir)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		a.renderCmd(),
		a.replayCmd(),
		a.validateCmd(),
		a.listCmd(),
		a.uiCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	applog.Init(applog.Options{
		Level:     a.cfg.Logging.Level,
		Format:    a.cfg.Logging.Format,
		AddSource: a.cfg.Logging.Source,
		File:      a.cfg.Logging.File,
		Writer:    stderr,
	})
	a.log = applog.WithComponent("cli")
	return nil
}

// load opens a document and registers it with the crash handler.
func (a *app) load(path string) (*document.Built, error) {
	d, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug("document loaded", "path", path, "annotations", len(d.Annotations))
	b := document.Build(d, a.cfg)
	if a.crash != nil {
		a.crash.Document = path
		a.crash.Snapshot = func() ([]byte, error) { return document.Marshal(b.Snapshot()) }
	}
	return b, nil
}

func (a *app) exportOptions(scale float64, background string) export.Options {
	o := export.OptionsFrom(a.cfg.Export)
	if scale > 0 {
		o.Scale = scale
	}
	if background != "" {
		o.Background = background
	}
	return o
}

func (a *app) renderCmd() *cobra.Command {
	var (
		out, preset, outDir, background string
		scale                           float64
	)
	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Export the chart with its annotations",
		Example: "  chartnote render chart.yaml -o chart.png --scale 2\n" +
			"  chartnote render chart.yaml --preset print --out-dir dist",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.load(args[0])
			if err != nil {
				return err
			}
			defer b.Close()
			o := a.exportOptions(scale, background)

			if preset != "" {
				p, err := export.ParsePreset(preset)
				if err != nil {
					return err
				}
				paths, err := export.Batch(b.Scene, export.BatchOptions{
					Preset:  p,
					OutDir:  outDir,
					Name:    strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])),
					Options: o,
				})
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), "wrote", p)
				}
				return err
			}
			if out == "" {
				return fmt.Errorf("render: --output or --preset is required")
			}
			if err := export.WriteFile(out, b.Scene, o); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (.svg, .png or .pdf)")
	cmd.Flags().StringVar(&preset, "preset", "", "export preset: web or print")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for preset output")
	cmd.Flags().Float64Var(&scale, "scale", 0, "raster scale factor")
	cmd.Flags().StringVar(&background, "background", "", "page background color")
	return cmd
}

func (a *app) replayCmd() *cobra.Command {
	var (
		out, script string
		scale       float64
	)
	cmd := &cobra.Command{
		Use:   "replay <document>",
		Short: "Run a pointer script against the document",
		Long: "replay feeds the document's script (or --script) through the annotation\n" +
			"engine. The output extension selects the result: .yaml or .yml saves the\n" +
			"document with the new annotations, anything else is exported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.load(args[0])
			if err != nil {
				return err
			}
			defer b.Close()

			steps := b.Doc.Script
			if script != "" {
				if steps, err = loadSteps(script); err != nil {
					return err
				}
			}
			if err := document.Replay(b, steps); err != nil {
				return err
			}
			a.log.Info("replay done", "steps", len(steps), "annotations", b.Manager.Collection().Len())

			switch strings.ToLower(filepath.Ext(out)) {
			case "":
				return fmt.Errorf("replay: --output is required")
			case ".yaml", ".yml":
				snap := b.Snapshot()
				snap.Script = nil
				if err := document.Save(out, snap); err != nil {
					return err
				}
			default:
				if err := export.WriteFile(out, b.Scene, a.exportOptions(scale, "")); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output document (.yaml) or export (.svg, .png, .pdf)")
	cmd.Flags().StringVar(&script, "script", "", "YAML list of steps to run instead of the document script")
	cmd.Flags().Float64Var(&scale, "scale", 0, "raster scale factor")
	return cmd
}

func loadSteps(path string) ([]document.Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var steps []document.Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return steps, nil
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <document>...",
		Short: "Check documents against the schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bad := 0
			for _, p := range args {
				data, err := os.ReadFile(p)
				if err == nil {
					err = document.Validate(data)
				}
				if err != nil {
					bad++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", p, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", p)
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d documents invalid", bad, len(args))
			}
			return nil
		},
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <document>",
		Short: "Print the annotations of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := document.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), annotationTable(d.Annotations))
			return nil
		},
	}
}

func annotationTable(opts []annotation.Options) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "ID", "ANCHOR", "SHAPE", "TITLE")
	for i, o := range opts {
		t.Row(strconv.Itoa(i), o.ID, anchorText(o), shapeText(o), titleText(o))
	}
	return t.Render()
}

func anchorText(o annotation.Options) string {
	if o.XValue != nil || o.YValue != nil {
		return fmt.Sprintf("value %s, %s", num(o.XValue), num(o.YValue))
	}
	return fmt.Sprintf("px %s, %s", num(o.X), num(o.Y))
}

func shapeText(o annotation.Options) string {
	if o.Shape == nil || o.Shape.Type == "" {
		return "-"
	}
	return o.Shape.Type
}

func titleText(o annotation.Options) string {
	if o.Title == nil || o.Title.Text == "" {
		return "-"
	}
	return strings.ReplaceAll(o.Title.Text, "<br>", " / ")
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}

func (a *app) uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui [document]",
		Short: "Launch the desktop editor (build with -tags fyne)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return ui.Run(path, a.cfg)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "chartnote", version.String())
		},
	}
}
