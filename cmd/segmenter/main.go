/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"segmenter/internal/config"
	"segmenter/internal/crash"
	"segmenter/internal/domain"
	"segmenter/internal/editor"
	"segmenter/internal/export"
	applog "segmenter/internal/log"
	"segmenter/internal/storage"
	"segmenter/internal/ui"
	"segmenter/internal/vector"
	"segmenter/internal/version"
)

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Segmenter: baseline, mask and region editor")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  segmenter version|-v|--version                   Show version")
	_, _ = fmt.Fprintln(w, "  segmenter check <payload.json>                    Validate a payload and print a summary")
	_, _ = fmt.Fprintln(w, "  segmenter render <payload.json> <out.png|out.pdf> [image]")
	_, _ = fmt.Fprintln(w, "                                                    Draw the segmentation, over the page image if given")
	_, _ = fmt.Fprintln(w, "  segmenter import <payload.json> <doc-key> [db]    Replace a stored document with a payload")
	_, _ = fmt.Fprintln(w, "  segmenter dump <doc-key> [db]                     Print a stored document as a payload")
	_, _ = fmt.Fprintln(w, "  segmenter list [db]                               List stored documents")
	_, _ = fmt.Fprintln(w, "  segmenter ui [image] [payload.json]               Launch the desktop editor (build with -tags fyne)")
}

// cli carries what every command needs.
type cli struct {
	cfg    config.AppConfig
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
	sess   *crash.Session
}

func main() {
	sess := &crash.Session{}
	defer crash.Recover(sess)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, sess))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, sess *crash.Session) int {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	if sess == nil {
		sess = &crash.Session{}
	}
	c := &cli{cfg: cfg, out: stdout, errOut: stderr, log: l, sess: sess}
	l.Debug("start", slog.Int("args", len(args)))

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "check":
		if len(args) < 2 {
			return c.missing("check requires <payload.json>")
		}
		err = c.check(args[1])
	case "render":
		if len(args) < 3 {
			return c.missing("render requires <payload.json> and <out.png|out.pdf>")
		}
		img := ""
		if len(args) > 3 {
			img = args[3]
		}
		err = c.render(args[1], args[2], img)
	case "import":
		if len(args) < 3 {
			return c.missing("import requires <payload.json> and <doc-key>")
		}
		err = c.withStore(optional(args, 3), func(ctx context.Context, st *storage.Store) error {
			return c.importPayload(ctx, st, args[1], args[2])
		})
	case "dump":
		if len(args) < 2 {
			return c.missing("dump requires <doc-key>")
		}
		err = c.withStore(optional(args, 2), func(ctx context.Context, st *storage.Store) error {
			return c.dump(ctx, st, args[1])
		})
	case "list":
		err = c.withStore(optional(args, 1), c.list)
	case "ui":
		opts := ui.Options{
			ImagePath:   optional(args, 1),
			PayloadPath: optional(args, 2),
			Editor:      cfg.Editor.Options(),
			CrashDir:    sess.Dir,
		}
		err = ui.Run(opts)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func optional(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func (c *cli) missing(msg string) int {
	_, _ = fmt.Fprintln(c.errOut, msg)
	usage(c.errOut)
	return 2
}

// newEditor builds a headless editor from the configuration, sized to img
// when one is given.
func (c *cli) newEditor(img image.Image) *editor.Editor {
	opts := c.cfg.Editor.Options()
	opts.Logger = applog.WithComponent("editor")
	if img != nil {
		b := img.Bounds()
		opts.Image = img
		opts.ImageWidth, opts.ImageHeight = float64(b.Dx()), float64(b.Dy())
	}
	ed := editor.New(nil, opts)
	c.sess.Editor = ed
	return ed
}

func (c *cli) loadInto(ed *editor.Editor, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	c.sess.Document = filepath.Base(path)
	return ed.LoadJSON(data)
}

func (c *cli) check(path string) error {
	ed := c.newEditor(nil)
	if err := c.loadInto(ed, path); err != nil {
		return err
	}
	var masked, maskless int
	for _, l := range ed.Lines() {
		if l.HasMask() {
			masked++
		}
		if !l.HasBaseline() {
			maskless++
		}
	}
	_, _ = fmt.Fprintf(c.out, "Payload: %s\n", path)
	_, _ = fmt.Fprintf(c.out, "Lines: %d (masked %d, without baseline %d)\n", len(ed.Lines()), masked, maskless)
	_, _ = fmt.Fprintf(c.out, "Regions: %d\n", len(ed.Regions()))
	_, _ = fmt.Fprintf(c.out, "Max order: %d\n", ed.MaxOrder())
	_, _ = fmt.Fprintf(c.out, "Average line height: %.1f\n", averageHeight(ed))
	return nil
}

func averageHeight(ed *editor.Editor) float64 {
	var sum float64
	var n int
	for _, l := range ed.Lines() {
		if h := l.LineHeight(); h > 0 {
			sum += h
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (c *cli) render(payloadPath, outPath, imagePath string) error {
	var img image.Image
	if imagePath != "" {
		var err error
		if img, _, err = export.DecodeImage(imagePath); err != nil {
			return err
		}
	}
	ed := c.newEditor(img)
	if err := c.loadInto(ed, payloadPath); err != nil {
		return err
	}
	scene, ok := ed.Surface().(*vector.Scene)
	if !ok {
		return fmt.Errorf("render: unsupported surface %T", ed.Surface())
	}
	opts := export.Options{Background: img, Title: filepath.Base(payloadPath)}
	if img == nil {
		opts.Canvas = vector.White
	}
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".png":
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := export.RenderPNG(f, scene, opts); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	case ".pdf":
		if err := export.RenderPDF(outPath, scene, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("render: unsupported output %q (want .png or .pdf)", filepath.Ext(outPath))
	}
	c.log.Info("rendered", slog.String("out", outPath), slog.Int("lines", len(ed.Lines())), slog.Int("regions", len(ed.Regions())))
	_, _ = fmt.Fprintln(c.out, "Wrote", outPath)
	return nil
}

// withStore opens the database at path, or the configured one, for fn.
func (c *cli) withStore(path string, fn func(context.Context, *storage.Store) error) error {
	if path == "" {
		p, err := c.cfg.StorePath()
		if err != nil {
			return err
		}
		path = p
	}
	st, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			c.log.Error("close store", slog.Any("err", err))
		}
	}()
	return fn(context.Background(), st)
}

func (c *cli) importPayload(ctx context.Context, st *storage.Store, path, key string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	p, err := domain.Decode(data, c.cfg.Editor.Options().IDField)
	if err != nil {
		return err
	}
	lines, regions, err := st.ImportPayload(ctx, key, p)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "Imported %d lines and %d regions into %s\n", lines, regions, key)
	return nil
}

func (c *cli) dump(ctx context.Context, st *storage.Store, key string) error {
	p, err := st.LoadPayload(ctx, key)
	if err != nil {
		return fmt.Errorf("dump %s: %w", key, err)
	}
	idField := c.cfg.Editor.Options().IDField
	if idField == "" {
		idField = editor.DefaultOptions().IDField
	}
	data, err := p.Encode(idField)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

func (c *cli) list(ctx context.Context, st *storage.Store) error {
	docs, err := st.Documents(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		_, _ = fmt.Fprintln(c.out, "No documents in", st.Path())
		return nil
	}
	for _, d := range docs {
		_, _ = fmt.Fprintf(c.out, "%s\t%dx%d\tlines %d\tregions %d\n", d.Key, d.Width, d.Height, d.Lines, d.Regions)
	}
	return nil
}
