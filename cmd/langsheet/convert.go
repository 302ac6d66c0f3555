package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/config"
	"github.com/jackzampolin/langsheet/internal/export"
	"github.com/jackzampolin/langsheet/internal/home"
	"github.com/jackzampolin/langsheet/internal/ingest"
	"github.com/jackzampolin/langsheet/internal/profile"
	"github.com/jackzampolin/langsheet/internal/session"
	"github.com/jackzampolin/langsheet/internal/sheet"
)

// convertOptions holds the flags of one conversion.
type convertOptions struct {
	Profile     string
	SaveProfile string
	Game        string
	OutDir      string
	Format      string
	Watch       bool
}

var convertOpts convertOptions

var convertCmd = &cobra.Command{
	Use:   "convert <dir|file>...",
	Short: "Convert spreadsheets into a JSON bundle in one shot",
	Long: `Load every spreadsheet given (folders are expanded one level), apply a
saved profile and export the bundle.

The language of each file is its name without the extension, so en.xlsx
becomes en.json. Files that cannot be read are reported and skipped.

Profiles are looked up in ~/.langsheet/profiles unless the value is a
path to an existing file. Save one from a session with
"langsheet api profile get <id> --save <file>", or from a conversion with
--save-profile.

Examples:
  langsheet convert ./sheets --profile lucky-fruits
  langsheet convert ./sheets --profile ./rules.yaml --format dir --out ./build
  langsheet convert ./sheets --profile lucky-fruits --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := loadEnv(false)
		if err != nil {
			return err
		}
		defer e.Close()

		if convertOpts.Format != "zip" && convertOpts.Format != "dir" {
			return fmt.Errorf("unknown format %q: want zip or dir", convertOpts.Format)
		}
		if convertOpts.OutDir == "" {
			convertOpts.OutDir = e.home.ExportsDir()
		}

		cfg := e.config.Get()
		c := &converter{
			cfg:       cfg,
			home:      e.home,
			logger:    e.logger,
			extractor: sheet.NewXLSXExtractor(cfg.Input.OpenAttempts, cfg.Input.OpenDelay, e.logger),
			opts:      convertOpts,
		}

		if !convertOpts.Watch {
			return c.run(ctx, args)
		}

		if len(args) != 1 {
			return errors.New("--watch takes exactly one folder")
		}
		if info, err := os.Stat(args[0]); err != nil || !info.IsDir() {
			return fmt.Errorf("--watch needs a folder: %s", args[0])
		}
		if err := c.run(ctx, args); err != nil {
			e.logger.Error("initial conversion failed", "error", err)
		}
		fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", args[0])
		err = ingest.Watch(ctx, args[0], cfg.Filter(), ingest.DefaultDebounce, e.logger, func(ctx context.Context) error {
			return c.run(ctx, args)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertOpts.Profile, "profile", "", "profile name or file with keys and mapping")
	f.StringVar(&convertOpts.SaveProfile, "save-profile", "", "save the resulting profile under this name or path")
	f.StringVar(&convertOpts.Game, "game", "", "game name (default: first header of the reference language)")
	f.StringVar(&convertOpts.OutDir, "out", "", "output directory (default: ~/.langsheet/exports)")
	f.StringVar(&convertOpts.Format, "format", "zip", "bundle format: zip or dir")
	f.BoolVar(&convertOpts.Watch, "watch", false, "convert again whenever the folder changes")

	rootCmd.AddCommand(convertCmd)
}

// converter runs one load, profile, export pass.
type converter struct {
	cfg       *config.Config
	home      *home.Dir
	logger    *slog.Logger
	extractor sheet.Extractor
	opts      convertOptions
}

func (c *converter) run(ctx context.Context, args []string) error {
	sources, err := c.cfg.Filter().Discover(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no %s files found", c.cfg.Input.Extension)
	}

	opts := c.cfg.SessionOptions()
	opts.Logger = c.logger
	s := session.New(opts)

	res, err := s.LoadFiles(ctx, c.extractor, sources)
	if err != nil {
		return err
	}
	for _, sk := range res.Skipped {
		fmt.Fprintf(os.Stderr, "Skipped %s: %s\n", sk.Path, sk.Reason())
	}

	if c.opts.Profile != "" {
		p, err := profile.Load(resolveProfile(c.home, c.opts.Profile))
		if err != nil {
			return err
		}
		s.ApplyProfile(p)
	}
	if c.opts.Game != "" {
		s.SetGameName(c.opts.Game)
	}

	path, err := c.export(ctx, s)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d languages to %s\n", len(res.Documents), path)

	if c.opts.SaveProfile != "" {
		dest := c.home.ProfilePath(c.opts.SaveProfile)
		if err := profile.Save(dest, s.Profile()); err != nil {
			return err
		}
		fmt.Printf("Saved profile to %s\n", dest)
	}
	return nil
}

func (c *converter) export(ctx context.Context, s *session.Session) (string, error) {
	if c.opts.Format == "dir" {
		a := &export.DirArchiver{Dir: c.opts.OutDir}
		if _, err := s.Export(ctx, a); err != nil {
			return "", err
		}
		return a.Path, nil
	}
	a := &export.FileArchiver{Dir: c.opts.OutDir}
	if _, err := s.Export(ctx, a); err != nil {
		return "", err
	}
	return a.Path, nil
}

// resolveProfile prefers an existing file, then the named profile in home.
func resolveProfile(h *home.Dir, value string) string {
	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		return value
	}
	return h.ProfilePath(value)
}
