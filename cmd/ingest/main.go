// Command ingest loads consolidated legislation XML files from disk,
// parses them and schedules indexing. One malformed file fails that file
// only; the batch continues.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/openparl/legisearch/internal/bootstrap"
	"github.com/openparl/legisearch/internal/config"
	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/observability/logging"
)

func main() {
	app := &cli.App{
		Name:  "ingest",
		Usage: "Parse and store consolidated legislation XML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Document language (en or fr)",
				Value:   "en",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Set logging level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Action: ingestCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one XML file or glob is required")
	}

	lang := domain.Language(c.String("lang"))
	if lang != domain.LanguageEN && lang != domain.LanguageFR {
		return fmt.Errorf("unsupported language %q", c.String("lang"))
	}

	cfg := config.Load()
	logger := logging.NewJSONLogger("ingest", c.String("log-level"))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Observers{})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	paths, err := expandArgs(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched")
	}

	var failed int
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			slog.Error("ingest_read_failed", "path", path, "error", err)
			failed++
			continue
		}

		doc, err := app.IngestUC.Ingest(ctx, raw, lang)
		if err != nil {
			slog.Error("ingest_failed", "path", path, "error", err)
			failed++
			continue
		}
		slog.Info("ingest_ok", "path", path, "instrument_id", doc.InstrumentID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// Not a pattern; keep the literal path so the read error surfaces.
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
