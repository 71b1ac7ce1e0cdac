package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/san/lang"
	"github.com/ardnew/san/log"
)

func Example_trace() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Trace("parse", slog.String("unit", "main.san"), slog.Int("statements", 3))
	logger.Debug("cache", slog.Int("entries", 1))
	// Output:
	// level=TRACE msg=parse unit=main.san statements=3
	// level=DEBUG msg=cache entries=1
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("dropped")
	logger.Warn("slow unit", slog.String("unit", "main.san"))
	// Output:
	// {"level":"WARN","msg":"slow unit","unit":"main.san"}
}

func Example_with() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false)).
		With(slog.String("unit", "lib.san"))

	logger.Info("evaluated", slog.Int("bindings", 2))
	// Output:
	// level=INFO msg=evaluated unit=lib.san bindings=2
}

func Example_report() {
	ctx := context.Background()

	_, err := lang.Parse(ctx, "main.san", "let = 1;")

	log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false)).
		Report(ctx, "parse failed", err)
}
