// Command seed-menu writes a menu into the storefront store, for offline
// deployments or to pre-warm the menu cache before the first request.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"

	appkg "github.com/xenking/tiffin-storefront/internal/app"
	"github.com/xenking/tiffin-storefront/internal/domain/kitchen"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/repository"
)

func main() {
	var (
		cfg          appkg.StoreConfig
		mealsFile    string
		resetKitchen bool
	)
	flag.StringVar(&cfg.Driver, "store", appkg.DriverFile, "store driver: file or postgres")
	flag.StringVar(&cfg.Path, "path", "storefront.json", "snapshot path for the file driver")
	flag.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&cfg.Scope, "scope", "default", "key scope for the postgres driver")
	flag.StringVar(&mealsFile, "meals-file", "", "kitchen API meal records (JSON array or {\"data\": [...]}, .gz allowed); built-in menu when empty")
	flag.BoolVar(&resetKitchen, "reset-kitchen", false, "also reset the kitchen profile to the default")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.Driver == appkg.DriverMemory {
		slog.Error("the memory store does not outlive this command: use file or postgres")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, mealsFile, resetKitchen); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed successfully")
}

func run(ctx context.Context, cfg appkg.StoreConfig, mealsFile string, resetKitchen bool) error {
	slog.Info("opening store", slog.String("driver", cfg.Driver))
	store, closeStore, err := appkg.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	items := menu.DefaultItems()
	if mealsFile != "" {
		if items, err = readMeals(mealsFile); err != nil {
			return errors.Wrap(err, "read meals")
		}
	}

	slog.Info("writing menu", slog.Int("count", len(items)))
	if err := repository.NewMenuRepository(store).Save(ctx, items); err != nil {
		return errors.Wrap(err, "save menu")
	}

	if resetKitchen {
		p := kitchen.Default()
		if err := repository.NewKitchenRepository(store).Save(ctx, p); err != nil {
			return errors.Wrap(err, "save kitchen profile")
		}
		slog.Info("kitchen profile reset", slog.String("name", p.Name))
	}
	return nil
}

// readMeals loads kitchen API meal records from path and normalizes them.
func readMeals(path string) ([]menu.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if d := jx.DecodeBytes(data); d.Next() == jx.Object {
		// API envelope.
		var raw jx.Raw
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			if key != "data" {
				return d.Skip()
			}
			v, err := d.Raw()
			raw = v
			return err
		}); err != nil {
			return nil, errors.Wrap(err, "decode envelope")
		}
		data = raw
	}

	items, skipped, err := menu.DecodeMeals(jx.DecodeBytes(data))
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.Warn("skipped meals without id", slog.Int("count", skipped))
	}
	return items, nil
}
