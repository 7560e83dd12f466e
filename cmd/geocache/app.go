package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"github.com/urfave/cli/v3"

	"github.com/Sternrassler/geocode-cache/pkg/batch"
	"github.com/Sternrassler/geocode-cache/pkg/cache"
	"github.com/Sternrassler/geocode-cache/pkg/client"
	"github.com/Sternrassler/geocode-cache/pkg/config"
	"github.com/Sternrassler/geocode-cache/pkg/geocode"
	"github.com/Sternrassler/geocode-cache/pkg/logging"
	"github.com/Sternrassler/geocode-cache/pkg/server"
)

// app carries state shared by all commands once setup has run.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// components are the wired lookup pieces.
type components struct {
	service *geocode.Service
	forward *cache.Store[geocode.Coordinates]
	reverse *cache.Store[string]
}

func newApp() *cli.Command {
	a := &app{}

	return &cli.Command{
		Name:    "geocache",
		Usage:   "Caching front end for the positionstack geocoding API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "log-pretty",
				Usage: "human-readable console logs",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP service",
				Action: a.serve,
			},
			{
				Name:      "forward",
				Usage:     "Look up the coordinates of an address",
				ArgsUsage: "ADDRESS",
				Action:    a.forward,
			},
			{
				Name:      "reverse",
				Usage:     "Look up the address at a latitude and longitude",
				ArgsUsage: "LATITUDE LONGITUDE",
				Action:    a.reverse,
			},
			{
				Name:      "batch",
				Usage:     "Look up many addresses (arguments, or one per line on stdin)",
				ArgsUsage: "[ADDRESS...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print results as a JSON array",
					},
				},
				Action: a.batch,
			},
		},
	}
}

// setup loads configuration, applies flag overrides and configures logging.
func (a *app) setup(c *cli.Command) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-pretty") {
		cfg.Logging.Pretty = c.Bool("log-pretty")
	}

	logCfg := cfg.LoggingOptions()
	logCfg.Output = c.Root().ErrWriter
	logging.Setup(logCfg)

	a.cfg = cfg
	a.logger = logging.NewLogger("main")
	return nil
}

func (a *app) components() (*components, error) {
	upstream, err := client.New(a.cfg.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	forward := cache.NewStore[geocode.Coordinates](cache.ForwardCacheName)
	reverse := cache.NewStore[string](cache.ReverseCacheName)

	return &components{
		service: geocode.NewService(upstream, forward, reverse),
		forward: forward,
		reverse: reverse,
	}, nil
}

func (a *app) serve(ctx context.Context, c *cli.Command) error {
	if err := a.setup(c); err != nil {
		return err
	}
	comps, err := a.components()
	if err != nil {
		return err
	}

	srv, err := server.New(a.cfg.ServerOptions(), comps.service)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	cacheLogger := logging.NewLogger("cache")
	sup := suture.New("geocache", suture.Spec{
		EventHook: logging.SupervisorHook(logging.NewLogger("supervisor")),
		Timeout:   a.cfg.Server.ShutdownTimeout + time.Second,
	})
	sup.Add(srv)
	sup.Add(cache.NewPurger(comps.forward, a.cfg.Cache.ClearInterval, cacheLogger))
	sup.Add(cache.NewPurger(comps.reverse, a.cfg.Cache.ClearInterval, cacheLogger))

	a.logger.Info().
		Str("version", version).
		Str("addr", a.cfg.Server.Addr).
		Str("upstream", a.cfg.Upstream.BaseURL).
		Dur("clear_interval", a.cfg.Cache.ClearInterval).
		Bool("breaker", a.cfg.Upstream.Breaker.Enabled).
		Msg("Starting geocoding cache")

	err = sup.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		a.logger.Info().Msg("Shutdown complete")
		return nil
	}
	return err
}

func (a *app) forward(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 1 {
		return fmt.Errorf("forward: expected exactly one ADDRESS argument, got %d", c.NArg())
	}
	if err := a.setup(c); err != nil {
		return err
	}
	comps, err := a.components()
	if err != nil {
		return err
	}

	coords, err := comps.service.ForwardGeocode(ctx, c.Args().First())
	if err != nil {
		return err
	}
	return writeJSON(c.Root().Writer, coords)
}

func (a *app) reverse(ctx context.Context, c *cli.Command) error {
	if c.NArg() != 2 {
		return fmt.Errorf("reverse: expected LATITUDE and LONGITUDE arguments, got %d", c.NArg())
	}
	if err := a.setup(c); err != nil {
		return err
	}
	comps, err := a.components()
	if err != nil {
		return err
	}

	label, err := comps.service.ReverseGeocode(ctx, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.Root().Writer, label)
	return err
}

// batchLine is the JSON form of a batch result.
type batchLine struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (a *app) batch(ctx context.Context, c *cli.Command) error {
	if err := a.setup(c); err != nil {
		return err
	}

	addresses := c.Args().Slice()
	if len(addresses) == 0 {
		var err error
		addresses, err = readLines(c.Root().Reader)
		if err != nil {
			return fmt.Errorf("read addresses: %w", err)
		}
	}
	if len(addresses) == 0 {
		return errors.New("batch: no addresses given")
	}

	comps, err := a.components()
	if err != nil {
		return err
	}

	results := batch.NewResolver(comps.service, a.cfg.BatchOptions()).Resolve(ctx, addresses)
	out := c.Root().Writer

	if c.Bool("json") {
		lines := make([]batchLine, len(results))
		for i, res := range results {
			lines[i] = toBatchLine(res)
		}
		if err := writeJSON(out, lines); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(out, "%s\terror: %v\n", res.Address, res.Err)
				continue
			}
			fmt.Fprintf(out, "%s\t%g\t%g\n", res.Address, res.Coordinates.Latitude, res.Coordinates.Longitude)
		}
	}

	if failed := batch.Failed(results); len(failed) > 0 {
		return fmt.Errorf("batch: %d of %d addresses failed", len(failed), len(results))
	}
	return nil
}

func toBatchLine(res batch.Result) batchLine {
	line := batchLine{Address: res.Address}
	if res.Err != nil {
		line.Error = res.Err.Error()
		return line
	}
	lat, lon := res.Coordinates.Latitude, res.Coordinates.Longitude
	line.Latitude = &lat
	line.Longitude = &lon
	return line
}

// readLines returns the non-blank, trimmed lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
