package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/seamcarve/internal/server"
	"github.com/matzehuels/seamcarve/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		workers int
		maxMB   int64
		maxMP   int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes carving over HTTP:

  POST /v1/carve?columns=N&direction=&luma=&format=&quality=
  POST /v1/energy?luma=&format=&quality=
  GET  /healthz

The request body is the encoded image; the response is the result image.
Results are shared through the configured cache backend.`,
		Example: `  seamcarve serve --addr :9000
  curl --data-binary @castle.jpg 'localhost:9000/v1/carve?columns=40' -o narrow.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") {
				addr = c.Config.serverAddr()
			}

			store, err := newCache(ctx, c.Config.Cache, noCache)
			if err != nil {
				return err
			}
			runner := c.newRunnerWith(store)
			defer runner.Close()

			srv := server.New(runner, logger, server.Options{
				MaxBodyBytes: maxMB << 20,
				Workers:      workers,
				MaxPixels:    maxMP * 1_000_000,
			})

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
			printKeyValue("cache", cacheLabel(c.Config.Cache, noCache))
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return err
			}
			printSuccess("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per energy pass (default: GOMAXPROCS)")
	cmd.Flags().IntVar(&maxMP, "max-megapixels", pipeline.DefaultMaxPixels/1_000_000, "largest accepted image in megapixels")
	cmd.Flags().Int64Var(&maxMB, "max-body-mb", server.DefaultMaxBodyBytes>>20, "largest accepted upload in MiB")

	return cmd
}

// displayAddr turns a listen address like ":8080" into a clickable host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// cacheLabel describes the active cache backend.
func cacheLabel(cfg CacheConfig, noCache bool) string {
	switch {
	case noCache || cfg.Backend == backendNone:
		return "disabled"
	case cfg.Backend == backendRedis:
		return "redis " + cfg.RedisAddr
	case cfg.Backend == backendMongo:
		return "mongo " + cfg.MongoURI
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return "disabled"
	}
	return "file " + dir
}
