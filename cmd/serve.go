package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"statuscheck-go/api"
	"statuscheck-go/api/websocket"
	"statuscheck-go/db"
	"statuscheck-go/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status check HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg)

		checker := newChecker(cfg, logger)
		checker.OnHop(m.ObserveHop)
		checker.Use(m)

		hub := websocket.NewHub(logger.Named("ws"))
		hub.OnCount(func(n int) { m.WSConnections.Set(float64(n)) })
		go hub.Run(ctx)
		checker.Use(hub)

		var store api.CheckStore
		if cfg.Database.URL != "" {
			database, err := db.New(ctx, cfg.Database.URL, logger.Named("db"))
			if err != nil {
				return err
			}
			defer database.Close()
			checker.Use(database)
			store = database
			logger.Infow("audit log enabled")
		}

		notifier, err := newNotifier(cfg, logger)
		if err != nil {
			return err
		}
		if notifier != nil {
			checker.Use(notifier)
			logger.Infow("notifications enabled",
				"discord", cfg.DiscordEnabled(), "email", cfg.EmailEnabled())
		}

		server := api.NewServer(cfg, checker, newProber(cfg, logger), store, hub, m, logger.Named("api"))
		return server.Start(ctx)
	},
}
