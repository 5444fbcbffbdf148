package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stablevault/core"
	"stablevault/handler"
	"stablevault/handler/hc"
	"stablevault/pkg/sysversion"
	"stablevault/worker"
	"stablevault/worker/keeper"
	"stablevault/worker/refresher"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run stablevault api server and keepers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		if database != nil {
			defer database.Close()
		}

		if database != nil {
			outdated, err := sysversion.Outdated(ctx, providePropertyStore(database))
			if err != nil {
				logrus.WithError(err).Fatal("read schema version failed")
			}

			if outdated {
				logrus.Fatal("database schema outdated, run migrate first")
			}
		}

		events := provideEventStore(database)
		p, prices, err := provideProtocol(ctx, events)
		if err != nil {
			logrus.WithError(err).Fatal("init protocol failed")
		}

		var checks []hc.Check
		if database != nil {
			checks = append(checks, hc.Check{
				Name: "db",
				Probe: func(ctx context.Context) error {
					return database.Update().DB().PingContext(ctx)
				},
			})
		}

		mux := chi.NewMux()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.StripSlashes)
		mux.Use(cors.AllowAll().Handler)
		mux.Use(logger.WithRequestID)
		mux.Use(middleware.Logger)
		mux.Use(middleware.NewCompressor(5).Handler)

		{
			//hc
			mux.Mount("/hc", hc.Handle(rootCmd.Version, checks...))
		}

		{
			//restful api
			svr := handler.New(provideConfig(), p, events, prices)
			mux.Mount("/api", svr.HandleRestAPI())
		}

		{
			//prometheus
			mux.Handle("/metrics", promhttp.Handler())
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		var workers []worker.Worker
		if spec, _ := cmd.Flags().GetString("refresh"); spec != "" {
			assets := make([]core.Asset, 0, len(cfg.Oracle.Feeds))
			for _, f := range cfg.Oracle.Feeds {
				assets = append(assets, core.Asset(f.Asset))
			}

			workers = append(workers, refresher.New(p, spec, assets...))
		}

		if spec, _ := cmd.Flags().GetString("keeper"); spec != "" {
			interval, _ := cmd.Flags().GetDuration("accrue-interval")
			workers = append(workers, keeper.New(p, provideCheckpoints(database), spec, interval))
		}

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		g, ctx := errgroup.WithContext(ctx)
		for idx := range workers {
			w := workers[idx]
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		logrus.Infoln("serve at", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
		if err := g.Wait(); err != nil {
			logrus.WithError(err).Error("workers stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().Int("port", 7778, "server port")
	serverCmd.Flags().String("refresh", "@every 1m", "oracle observation cron spec, empty disables")
	serverCmd.Flags().String("keeper", "@every 30s", "keeper cron spec, empty disables")
	serverCmd.Flags().Duration("accrue-interval", time.Hour, "minimum interval between vault accrual sweeps")
}
