package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nomadguide/live"
	"nomadguide/service"
	"nomadguide/web"
)

func serverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `This command starts the REST API and the live summary stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetString("port")
			}
			if cmd.Flags().Changed("mq") {
				cfg.MQMode, _ = cmd.Flags().GetString("mq")
			}
			if cmd.Flags().Changed("dev") {
				cfg.IsDev, _ = cmd.Flags().GetBool("dev")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			queue, err := openQueue(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer queue.Close()

			provider, closeRates := openRates(cfg, log)
			defer closeRates()

			svc := service.New(store, queue, provider,
				service.WithLogger(log),
				service.WithThresholds(cfg.Thresholds),
			)
			log.Info("starting server", "port", cfg.Port, "store", cfg.Store, "mq", cfg.MQMode, "dev", cfg.IsDev)
			return web.Serve(ctx, web.ServiceConfig{
				IsDev:   cfg.IsDev,
				Port:    cfg.Port,
				Service: svc,
				Live:    live.NewRecomputer(svc, queue, log),
				Logger:  log,
			})
		},
	}

	cmd.Flags().Bool("dev", true, "Run in development mode")
	cmd.Flags().String("port", "8080", "Port to run the web server on")
	cmd.Flags().String("mq", "go_chan", "Message queue mode (go_chan, rabbitmq, gcp_pub_sub)")

	return cmd
}
