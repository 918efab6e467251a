package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/podium-events/podium/internal/config"
	"github.com/podium-events/podium/internal/pubsub"
	"github.com/podium-events/podium/internal/services"
)

// Standalone mailer for deployments that keep delivery out of the API
// process. Drains the backlog on startup, then waits for wakeups.
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Run the outbound mail worker",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()
		svc := services.NewServices(conf)

		ps := pubsub.NewPubSub(conf)
		ps.Subscribe(svc.Mail.HandleEvent)
		if err := ps.Start(); err != nil {
			log.Fatal(err)
		}
		defer ps.Stop()

		svc.Mail.Drain(context.Background())

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		slog.Info("Mailer shutting down")
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
