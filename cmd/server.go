package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/podium-events/podium/internal/api"
	"github.com/podium-events/podium/internal/config"
	"github.com/podium-events/podium/internal/pubsub"
	"github.com/podium-events/podium/internal/services"
	"github.com/podium-events/podium/internal/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()

		shutdownTelemetry := telemetry.NewProvider(conf.OTEL_EXPORTER_OTLP_ENDPOINT)
		defer shutdownTelemetry()

		svc := services.NewServices(conf)

		// Deliver queued mail on wakeups from the database.
		ps := pubsub.NewPubSub(conf)
		ps.Subscribe(svc.Mail.HandleEvent)
		if err := ps.Start(); err != nil {
			log.Fatal(err)
		}
		defer ps.Stop()

		s := api.New(conf, svc)
		s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
