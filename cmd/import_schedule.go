package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/podium-events/podium/internal/config"
	"github.com/podium-events/podium/internal/services"
)

var importScheduleCmd = &cobra.Command{
	Use:   "import-schedule <file>",
	Short: "Import a frab XML schedule into an event",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.ReadConfig()

		eventFlag, err := cmd.Flags().GetString("event")
		if err != nil {
			fmt.Println("Unable to read flag `event`", err)
			os.Exit(1)
		}

		eventID, err := uuid.Parse(eventFlag)
		if err != nil {
			fmt.Println("Invalid event id", err)
			os.Exit(1)
		}

		f, err := os.Open(args[0])
		if err != nil {
			fmt.Println("Unable to open schedule file", err)
			os.Exit(1)
		}
		defer f.Close()

		svc := services.NewServices(conf)

		res, err := svc.Schedule.Import(context.Background(), eventID, f)
		if err != nil {
			fmt.Println("Unable to import schedule", err)
			os.Exit(1)
		}

		fmt.Printf("Imported schedule version %q: %d rooms, %d submissions, %d speakers, %d slots\n",
			res.Version, res.Rooms, res.Submissions, res.Speakers, res.Slots)
	},
}

func init() {
	importScheduleCmd.Flags().StringP("event", "e", "", "Event id to import into")
	importScheduleCmd.MarkFlagRequired("event")

	rootCmd.AddCommand(importScheduleCmd)
}
