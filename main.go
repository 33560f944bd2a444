package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/pugoing-integration/cmd"
)

func main() {
	app := &cli.App{
		Name:   "pugoing-bridge",
		Usage:  "bridge for pugoing smart-home devices",
		Action: cmd.BridgeCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pugoing-username",
				EnvVars:  []string{"PUGOING_USERNAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "pugoing-password",
				EnvVars:  []string{"PUGOING_PASSWORD"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "pugoing-environment",
				EnvVars: []string{"PUGOING_ENVIRONMENT"},
				Value:   "domestic",
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.IntFlag{
				Name:    "mqtt-port",
				EnvVars: []string{"MQTT_PORT"},
				Value:   1883,
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   1500 * time.Millisecond,
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
