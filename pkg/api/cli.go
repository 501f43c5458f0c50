package api

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/config"
	"github.com/travigo/gbfsmap/pkg/mapsession"
	"github.com/travigo/gbfsmap/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the map web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:    "config",
						Usage:   "path to the YAML config file",
						EnvVars: []string{"GBFSMAP_CONFIG"},
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					session, err := mapsession.Setup(cfg)
					if err != nil {
						return err
					}
					defer session.Close()

					// The API still starts so a later reload can recover
					if _, err := session.Reload(c.Context); err != nil {
						log.Error().Err(err).Msg("Initial feed load failed")
					}

					return SetupServer(c.String("listen"), session)
				},
			},
		},
	}
}
