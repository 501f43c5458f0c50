package mapsession

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/gbfsmap/pkg/config"
	"github.com/travigo/gbfsmap/pkg/geometry"
	"github.com/travigo/gbfsmap/pkg/redis_client"
	"github.com/travigo/gbfsmap/pkg/stationrender"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "path to the YAML config file",
	EnvVars: []string{"GBFSMAP_CONFIG"},
}

func loadSession(c *cli.Context) (*Session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if err := redis_client.Connect(); err != nil {
		return nil, err
	}

	session, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	report, err := session.Reload(c.Context)
	if err != nil {
		session.Close()
		return nil, err
	}
	for _, feedErr := range report.Errors {
		log.Warn().Msg(feedErr)
	}

	return session, nil
}

type inspectedRule struct {
	Scope string
	Zone  string
	Score int
	Rule  any
}

func RegisterZonesCLI() *cli.Command {
	return &cli.Command{
		Name:  "zones",
		Usage: "Inspect geofencing zones",
		Subcommands: []*cli.Command{
			{
				Name:  "inspect",
				Usage: "list the zones containing a point and their ranked rules",
				Flags: []cli.Flag{
					configFlag,
					&cli.Float64Flag{Name: "lat", Required: true},
					&cli.Float64Flag{Name: "lng", Required: true},
					&cli.StringFlag{Name: "vehicle-type", Usage: "resolve the effective rule for this vehicle type id"},
				},
				Action: func(c *cli.Context) error {
					session, err := loadSession(c)
					if err != nil {
						return err
					}
					defer session.Close()

					result, err := session.Click(geometry.GeoPoint{Lat: c.Float64("lat"), Lng: c.Float64("lng")}, c.String("vehicle-type"))
					if err != nil {
						return err
					}

					for _, zone := range result.Zones {
						fmt.Printf("%s %s\n", zone.ID, zone.Name.Get(session.Language()))
					}

					var ranked []inspectedRule
					for _, scope := range result.Analysis.Scopes() {
						for _, rule := range result.Analysis[scope] {
							ranked = append(ranked, inspectedRule{
								Scope: scope.String(),
								Zone:  rule.Zone.ID,
								Score: rule.Score,
								Rule:  rule.Rule,
							})
						}
					}
					pretty.Println(ranked)

					if result.Effective != nil {
						fmt.Printf("Effective rule from %s (score %d)\n", result.Effective.Zone.ID, result.Effective.Score)
						pretty.Println(result.Effective.Rule)
					} else if len(result.GlobalRules) > 0 {
						fmt.Println("Outside every zone, global rules apply")
						pretty.Println(result.GlobalRules)
					}

					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "count zones by rule category",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					session, err := loadSession(c)
					if err != nil {
						return err
					}
					defer session.Close()

					pretty.Println(session.Stats())
					return nil
				},
			},
		},
	}
}

func RegisterStationsCLI() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "Station rendering",
		Subcommands: []*cli.Command{
			{
				Name:  "render",
				Usage: "print the render directives for a zoom level",
				Flags: []cli.Flag{
					configFlag,
					&cli.Float64Flag{Name: "zoom", Value: 12},
				},
				Action: func(c *cli.Context) error {
					session, err := loadSession(c)
					if err != nil {
						return err
					}
					defer session.Close()

					session.Zoom(c.Float64("zoom"))
					session.FlushZoom()

					fmt.Printf("Mode: %s\n", session.Mode())
					if snapshot := session.Snapshot(); snapshot != nil && len(snapshot.Vehicles) > 0 {
						fmt.Printf("Free floating vehicles: %d (%d available)\n", len(snapshot.Vehicles), snapshot.AvailableVehicles())
					}
					for _, directive := range session.Directives() {
						fmt.Printf("%s %s", directive.StationID, directive.Kind)
						if directive.Point != nil {
							fmt.Printf(" %.6f,%.6f", directive.Point.Lat, directive.Point.Lng)
						}
						if directive.Badge != nil {
							fmt.Printf(" [%d]", *directive.Badge)
						}
						if directive.Kind == stationrender.KindArea {
							fmt.Printf(" %d polygons", len(directive.Polygons))
						}
						fmt.Println()
					}

					return nil
				},
			},
		},
	}
}
