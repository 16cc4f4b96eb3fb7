package api

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pendler/pkg/boardcache"
	"github.com/travigo/pendler/pkg/ctdf"
	"github.com/travigo/pendler/pkg/dataaggregator"
	"github.com/travigo/pendler/pkg/dataaggregator/global"
	"github.com/travigo/pendler/pkg/departureboard"
	"github.com/travigo/pendler/pkg/poller"
	"github.com/travigo/pendler/pkg/redis_client"
	"github.com/travigo/pendler/pkg/util"
	"github.com/urfave/cli/v2"
)

func directionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "direction",
		Value: string(ctdf.DirectionToZurich),
		Usage: "initial direction, toZurich or toMuhen",
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Muhen - Aarau - Zürich HB departure board",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "poll the upstreams and serve the board over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					directionFlag(),
					&cli.DurationFlag{
						Name:  "quick",
						Value: poller.DefaultQuickInterval,
						Usage: "interval between quick refreshes",
					},
					&cli.DurationFlag{
						Name:  "full",
						Value: poller.DefaultFullInterval,
						Usage: "interval between full refreshes",
					},
				},
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					aggregator, board, err := setupBoard(ctx, c.String("direction"), c.Duration("full"))
					if err != nil {
						return err
					}

					boardPoller := poller.New(board, c.Duration("quick"), c.Duration("full"))
					if err := boardPoller.Start(ctx); err != nil {
						return err
					}
					defer boardPoller.Stop()

					return SetupServer(ctx, c.String("listen"), Dependencies{
						Board:      board,
						Control:    boardPoller,
						Aggregator: aggregator,
					})
				},
			},
			{
				Name:  "dump",
				Usage: "run a single full refresh and print the resulting board",
				Flags: []cli.Flag{
					directionFlag(),
				},
				Action: func(c *cli.Context) error {
					_, board, err := setupBoard(c.Context, c.String("direction"), poller.DefaultFullInterval)
					if err != nil {
						return err
					}

					if err := board.Refresh(c.Context, departureboard.TierFull); err != nil {
						return err
					}

					pretty.Println(board.State())

					return nil
				},
			},
		},
	}
}

func setupBoard(ctx context.Context, directionName string, fullInterval time.Duration) (*dataaggregator.Aggregator, *departureboard.Board, error) {
	direction := ctdf.Direction(directionName)
	if !direction.Valid() {
		return nil, nil, fmt.Errorf("unknown direction %q", directionName)
	}

	env := util.GetEnvironmentVariables()

	aggregator, err := global.Setup(env)
	if err != nil {
		return nil, nil, err
	}

	cache := boardcache.NewMemory()
	if redis_client.Configured(env) {
		client, err := redis_client.Connect(ctx)
		if err != nil {
			return nil, nil, err
		}

		log.Info().Msg("Using Redis board cache")
		cache = boardcache.NewRedis(client)
	}

	board := departureboard.New(departureboard.Config{
		Aggregator: aggregator,
		Cache:      cache,
		Direction:  direction,
		StaleAfter: 2 * fullInterval,
	})

	return aggregator, board, nil
}
