package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oneee-playground/playback-tester/internal/avisa"
	"github.com/oneee-playground/playback-tester/internal/bootstrap"
	conf "github.com/oneee-playground/playback-tester/internal/config"
	"github.com/oneee-playground/playback-tester/internal/device"
	"github.com/oneee-playground/playback-tester/internal/orchestrator"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	conf.LoadFromEnv()

	logger := bootstrap.NewLogger(false)
	defer logger.Sync()

	app := &cli.App{
		Name:  "avisa",
		Usage: "schedule playback tests on remote lab devices",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "device group to reserve from", Required: true},
			&cli.StringFlag{Name: "asset", Aliases: []string{"a"}, Usage: "stream `URL` to play"},
			&cli.StringFlag{Name: "asset-list", Aliases: []string{"al"}, Usage: "`FILE` with one stream URL per line"},
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "playback duration in `SECONDS`", Required: true},
			&cli.StringSliceFlag{Name: "platform", Aliases: []string{"t"}, Usage: "target platforms (ios, android, js)"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "device model", Value: device.Any},
			&cli.StringFlag{Name: "os-version", Aliases: []string{"o"}, Usage: "device OS version", Value: device.Any},
			&cli.StringFlag{Name: "host", Usage: "scheduling service `HOST:PORT`", Value: conf.APIHost},
			&cli.BoolFlag{Name: "detach", Usage: "do not wait for tests to finish"},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error("playback test failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(c *cli.Context, logger *zap.Logger) error {
	if err := noArgs(c.Args().Slice()); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	assets, err := selectAssets(c.String("asset"), c.String("asset-list"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if c.Int("duration") <= 0 {
		return cli.Exit("duration must be positive", 2)
	}

	sqsClient := bootstrap.NewSQSClient()
	observer, flush := bootstrap.Observer(logger)
	defer flush()

	client := avisa.NewClient(logger, c.String("host"), conf.HTTPTimeout)
	service := avisa.NewService(client)

	orch := orchestrator.NewForService(
		logger, service, conf.ProvisionCredential,
		observer, bootstrap.Publisher(logger, sqsClient),
	)

	params := orchestrator.Params{
		GroupName:       c.String("group"),
		Platforms:       c.StringSlice("platform"),
		DurationSeconds: c.Int("duration"),
		Model:           c.String("model"),
		OSVersion:       c.String("os-version"),
	}

	return playback(c.Context, logger, orch, assets, params, c.Bool("detach"))
}
