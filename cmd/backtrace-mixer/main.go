// Command backtrace-mixer runs the mixer: sharded write routing and
// read fan-out across workers.
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"

	"github.com/mfkiwl/geo-backtracer/internal/blog"
	"github.com/mfkiwl/geo-backtracer/internal/config"
	"github.com/mfkiwl/geo-backtracer/internal/mixer"
	"github.com/mfkiwl/geo-backtracer/internal/rpcwire"
)

func app() *cli.Command {
	return &cli.Command{
		Name:  "backtrace-mixer",
		Usage: "runs the geo-backtracer mixer (sharded routing and fan-out)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the shared worker/mixer configuration document",
				Sources: cli.EnvVars("BT_CONFIG"),
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, c *cli.Command) error {
	v := config.NewViper()
	if p := c.String("config"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	m, err := mixer.New(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(rpcwire.ServerOption())
	rpcwire.RegisterMixerServer(srv, m)

	go func() {
		defer cancel()
		blog.Logger.Info().Str("addr", cfg.ListenAddress).Msg("mixer listening")
		if err := srv.Serve(lis); err != nil {
			blog.Logger.Error().Err(err).Msg("mixer server exited")
		}
	}()

	<-ctx.Done()
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		srv.Stop()
	}
	blog.Logger.Info().Msg("mixer shut down")
	return nil
}

func main() {
	if err := app().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
