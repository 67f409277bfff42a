// Command backtrace-worker runs one worker: a Pusher and Seeker RPC
// service backed by a single two-family Pebble store.Db.
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
	"github.com/mfkiwl/geo-backtracer/internal/gc"
	"github.com/mfkiwl/geo-backtracer/internal/ingest"
	"github.com/mfkiwl/geo-backtracer/internal/rpcwire"
	"github.com/mfkiwl/geo-backtracer/internal/seeker"
	"github.com/mfkiwl/geo-backtracer/internal/store"
	"github.com/mfkiwl/geo-backtracer/internal/workersvc"
)

func app() *cli.Command {
	return &cli.Command{
		Name:  "backtrace-worker",
		Usage: "runs one geo-backtracer worker (Pusher + Seeker services over one store.Db)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the shared worker/mixer configuration document",
				Sources: cli.EnvVars("BT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "path",
				Usage:   "data directory; a temp directory is created and deleted on clean shutdown if unset",
				Sources: cli.EnvVars("BT_PATH"),
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

	db, err := store.Open(c.String("path"), store.Tuning{})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sweeper := gc.New(db, cfg.RetentionHorizon, cfg.GCInterval, blog.ForMethod("gc"))
	go sweeper.Run(ctx)

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(rpcwire.ServerOption())
	rpcwire.RegisterPusherServer(srv, workersvc.Pusher{P: ingest.New(db)})
	rpcwire.RegisterSeekerServer(srv, workersvc.Seeker{S: seeker.New(db, cfg.MatchMinutes)})

	go func() {
		defer cancel()
		blog.Logger.Info().Str("addr", cfg.ListenAddress).Msg("worker listening")
		if err := srv.Serve(lis); err != nil {
			blog.Logger.Error().Err(err).Msg("worker server exited")
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
	blog.Logger.Info().Msg("worker shut down")
	return nil
}

func main() {
	if err := app().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
