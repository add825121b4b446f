package cli

import (
	"context"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSource/internal/bootstrap"
	"github.com/turtacn/ChemSource/internal/config"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/ChemSource/internal/interfaces/http"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// NewServeCmd runs the HTTP API in the foreground until SIGINT or SIGTERM.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				if err := applyListenAddr(&cliCtx.Config.Server, addr); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cliCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port (default from config)")
	return cmd
}

func runServer(ctx context.Context, cliCtx *CLIContext) error {
	logger := cliCtx.Logger
	app, err := bootstrap.New(ctx, cliCtx.Config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := httpapi.NewServer(cliCtx.Config.Server, httpapi.NewHandler(app), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("received shutdown signal")
	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	return <-errCh
}

// applyListenAddr overrides the configured host and port with addr.
func applyListenAddr(cfg *config.ServerConfig, addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid --addr").WithDetail(addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return errors.New(errors.ErrCodeBadRequest, "invalid --addr port").WithDetail(addr)
	}
	if host == "" {
		host = config.DefaultServerHost
	}
	cfg.Host = host
	cfg.Port = port
	return nil
}

//Personal.AI order the ending
