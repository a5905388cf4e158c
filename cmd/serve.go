package cmd

import (
	"bitwise74/leads-api/api"
	"bitwise74/leads-api/config"
	"bitwise74/leads-api/metrics"
	"bitwise74/leads-api/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP server and the background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.Flags().IntP("port", "p", 8080, "overrides host.port")

	return cmd
}

func runServe(ctx context.Context) error {
	secret := viper.GetString("jwt.secret")
	if secret == "" {
		return fmt.Errorf("jwt.secret is not set, the admin endpoints need it. You can use this one:\n\n%v", config.GenSecret())
	}

	if viper.GetString("app.log_level") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("failed to register metrics, %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := service.NewScheduler(d.Requests, d.Pruner, service.Schedule{
		Cleanup:      viper.GetString("schedule.cleanup"),
		WeeklyReport: viper.GetString("schedule.weekly_report"),
	})
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	a := api.NewRouter(d.Requests, d.Mail, api.ConfigFromViper(secret))
	go a.Limiter.Cleanup(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr), zap.Int("jobs", sched.Jobs()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped, %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
