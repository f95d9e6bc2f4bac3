package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/queue"
)

const shutdownTimeout = 10 * time.Second

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd() *cobra.Command {
	var withReconciler bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if withReconciler {
				go a.reconciler.Run(ctx)
			}

			e := a.server()
			addr := ":" + cfg.Port
			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&withReconciler, "reconcile", true, "run the image deletion reconciler in-process")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			log.Info("schema up to date")
			return nil
		},
	}
}

func workerCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume order events and drain the image deletion outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			consumer := queue.NewConsumer(cfg.AMQPURL, logPath, log.Named("consumer"))
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("consumer stopped", zap.Error(err))
				}
			}()
			go func() {
				defer wg.Done()
				a.reconciler.Run(ctx)
			}()
			log.Info("worker started", zap.String("activity_log", consumer.LogPath))
			wg.Wait()
			return nil
		},
	}
	cmd.Flags().StringVar(&logPath, "activity-log", os.Getenv("ACTIVITY_LOG_PATH"), "file receiving one line per order event")
	return cmd
}

func provisionAdminCmd() *cobra.Command {
	var (
		email   string
		promote bool
	)
	cmd := &cobra.Command{
		Use:   "provision-admin",
		Short: "Create the legacy recorder row for an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			lu, err := newLegacyService(db).ProvisionAdmin(ctx, email, promote)
			if err != nil {
				return err
			}
			log.Info("legacy recorder ready", zap.String("email", lu.Email), zap.Uint64("legacy_id", lu.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin account email")
	cmd.Flags().BoolVar(&promote, "promote", false, "grant the admin role first when the account is a customer")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
