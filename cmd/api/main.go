package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-facecraft/internal/config"
	"go-facecraft/internal/container"
	"go-facecraft/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "facecraft-api",
	Short: "FaceCraft avatar API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		// Load configuration
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		logger.SetLevel(cfg.LogLevel)
		gin.SetMode(gin.ReleaseMode)

		// Initialize dependency injection container
		c, err := container.NewContainer(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		return serve(cfg, c.Handler())
	},
}

func init() {
	rootCmd.Flags().StringP("config", "c", "", "optional config file (yaml, json, toml)")
}

func serve(cfg *config.Config, handler http.Handler) error {
	// Create HTTP server with configurable timeouts
	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"address":  cfg.ServerAddress(),
			"timeout":  cfg.RequestTimeout,
			"storage":  cfg.Storage.Backend,
			"describe": cfg.AI.DescribeProvider,
			"generate": cfg.AI.GenerateProvider,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("Server exited")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Server failed")
		os.Exit(1)
	}
}
