package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iux-juridico/invitaciones/backend/internal/config"
	"github.com/iux-juridico/invitaciones/backend/internal/confirmations"
	"github.com/iux-juridico/invitaciones/backend/internal/database"
	"github.com/iux-juridico/invitaciones/backend/internal/events"
	"github.com/iux-juridico/invitaciones/backend/internal/guests"
	"github.com/iux-juridico/invitaciones/backend/internal/invitations"
	"github.com/iux-juridico/invitaciones/backend/internal/logging"
	"github.com/iux-juridico/invitaciones/backend/internal/mailer"
	"github.com/iux-juridico/invitaciones/backend/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "invitaciones-api",
		Short: "IUX event invitation backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("confirmations-path", defaults.GetString("store.confirmations_path"), "Confirmation store JSON path")
	cmd.PersistentFlags().String("invitations-path", defaults.GetString("store.invitations_path"), "Invitation store JSON path")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("base-url", defaults.GetString("app.base_url"), "Confirmation lookup base URL")
	cmd.PersistentFlags().String("bypass-email", "", "Email exempt from duplicate detection (testing)")
	cmd.PersistentFlags().String("admin-token", "", "Admin access token (overrides env)")
	cmd.PersistentFlags().Bool("smtp-enabled", defaults.GetBool("smtp.enabled"), "Enable outbound email")
	cmd.PersistentFlags().String("smtp-host", defaults.GetString("smtp.host"), "SMTP host")
	cmd.PersistentFlags().Int("smtp-port", defaults.GetInt("smtp.port"), "SMTP port")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "store.confirmations_path", "confirmations-path")
	bindFlag(cmd, "store.invitations_path", "invitations-path")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "app.base_url", "base-url")
	bindFlag(cmd, "app.bypass_email", "bypass-email")
	bindFlag(cmd, "admin.access_token", "admin-token")
	bindFlag(cmd, "smtp.enabled", "smtp-enabled")
	bindFlag(cmd, "smtp.host", "smtp-host")
	bindFlag(cmd, "smtp.port", "smtp-port")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	eventService, err := events.NewService(events.ServiceConfig{Database: db})
	if err != nil {
		return err
	}
	guestService, err := guests.NewService(guests.ServiceConfig{Database: db})
	if err != nil {
		return err
	}

	confirmationStore, err := confirmations.OpenStore(confirmations.StoreConfig{
		Path:   appConfig.ConfirmationsPath,
		Seed:   confirmations.DefaultSeed(appConfig.BaseURL),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	invitationStore, err := invitations.OpenStore(invitations.StoreConfig{
		Path:   appConfig.InvitationsPath,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var dispatcher confirmations.Dispatcher
	if appConfig.SMTPEnabled {
		dispatcher, err = mailer.New(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUsername,
			Password: appConfig.SMTPPassword,
			From:     appConfig.SMTPFrom,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
	} else {
		dispatcher = mailer.Disabled(logger)
	}

	worker := mailer.NewWorker(dispatcher, 0, logger)
	defer worker.Close()

	confirmationService, err := confirmations.NewService(confirmations.ServiceConfig{
		Store:       confirmationStore,
		Dispatcher:  dispatcher,
		Async:       worker,
		BaseURL:     appConfig.BaseURL,
		BypassEmail: appConfig.BypassEmail,
		Clock:       time.Now,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	invitationService, err := invitations.NewService(invitations.ServiceConfig{
		Store:  invitationStore,
		Events: eventService,
		Clock:  time.Now,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Confirmations: confirmationService,
		Invitations:   invitationService,
		Guests:        guestService,
		Events:        eventService,
		AdminToken:    appConfig.AdminAccessToken,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
