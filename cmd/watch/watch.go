// Package watch implements the live notification feed command.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mindwell/mindwell-go/internal/api"
	"github.com/mindwell/mindwell-go/internal/conf"
	"github.com/mindwell/mindwell-go/internal/logging"
	"github.com/mindwell/mindwell-go/internal/notification"
	"github.com/mindwell/mindwell-go/internal/session"
)

// Command returns the watch command, which runs the notification controller
// against the backend and renders every snapshot until interrupted.
func Command(settings *conf.Settings) *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the notification feed",
		Long:  "Load notifications and preferences, apply the delivery policy, and keep the view updated with periodic refreshes until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(settings, unreadOnly)
		},
	}

	if err := setupFlags(cmd, settings, &unreadOnly); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings, unreadOnly *bool) error {
	cmd.Flags().BoolVar(unreadOnly, "unread", false, "Show only unread notifications")
	cmd.Flags().DurationVar(&settings.Poll.Interval, "interval", viper.GetDuration("poll.interval"), "Interval between automatic refreshes")
	cmd.Flags().BoolVar(&settings.Poll.Enabled, "poll", viper.GetBool("poll.enabled"), "Enable periodic background refresh")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func runWatch(settings *conf.Settings, unreadOnly bool) error {
	token, err := settings.ResolveToken()
	if err != nil {
		return err
	}
	sess, err := session.New(token)
	if err != nil {
		return err
	}

	client, err := api.NewClient(api.Config{
		BaseURL:  settings.Backend.BaseURL,
		Token:    sess.Token(),
		Timeout:  settings.Backend.Timeout,
		CacheTTL: settings.Backend.CacheTTL,
		Debug:    settings.Debug,
	})
	if err != nil {
		return err
	}

	logger := logging.ForService("notification-watch")
	if settings.Main.Log.Enabled {
		fileLogger, closeLog, err := logging.NewFileLogger(
			filepath.Join(settings.Main.Log.Path, "notifications.log"),
			"notification-watch", logLevel(settings.Debug))
		if err != nil {
			return err
		}
		defer func() { _ = closeLog() }()
		logger = fileLogger
	}

	pollInterval := time.Duration(0)
	if settings.Poll.Enabled {
		pollInterval = settings.Poll.Interval
	}

	controller, err := notification.NewController(&notification.ControllerConfig{
		Transport:    client,
		Preferences:  client,
		UserID:       sess.CurrentUserID(),
		PageSize:     settings.Backend.PageSize,
		PollInterval: pollInterval,
		Debug:        settings.Debug,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer controller.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshots, subCtx := controller.Subscribe()
	defer controller.Unsubscribe(snapshots)

	if unreadOnly {
		controller.SetTabFilter(true)
	}
	if err := controller.Initialize(ctx); err != nil {
		return err
	}

	render(controller.Snapshot())
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nstopping")
			return nil
		case <-subCtx.Done():
			return nil
		case snapshot := <-snapshots:
			render(snapshot)
		}
	}
}

func logLevel(debug bool) slog.Leveler {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func render(s notification.Snapshot) {
	switch {
	case s.IsLoading():
		fmt.Println("loading...")
		return
	case s.State == notification.StateError:
		fmt.Printf("error: %s\n", s.Err)
		return
	}

	status := "on"
	if !s.NotificationsEnabled {
		status = "off"
	}
	fmt.Printf("-- %s | notifications %s | %d unread --\n", s.State, status, s.UnreadCount)
	if s.Err != "" {
		fmt.Printf("   last error: %s\n", s.Err)
	}
	for _, n := range s.Visible {
		marker := " "
		if !n.IsRead() {
			marker = "*"
		}
		fmt.Printf("%s [%s/%s] %s  %s\n", marker, n.Type, n.Priority,
			n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title)
	}
	if len(s.Visible) == 0 {
		fmt.Println("  (no notifications)")
	}
}
