// Package prefs implements the notification preference commands.
package prefs

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell/mindwell-go/internal/api"
	"github.com/mindwell/mindwell-go/internal/conf"
	"github.com/mindwell/mindwell-go/internal/logging"
	"github.com/mindwell/mindwell-go/internal/notification"
	"github.com/mindwell/mindwell-go/internal/session"
)

// Command returns the prefs command group for inspecting and editing
// notification preferences.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage notification preferences",
	}

	cmd.AddCommand(
		showCommand(settings),
		toggleCommand(settings),
		scheduleCommand(settings),
		resetCommand(settings),
	)

	return cmd
}

func showCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current notification preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := connect(settings)
			if err != nil {
				return err
			}
			if err := store.Load(cmd.Context()); err != nil {
				return err
			}
			printPreferences(store.Preferences())
			return nil
		},
	}
}

func toggleCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle notifications on or off",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := connect(settings)
			if err != nil {
				return err
			}
			if err := store.Load(cmd.Context()); err != nil {
				return err
			}
			if err := store.ToggleMaster(cmd.Context()); err != nil {
				return err
			}
			master := store.Master()
			if master != nil && master.Enabled {
				fmt.Println("notifications enabled")
			} else {
				fmt.Println("notifications disabled")
			}
			return nil
		},
	}
}

func scheduleCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <start> <end>",
		Short: "Set the daily available hours (HH:MM, end may wrap past midnight)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := notification.ParseTimeOfDay(args[0])
			if err != nil {
				return fmt.Errorf("invalid start time %q: %w", args[0], err)
			}
			end, err := notification.ParseTimeOfDay(args[1])
			if err != nil {
				return fmt.Errorf("invalid end time %q: %w", args[1], err)
			}

			store, err := connect(settings)
			if err != nil {
				return err
			}
			if err := store.Load(cmd.Context()); err != nil {
				return err
			}
			if err := store.UpdateSchedule(cmd.Context(), start, end); err != nil {
				return err
			}
			fmt.Printf("available hours set to %s-%s\n", start, end)
			return nil
		},
	}
}

func resetCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset all preferences to server defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := connect(settings)
			if err != nil {
				return err
			}
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}
			printPreferences(store.Preferences())
			return nil
		},
	}
}

// connect resolves the session and builds a preference store bound to the
// backend.
func connect(settings *conf.Settings) (*notification.PreferenceStore, error) {
	token, err := settings.ResolveToken()
	if err != nil {
		return nil, err
	}
	sess, err := session.New(token)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Config{
		BaseURL:  settings.Backend.BaseURL,
		Token:    sess.Token(),
		Timeout:  settings.Backend.Timeout,
		CacheTTL: settings.Backend.CacheTTL,
		Debug:    settings.Debug,
	})
	if err != nil {
		return nil, err
	}

	return notification.NewPreferenceStore(client, sess.CurrentUserID(),
		logging.ForService("notification-prefs")), nil
}

func printPreferences(prefs []*notification.Preference) {
	for _, p := range prefs {
		state := "off"
		if p.Enabled {
			state = "on"
		}
		label := string(p.Type)
		if p.IsMaster() {
			label = "check-in reminders (master)"
		}
		fmt.Printf("%-32s %-4s via %s", label, state, p.DeliveryMethod)
		if p.Schedule != nil {
			fmt.Printf("  hours %s-%s", p.Schedule.Start, p.Schedule.End)
			if len(p.Schedule.Weekdays) > 0 {
				fmt.Printf(" on %s", weekdayList(p.Schedule.Weekdays))
			}
		}
		if p.DisabledAt != nil {
			fmt.Printf("  (disabled %s)", p.DisabledAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}
}

func weekdayList(days []time.Weekday) string {
	out := ""
	for i, d := range days {
		if i > 0 {
			out += ","
		}
		out += d.String()[:3]
	}
	return out
}
