package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"detox/internal/bootstrap"
	challengedto "detox/internal/modules/challenge/dto"
	usagedto "detox/internal/modules/usage/dto"
	"detox/internal/platform/clock"
	"detox/internal/platform/config"
	apperrors "detox/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, apperrors.Message(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var homePath string

	root := &cobra.Command{
		Use:           "detox",
		Short:         "Screen time logging and detox challenges",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&homePath, "home", defaultHome(), "directory holding .detox state")

	root.AddCommand(newUserCmd(&homePath))
	root.AddCommand(newScanCmd(&homePath))
	root.AddCommand(newConfirmCmd(&homePath))
	root.AddCommand(newLogCmd(&homePath))
	root.AddCommand(newHistoryCmd(&homePath))
	root.AddCommand(newChallengesCmd(&homePath))
	root.AddCommand(newBoardCmd(&homePath))
	root.AddCommand(newRecognizerCmd(&homePath))
	root.AddCommand(newServeCmd(&homePath))
	return root
}

func defaultHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func loadApp(homePath string) (*bootstrap.App, error) {
	cfg, err := config.New(homePath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(context.Background(), cfg, bootstrap.Options{})
}

// withApp opens the app for one command and closes it afterwards.
func withApp(homePath *string, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(*homePath)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newUserCmd(homePath *string) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage user profiles"}

	var baseline int
	register := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(homePath, func(app *bootstrap.App) error {
				out, err := app.ProfileCLI.Register(context.Background(), args[0], baseline)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s baseline=%dm target=%dm\n", out.Username, out.BaselineMinutes, out.TargetMinutes)
				return nil
			})
		},
	}
	register.Flags().IntVar(&baseline, "baseline", 0, "average daily minutes before the detox (default 300)")
	user.AddCommand(register)

	user.AddCommand(&cobra.Command{
		Use:   "show <username>",
		Short: "Show points, balance and targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(homePath, func(app *bootstrap.App) error {
				out, err := app.ProfileCLI.Show(context.Background(), args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "user: %s\n", out.Username)
				_, _ = fmt.Fprintf(w, "points: %d (redeemable $%.2f)\n", out.Points, out.RedeemableValue)
				_, _ = fmt.Fprintf(w, "balance: $%.2f\n", out.Balance)
				_, _ = fmt.Fprintf(w, "baseline: %dm target: %dm\n", out.BaselineMinutes, out.TargetMinutes)
				return nil
			})
		},
	})

	user.AddCommand(&cobra.Command{
		Use:   "reset <username>",
		Short: "Clear logs, challenge progress and points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(homePath, func(app *bootstrap.App) error {
				out, err := app.ProfileCLI.Reset(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %s points=%d balance=$%.2f\n", out.Username, out.Points, out.Balance)
				return nil
			})
		},
	})
	return user
}

func newScanCmd(homePath *string) *cobra.Command {
	var (
		user, imagePath, tokensFile, recognizer, date string
		confirm                                       bool
	)
	cmd := &cobra.Command{
		Use:   "scan --user <name> --image <path>|--tokens-file <path>",
		Short: "Read app usage from a screen time screenshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if imagePath == "" && tokensFile == "" {
				return fmt.Errorf("--image or --tokens-file is required")
			}
			day, err := clock.ParseOptional(date)
			if err != nil {
				return err
			}
			return withApp(homePath, func(app *bootstrap.App) error {
				ctx := context.Background()
				out, err := app.UsageCLI.Scan(ctx, user, imagePath, tokensFile, recognizer)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if !out.Detected {
					_, _ = fmt.Fprintln(w, apperrors.Message(apperrors.ErrNoUsageDetected))
					return nil
				}
				printScan(w, out)
				if !confirm {
					_, _ = fmt.Fprintf(w, "confirm with: detox confirm --user %s --scan %s (expires %s)\n", user, out.ScanID, out.ExpiresAt.Format(time.Kitchen))
					return nil
				}
				logged, err := app.UsageCLI.Confirm(ctx, user, out.ScanID, day)
				if err != nil {
					return err
				}
				printLog(w, logged)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username")
	cmd.Flags().StringVar(&imagePath, "image", "", "screenshot path")
	cmd.Flags().StringVar(&tokensFile, "tokens-file", "", "file with one recognized token per line")
	cmd.Flags().StringVar(&recognizer, "recognizer", "", "recognizer name from the manifest")
	cmd.Flags().StringVar(&date, "date", "", "day to log when confirming (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "save the scan and evaluate challenges")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newConfirmCmd(homePath *string) *cobra.Command {
	var user, scanID, date string
	cmd := &cobra.Command{
		Use:   "confirm --user <name> --scan <id>",
		Short: "Save a pending scan as the day's log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := clock.ParseOptional(date)
			if err != nil {
				return err
			}
			return withApp(homePath, func(app *bootstrap.App) error {
				out, err := app.UsageCLI.Confirm(context.Background(), user, scanID, day)
				if err != nil {
					return err
				}
				printLog(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username")
	cmd.Flags().StringVar(&scanID, "scan", "", "scan id printed by detox scan")
	cmd.Flags().StringVar(&date, "date", "", "day to log (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("scan")
	return cmd
}

func newLogCmd(homePath *string) *cobra.Command {
	var (
		user, date                string
		total, youtube, instagram int
	)
	cmd := &cobra.Command{
		Use:   "log --user <name> --total <minutes>",
		Short: "Log a day's minutes by hand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := clock.ParseOptional(date)
			if err != nil {
				return err
			}
			return withApp(homePath, func(app *bootstrap.App) error {
				out, err := app.UsageCLI.Log(context.Background(), user, day, total, youtube, instagram)
				if err != nil {
					return err
				}
				printLog(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username")
	cmd.Flags().StringVar(&date, "date", "", "day to log (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&total, "total", 0, "total screen time in minutes")
	cmd.Flags().IntVar(&youtube, "youtube", 0, "YouTube minutes")
	cmd.Flags().IntVar(&instagram, "instagram", 0, "Instagram minutes")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func newHistoryCmd(homePath *string) *cobra.Command {
	var (
		user  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history --user <name>",
		Short: "List logged days, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(homePath, func(app *bootstrap.App) error {
				days, err := app.UsageCLI.History(context.Background(), user, limit)
				if err != nil {
					return err
				}
				if len(days) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no days logged")
					return nil
				}
				for _, d := range days {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s total=%dm youtube=%dm instagram=%dm\n", clock.FormatDate(d.Date), d.Total, d.YouTube, d.Instagram)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username")
	cmd.Flags().IntVar(&limit, "limit", 30, "maximum days to list, 0 for all")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newChallengesCmd(homePath *string) *cobra.Command {
	var user, date string
	cmd := &cobra.Command{
		Use:   "challenges [--user <name>]",
		Short: "List challenges, or a user's progress when --user is set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := clock.ParseOptional(date)
			if err != nil {
				return err
			}
			return withApp(homePath, func(app *bootstrap.App) error {
				w := cmd.OutOrStdout()
				if user == "" {
					for _, c := range app.ChallengeCLI.Catalog(context.Background()) {
						_, _ = fmt.Fprintf(w, "%s %-16s %-6s %s\n  %s\n", c.ID, c.Title, c.Difficulty, c.RewardText, c.Description)
					}
					return nil
				}
				board, err := app.ChallengeCLI.Board(context.Background(), user, day)
				if err != nil {
					return err
				}
				printBoard(w, board)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username")
	cmd.Flags().StringVar(&date, "date", "", "day to show (YYYY-MM-DD, default today)")
	return cmd
}

func newBoardCmd(homePath *string) *cobra.Command {
	var user, date string
	cmd := &cobra.Command{
		Use:   "board --user <name>",
		Short: "Open the interactive challenge board",
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := clock.ParseOptional(date)
			if err != nil {
				return err
			}
			return withApp(homePath, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(app, user, day)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username")
	cmd.Flags().StringVar(&date, "date", "", "first day to show (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRecognizerCmd(homePath *string) *cobra.Command {
	recognizer := &cobra.Command{Use: "recognizer", Short: "Text recognizer plugins"}
	recognizer.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recognizer manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(homePath, func(app *bootstrap.App) error {
				items, err := app.RecognizerCLI.List(context.Background())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recognizers configured")
					return nil
				}
				for _, r := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s formats=%s\n", r.Name, r.Version, r.Enabled, r.Binary, strings.Join(r.Formats, ","))
				}
				return nil
			})
		},
	})

	recognizer.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate recognizer checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(homePath, func(app *bootstrap.App) error {
				results, err := app.RecognizerCLI.Doctor(context.Background())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recognizers configured")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})
	return recognizer
}

func newServeCmd(homePath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(homePath, func(app *bootstrap.App) error {
				if addr == "" {
					addr = app.Config.HTTPAddr
				}
				e := app.HTTP()
				logger := app.Logger.Named("serve")

				errCh := make(chan error, 1)
				go func() {
					logger.Info("listening", "addr", addr)
					if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
					close(errCh)
				}()

				quit := make(chan os.Signal, 1)
				signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(quit)
				select {
				case err := <-errCh:
					return err
				case <-quit:
				}

				logger.Info("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return e.Shutdown(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func printScan(w io.Writer, out usagedto.ScanOutput) {
	_, _ = fmt.Fprintf(w, "scan %s: total=%dm youtube=%dm instagram=%dm (%d tokens)\n", out.ScanID, out.Total, out.YouTube, out.Instagram, out.Tokens)
}

func printLog(w io.Writer, out usagedto.LogOutput) {
	d := out.Day
	_, _ = fmt.Fprintf(w, "saved %s total=%dm youtube=%dm instagram=%dm\n", clock.FormatDate(d.Date), d.Total, d.YouTube, d.Instagram)
	for _, r := range out.Evaluation.Results {
		mark := "✗"
		if r.Passed {
			mark = "✓"
		}
		line := fmt.Sprintf("  %s %-16s %d/%d", mark, r.Title, r.Progress, r.WindowDays)
		if r.JustClaimed {
			line += fmt.Sprintf("  completed +%d pts", r.Reward)
		}
		_, _ = fmt.Fprintln(w, line)
	}
	if out.Evaluation.PointsAwarded > 0 {
		_, _ = fmt.Fprintf(w, "points awarded: %d\n", out.Evaluation.PointsAwarded)
	}
}

func printBoard(w io.Writer, board challengedto.BoardOutput) {
	_, _ = fmt.Fprintf(w, "%s on %s (baseline %dm)\n", board.User, clock.FormatDate(board.Date), board.Baseline)
	for _, row := range board.Rows {
		_, _ = fmt.Fprintf(w, "%s %-16s %2d/%-2d %5.1f%% %-11s today=%s %dm/%dm\n",
			row.ID, row.Title, row.Count, row.WindowDays, row.Percent, row.State, row.Today, row.TodayValue, row.Limit)
	}
}
