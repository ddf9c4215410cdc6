// Package cmd implements the ftstat command line: a client for reading,
// resetting and probing the error statistics of searchd or any server that
// serves INFO errorstats.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/db"
	dbRedis "github.com/kailas-cloud/searchd/internal/db/redis"
	logpkg "github.com/kailas-cloud/searchd/internal/logger"
	"github.com/kailas-cloud/searchd/internal/version"
)

var (
	addr     string
	username string
	password string
	timeout  time.Duration
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "ftstat",
	Short: "Inspect searchd error statistics",
	Long: `ftstat reads the per-code error counters that searchd reports in
INFO errorstats, resets them, and replays known failure scenarios to check
that each one is counted under the expected code.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&addr, "addr", "a", envOr("SEARCHD_ADDR", "127.0.0.1:6380"), "server address")
	rootCmd.PersistentFlags().StringVar(&username, "user", "", "ACL username")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("SEARCHD_PASSWORD"), "server password")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "connect and command timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// connect opens a store and waits until the server answers PING.
func connect(ctx context.Context) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    []string{addr},
		Username: username,
		Password: password,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return store, nil
}

func newLogger() *zap.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger("local", level)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// printError shows server error replies the way redis-cli does; anything
// else is a local or transport failure.
func printError(w io.Writer, err error) {
	if msg, ok := dbRedis.ServerError(err); ok {
		fmt.Fprintf(w, "(error) %s\n", msg)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
