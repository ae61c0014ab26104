package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/lvnplus/qgen/internal/exporter"
	"github.com/lvnplus/qgen/internal/generator"
	"github.com/lvnplus/qgen/internal/handler"
	"github.com/lvnplus/qgen/internal/jobs"
	"github.com/lvnplus/qgen/internal/llm"
	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/store"
	mdsync "github.com/lvnplus/qgen/internal/sync"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qgen",
		Short: "Question generation admin backend",
	}

	serve := serveCmd()
	root.AddCommand(serve, syncCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `qgen --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":3001", "HTTP listen address")
	f.String("db", "qgen.db", "SQLite database path")
	f.String("jwt-secret", "", "Secret for signing auth tokens (or set QGEN_JWT_SECRET)")
	f.String("admin-email", "admin@example.com", "Initial admin email")
	f.String("admin-password", "", "Initial admin password (or set QGEN_ADMIN_PASSWORD)")
	f.Int("workers", jobs.DefaultWorkers, "Background generation workers")
	f.Int("queue-size", 64, "Background job queue size")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync master data from the LVNPLUS database",
		RunE:  runSync,
	}
	f := cmd.Flags()
	f.String("db", "qgen.db", "SQLite database path")
	f.String("lvnplus-db-host", "", "LVNPLUS MySQL host (required)")
	f.Int("lvnplus-db-port", 3306, "LVNPLUS MySQL port")
	f.String("lvnplus-db-user", "", "LVNPLUS MySQL user")
	f.String("lvnplus-db-password", "", "LVNPLUS MySQL password")
	f.String("lvnplus-db-name", "", "LVNPLUS MySQL database name")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("qgen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/qgen")
	v.AddConfigPath("/etc/qgen")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	jwtSecret := v.GetString("jwt-secret")
	if jwtSecret == "" {
		return fmt.Errorf("jwt-secret is required (flag --jwt-secret or QGEN_JWT_SECRET)")
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-email"), v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	pool := jobs.NewPool(v.GetInt("workers"), v.GetInt("queue-size"))
	defer pool.Close()

	gen := generator.New(db, pool, llm.NewForConfig)
	exp := exporter.New(db, pool)
	h := handler.New(db, gen, exp, llm.NewForConfig, []byte(jwtSecret))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"workers", v.GetInt("workers"),
	)
	return http.ListenAndServe(addr, r)
}

func runSync(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	syncer, err := mdsync.Connect(mdsync.Config{
		Host:     v.GetString("lvnplus-db-host"),
		Port:     v.GetInt("lvnplus-db-port"),
		User:     v.GetString("lvnplus-db-user"),
		Password: v.GetString("lvnplus-db-password"),
		Database: v.GetString("lvnplus-db-name"),
	}, db)
	if err != nil {
		return err
	}
	defer syncer.Close()

	return syncer.Run(context.Background())
}

// seedAdmin creates the initial operator account when the user table is
// empty. Without a password the server refuses to start unattended.
func seedAdmin(db *store.Store, email, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if password == "" {
		return fmt.Errorf("no users exist; set --admin-password or QGEN_ADMIN_PASSWORD to create the first account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := db.CreateUser(model.User{Email: email, PasswordHash: string(hash)}); err != nil {
		return err
	}
	slog.Info("created initial admin user", "email", email)
	return nil
}
