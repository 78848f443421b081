package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dugoutlabs/go-dugout/env"
	"github.com/dugoutlabs/go-dugout/logger"
	"github.com/dugoutlabs/go-dugout/querycache"
	"github.com/dugoutlabs/go-dugout/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dugout",
	Short: "Query the dugout analytics store through the local query cache",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envs, _ := env.ParseEnvFile(".env")
		env.Apply(envs)
	},
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".dugout"
	}
	return filepath.Join(dir, "dugout")
}

func newCache(cmd *cobra.Command, log logger.Logger) (*querycache.Cache, error) {
	ctx := cmd.Context()
	cacheDir := env.FlagOrEnv(cmd, "cache-dir", "DUGOUT_CACHE_DIR", defaultCacheDir())
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	ttl := env.Duration("DUGOUT_CACHE_TTL", querycache.DefaultTTL)
	persistent, err := querycache.NewSQLiteTier(ctx, filepath.Join(cacheDir, "querycache.db"),
		querycache.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("opening persistent cache: %w", err)
	}
	return querycache.New(ctx,
		querycache.WithTTL(ttl),
		querycache.WithPersistent(persistent),
		querycache.WithLogger(log),
	), nil
}

func newStoreClient(cmd *cobra.Command, log logger.Logger) (*store.Client, error) {
	baseURL := env.FlagOrEnv(cmd, "store-url", "DUGOUT_STORE_URL", "")
	if baseURL == "" {
		return nil, fmt.Errorf("no store url configured, pass --store-url or set DUGOUT_STORE_URL")
	}
	apiKey := env.FlagOrEnv(cmd, "api-key", "DUGOUT_API_KEY", "")
	return store.NewClient(baseURL, apiKey, log), nil
}

func queryConfig(cmd *cobra.Command, q store.Query) querycache.QueryConfig {
	fresh, _ := cmd.Flags().GetBool("fresh")
	noPersist, _ := cmd.Flags().GetBool("no-persist")
	return querycache.QueryConfig{
		Key:         q.CacheKey(),
		ForceFresh:  fresh,
		SkipPersist: noPersist,
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runQuery executes q through the cache and prints the decoded rows.
func runQuery[T any](cmd *cobra.Command, q store.Query) error {
	log := env.NewLogger(cmd)
	cache, err := newCache(cmd, log)
	if err != nil {
		return err
	}
	defer cache.Close()
	client, err := newStoreClient(cmd, log)
	if err != nil {
		return err
	}
	envelope, err := querycache.Do(cmd.Context(), queryConfig(cmd, q), cache, store.Fetch[T](client, q))
	if err != nil {
		return err
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	return printJSON(envelope.Data)
}

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List the players on a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			team, _ := cmd.Flags().GetString("team")
			q := store.From("players").
				Select("id", "name", "position", "class_year", "bats", "throws").
				Eq("team_id", team).
				Order("name")
			return runQuery[[]store.Player](cmd, q)
		},
	}
	cmd.Flags().String("team", "", "team id to list")
	cmd.MarkFlagRequired("team")
	return cmd
}

func statCmd(use string, short string, table string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			team, _ := cmd.Flags().GetString("team")
			season, _ := cmd.Flags().GetInt("season")
			limit, _ := cmd.Flags().GetInt("limit")
			q := store.From(table).Eq("season", season)
			if team != "" {
				q = q.Eq("team_id", team)
			}
			if limit > 0 {
				q = q.Range(0, limit-1)
			}
			switch table {
			case "batting_lines":
				return runQuery[[]store.BattingLine](cmd, q.OrderDesc("ops"))
			default:
				return runQuery[[]store.PitchingLine](cmd, q.Order("era"))
			}
		},
	}
	cmd.Flags().String("team", "", "restrict to a single team")
	cmd.Flags().Int("season", 2026, "season year")
	cmd.Flags().Int("limit", 0, "maximum rows to return")
	return cmd
}

func newTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := store.From("teams").
				Select("id", "name", "conference", "wins", "losses").
				Order("name")
			return runQuery[[]store.Team](cmd, q)
		},
	}
}

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the local query cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached query result",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := env.NewLogger(cmd)
			cache, err := newCache(cmd, log)
			if err != nil {
				return err
			}
			defer cache.Close()
			cache.Clear(cmd.Context())
			log.Info("query cache cleared")
			return nil
		},
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "invalidate <key>",
		Short: "Remove a single cached query result by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := env.NewLogger(cmd)
			cache, err := newCache(cmd, log)
			if err != nil {
				return err
			}
			defer cache.Close()
			cache.Invalidate(cmd.Context(), args[0])
			log.Info("cache key invalidated: %s", args[0])
			return nil
		},
	})
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "ttl",
		Short: "Print the configured cache freshness window",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := env.NewLogger(cmd)
			cache, err := newCache(cmd, log)
			if err != nil {
				return err
			}
			defer cache.Close()
			fmt.Println(cache.TTL())
			return nil
		},
	})
	return cacheCmd
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store-url", "", "base url of the analytics store")
	rootCmd.PersistentFlags().String("api-key", "", "api key for the analytics store")
	rootCmd.PersistentFlags().String("cache-dir", "", "directory for the persistent query cache")
	rootCmd.PersistentFlags().Bool("fresh", false, "bypass cached results and refetch")
	rootCmd.PersistentFlags().Bool("no-persist", false, "keep results in memory only")

	rootCmd.AddCommand(newRosterCmd())
	rootCmd.AddCommand(statCmd("batting", "Show batting lines", "batting_lines"))
	rootCmd.AddCommand(statCmd("pitching", "Show pitching lines", "pitching_lines"))
	rootCmd.AddCommand(newTeamsCmd())
	rootCmd.AddCommand(newCacheCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
