package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aakumar2208/tamil-movies-scraper/internal/app"
	"github.com/aakumar2208/tamil-movies-scraper/internal/config"
	"github.com/aakumar2208/tamil-movies-scraper/internal/logger"
	"github.com/spf13/cobra"
)

const appName = "tamil-movies"

type cli struct {
	envFile string
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	rt := &cli{}

	root := &cobra.Command{
		Use:          appName,
		Short:        "Scrape Tamil movies and reviews from Letterboxd, score review sentiment and rank the movies",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rt.envFile)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logger.InitTo(cmd.ErrOrStderr(), cfg.Log.Env, cfg.Log.Debug)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&rt.envFile, "config", "", "env file to load before reading the environment (default .env if present)")

	root.AddCommand(
		newServeCmd(rt),
		newScrapeCmd(rt),
		newAnalyzeCmd(rt),
		newRankCmd(rt),
		newScheduleCmd(rt),
	)
	return root
}

// withApp builds the application for one command and closes it afterwards.
func (rt *cli) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := app.Build(cmd.Context(), rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			rt.log.Warn("failed to close resources", slog.Any("error", err))
		}
	}()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}
