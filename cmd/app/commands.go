package main

import (
	"fmt"

	"github.com/aakumar2208/tamil-movies-scraper/internal/app"
	usecase_ranking "github.com/aakumar2208/tamil-movies-scraper/internal/usecase/ranking"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newServeCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd, func(a *app.App) error {
				return a.Serve(cmd.Context())
			})
		},
	}
}

func newScrapeCmd(rt *cli) *cobra.Command {
	scrape := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl listing pages, movie metadata or reviews",
	}

	var start, total int
	movies := &cobra.Command{
		Use:   "movies",
		Short: "Crawl the popular Tamil films listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd, func(a *app.App) error {
				summary, err := a.Crawl.ScrapeListing(cmd.Context(), start, total)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	movies.Flags().IntVar(&start, "start-page", 1, "first listing page")
	movies.Flags().IntVar(&total, "total-pages", 1, "number of listing pages")

	metadata := &cobra.Command{
		Use:   "metadata",
		Short: "Fill in details for every stored movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd, func(a *app.App) error {
				summary, err := a.Crawl.BackfillMetadata(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}

	var movieID string
	reviews := &cobra.Command{
		Use:   "reviews",
		Short: "Crawl reviews for one movie or all movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var id *uuid.UUID
			if movieID != "" {
				parsed, err := uuid.Parse(movieID)
				if err != nil {
					return fmt.Errorf("invalid --movie-id: %w", err)
				}
				id = &parsed
			}
			return rt.withApp(cmd, func(a *app.App) error {
				summary, err := a.Crawl.BackfillReviews(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	reviews.Flags().StringVar(&movieID, "movie-id", "", "only crawl this movie")

	scrape.AddCommand(movies, metadata, reviews)
	return scrape
}

func newAnalyzeCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Score review sentiment with the completion service",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.cfg.RequireLLM()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd, func(a *app.App) error {
				analyzer, err := a.Analyzer()
				if err != nil {
					return err
				}
				summary, err := analyzer.Run(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func newRankCmd(rt *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the movie rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd, func(a *app.App) error {
				entries, err := a.Ranking.Rankings(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				return usecase_ranking.WriteTable(cmd.OutOrStdout(), entries)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newScheduleCmd(rt *cli) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on the configured cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd, func(a *app.App) error {
				sch := a.Scheduler()
				if once {
					report, err := sch.RunOnce(cmd.Context())
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), report)
				}
				err := sch.Start(cmd.Context(), rt.cfg.Schedule)
				if cmd.Context().Err() != nil {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run the pipeline once and exit")
	return cmd
}
