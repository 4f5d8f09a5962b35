package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/storage"
)

var (
	flagLimit   int
	flagSession string
	flagTop     bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show recorded episode history",
	Long: `Prints aggregate statistics and the most recent (or best) episodes
from the episode database.

Examples:
  bomberman scores
  bomberman scores --top --limit 5
  bomberman scores --session 1f0c...`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of episodes to list")
	scoresCmd.Flags().StringVar(&flagSession, "session", "", "Only show this session")
	scoresCmd.Flags().BoolVar(&flagTop, "top", false, "List the highest scoring episodes instead of the latest")
}

func runScores(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	store, err := storage.Open(cmd.Context(), cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	return printScores(cmd.Context(), store, cmd.OutOrStdout(), scoresQuery{
		Session: flagSession,
		Limit:   flagLimit,
		Top:     flagTop,
	})
}

type scoresQuery struct {
	Session string
	Limit   int
	Top     bool
}

func printScores(ctx context.Context, store *storage.Store, out io.Writer, q scoresQuery) error {
	stats, err := store.Summary(ctx, q.Session)
	if err != nil {
		return err
	}
	if stats.Episodes == 0 {
		fmt.Fprintln(out, "No episodes recorded yet.")
		fmt.Fprintln(out, "Run 'bomberman train' to start recording.")
		return nil
	}

	fmt.Fprintf(out, "Episodes: %d  Wins: %d (%.1f%%)  Deaths: %d  Truncated: %d\n",
		stats.Episodes, stats.Wins, 100*stats.WinRate(), stats.Deaths, stats.Truncated)
	fmt.Fprintf(out, "Best score: %d  Avg score: %.2f  Avg reward: %.2f  Last: %s\n\n",
		stats.BestScore, stats.AvgScore, stats.AvgReward, stats.LastEnded.Local().Format("2006-01-02 15:04"))

	var (
		title    = "Recent episodes"
		episodes []events.EpisodeSummary
	)
	if q.Top {
		title = "Top episodes"
		episodes, err = store.TopEpisodes(ctx, q.Limit)
	} else {
		episodes, err = store.RecentEpisodes(ctx, q.Session, q.Limit)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, title)
	fmt.Fprintf(out, "  %-7s  %-9s  %-5s  %-6s  %-9s  %-7s  %s\n", "Episode", "Outcome", "Score", "Steps", "Reward", "Epsilon", "Ended")
	fmt.Fprintf(out, "  %-7s  %-9s  %-5s  %-6s  %-9s  %-7s  %s\n", "-------", "-------", "-----", "-----", "------", "-------", "-----")
	for _, e := range episodes {
		fmt.Fprintf(out, "  %-7d  %-9s  %-5d  %-6d  %-9.1f  %-7.3f  %s\n",
			e.Episode, e.Outcome, e.Score, e.Steps, e.TotalReward, e.Epsilon, e.EndedAt.Local().Format("01-02 15:04:05"))
	}
	return nil
}
