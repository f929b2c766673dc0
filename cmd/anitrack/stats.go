package main

import (
	"fmt"
	"io"
	"time"

	"anitrack/internal/insight"

	"github.com/spf13/cobra"
)

type statsReport struct {
	DNA        []insight.GenreCount    `json:"dna"`
	Badges     []insight.BadgeResult   `json:"badges"`
	Countdowns []insight.CountdownItem `json:"countdowns"`
}

func addStats(topLevel *cobra.Command, open opener, oo *outputOptions) {
	var (
		userID string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's genre DNA, badges and upcoming episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, open, func(svc *services) error {
				report, err := buildStats(cmd, svc.insight, userID, top)
				if err != nil {
					return err
				}
				return oo.print(cmd.OutOrStdout(), report, func(w io.Writer) { renderStats(w, report) })
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().IntVar(&top, "top", 3, "number of genres in the DNA")
	_ = cmd.MarkFlagRequired("user")
	topLevel.AddCommand(cmd)
}

func buildStats(cmd *cobra.Command, svc *insight.Service, userID string, top int) (statsReport, error) {
	ctx := cmd.Context()
	dna, err := svc.DNA(ctx, userID, top)
	if err != nil {
		return statsReport{}, err
	}
	badges, err := svc.Achievements(ctx, userID)
	if err != nil {
		return statsReport{}, err
	}
	countdowns, err := svc.Countdowns(ctx, userID)
	if err != nil {
		return statsReport{}, err
	}
	return statsReport{DNA: dna, Badges: badges, Countdowns: countdowns}, nil
}

func renderStats(w io.Writer, r statsReport) {
	fmt.Fprintln(w, "Genre DNA")
	if len(r.DNA) == 0 {
		fmt.Fprintln(w, "  (no genres yet)")
	}
	for i, g := range r.DNA {
		fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, g.Genre, g.Count)
	}

	fmt.Fprintln(w, "Badges")
	for _, b := range r.Badges {
		mark := " "
		if b.Unlocked {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", mark, b.Name, b.Description)
	}

	fmt.Fprintln(w, "Countdowns")
	if len(r.Countdowns) == 0 {
		fmt.Fprintln(w, "  (nothing scheduled)")
	}
	for _, c := range r.Countdowns {
		fmt.Fprintf(w, "  %s: %s (%s)\n", c.Title, c.Label, c.At.UTC().Format(time.RFC1123))
	}
}
