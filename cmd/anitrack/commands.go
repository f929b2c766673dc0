package main

import (
	"encoding/json"
	"fmt"
	"io"

	"anitrack/internal/syncrun"

	"github.com/spf13/cobra"
)

type outputOptions struct {
	JSON bool
}

func (o *outputOptions) addFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&o.JSON, "json", false, "Output as JSON.")
}

func (o *outputOptions) print(w io.Writer, v any, text func(io.Writer)) error {
	if o.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func newRootCommand(open opener) *cobra.Command {
	oo := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "anitrack",
		Short: "Run anitrack batch jobs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	oo.addFlags(cmd)

	addSeason(cmd, open, oo)
	addRepair(cmd, open, oo)
	addMAL(cmd, open, oo)
	addStats(cmd, open, oo)
	return cmd
}

// runCommand opens the services for the lifetime of one command.
func runCommand(cmd *cobra.Command, open opener, fn func(*services) error) error {
	cmd.SilenceUsage = true
	svc, closeFn, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(svc)
}

func printRun(w io.Writer, run *syncrun.Run) {
	fmt.Fprintf(w, "%s %s: total=%d succeeded=%d failed=%d skipped=%d\n",
		run.Kind, run.Status, run.Total, run.Succeeded, run.Failed, run.Skipped)
	if run.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", run.Error)
	}
}

func addSeason(topLevel *cobra.Command, open opener, oo *outputOptions) {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Manage the season catalog",
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Reload the current and upcoming season feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, open, func(svc *services) error {
				run, err := svc.season.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				return oo.print(cmd.OutOrStdout(), run, func(w io.Writer) { printRun(w, run) })
			})
		},
	}

	cmd.AddCommand(refresh)
	topLevel.AddCommand(cmd)
}

func addRepair(topLevel *cobra.Command, open opener, oo *outputOptions) {
	var userID string

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Fill missing metadata on a user's library entries",
		Long: `Repair looks up every entry missing genres, episode counts or artwork and
patches it from the metadata API.

Examples:
  anitrack repair --user 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, open, func(svc *services) error {
				run, err := svc.sync.Repair(cmd.Context(), userID)
				if err != nil {
					return err
				}
				return oo.print(cmd.OutOrStdout(), run, func(w io.Writer) { printRun(w, run) })
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to repair")
	_ = cmd.MarkFlagRequired("user")
	topLevel.AddCommand(cmd)
}

func addMAL(topLevel *cobra.Command, open opener, oo *outputOptions) {
	var userID, username string

	cmd := &cobra.Command{
		Use:   "mal",
		Short: "Sync a library with MyAnimeList",
	}
	cmd.PersistentFlags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkPersistentFlagRequired("user")

	push := &cobra.Command{
		Use:   "push",
		Short: "Write every library entry to the linked MyAnimeList account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, open, func(svc *services) error {
				run, err := svc.sync.Push(cmd.Context(), userID)
				if err != nil {
					return err
				}
				return oo.print(cmd.OutOrStdout(), run, func(w io.Writer) { printRun(w, run) })
			})
		},
	}

	imp := &cobra.Command{
		Use:   "import",
		Short: "Add MyAnimeList entries missing from the library",
		Long: `Import reads the linked account's list, or the public list of --username when
no account is linked, and adds every title the library does not have yet.

Examples:
  anitrack mal import --user 6f1c...
  anitrack mal import --user 6f1c... --username someone`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, open, func(svc *services) error {
				run, err := svc.sync.Import(cmd.Context(), userID, username)
				if err != nil {
					return err
				}
				return oo.print(cmd.OutOrStdout(), run, func(w io.Writer) { printRun(w, run) })
			})
		},
	}
	imp.Flags().StringVar(&username, "username", "", "public MyAnimeList username")

	cmd.AddCommand(push, imp)
	topLevel.AddCommand(cmd)
}
