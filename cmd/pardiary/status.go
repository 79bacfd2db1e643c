package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <activity-id>",
	Short: "Show the cached status of an activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var prefetchCmd = &cobra.Command{
	Use:   "prefetch <diary-id>",
	Short: "Generate details for every activity of a parallel diary",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefetch,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the detail cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [activity-id]",
	Short: "Remove one cached detail, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached activity IDs",
	RunE:  runCacheList,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cacheListCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore(os.Stderr)
	if err != nil {
		return err
	}
	defer st.close()

	id := args[0]
	coord := activity.NewCoordinator(st.cache, st.logger)
	return printJSON(activity.View(id, coord.Status(cmd.Context(), id)))
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	st, err := openStore(os.Stderr)
	if err != nil {
		return err
	}
	defer st.close()

	svc, err := st.services()
	if err != nil {
		return err
	}

	pd, err := svc.diaries.ParallelDiary(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	report := svc.activities.Prefetch(cmd.Context(), pd.Summaries())
	if err := printJSON(report); err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d activities failed", len(report.Failed), len(report.Scheduled))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	st, err := openStore(os.Stderr)
	if err != nil {
		return err
	}
	defer st.close()

	if len(args) == 1 {
		if err := st.cache.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	}
	if err := st.cache.ClearAll(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
	return nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	st, err := openStore(os.Stderr)
	if err != nil {
		return err
	}
	defer st.close()

	for _, id := range st.cache.IDs(cmd.Context()) {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
