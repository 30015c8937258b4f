package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vidcrunch/vidcrunch/pkg/historyview"
	"github.com/vidcrunch/vidcrunch/pkg/vidclient"
)

var (
	listLimit  int
	listOffset int
	listSearch string
	listSort   string
	deleteYes  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and prune your compression history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List compression records",
	RunE:  runHistoryList,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [record-id]",
	Short: "Delete one compression record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	historyListCmd.Flags().IntVar(&listLimit, "limit", 12, "Page size")
	historyListCmd.Flags().IntVar(&listOffset, "offset", 0, "Page offset")
	historyListCmd.Flags().StringVar(&listSearch, "search", "", "Filter by filename substring")
	historyListCmd.Flags().StringVar(&listSort, "sort", "newest", "Sort: newest | oldest | biggest-file | biggest-saving")
	historyDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "Skip the confirmation prompt")
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if authToken == "" {
		return fmt.Errorf("no bearer token: pass --token or set VIDCRUNCH_TOKEN")
	}

	api := vidclient.New(apiURL, vidclient.StaticToken(authToken))
	page, err := api.ListHistory(cmd.Context(), vidclient.ListOptions{
		Limit:  listLimit,
		Offset: listOffset,
		Search: listSearch,
		Sort:   listSort,
	})
	if err != nil {
		return err
	}

	if len(page.Data) == 0 {
		fmt.Println("No records.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tORIGINAL\tCOMPRESSED\tSAVED\tCREATED")
	for _, record := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
			record.ID,
			record.Filename,
			formatBytes(record.OriginalSize),
			formatBytes(record.CompressedSize),
			historyview.SavingsPercent(record.OriginalSize, record.CompressedSize),
			record.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nShowing %d of %d record(s).\n", len(page.Data), page.Total)
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if authToken == "" {
		return fmt.Errorf("no bearer token: pass --token or set VIDCRUNCH_TOKEN")
	}
	id := args[0]

	if !deleteYes {
		fmt.Printf("Delete record %s? [y/N] ", id)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	api := vidclient.New(apiURL, vidclient.StaticToken(authToken))
	deletedID, err := api.DeleteRecord(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %s.\n", deletedID)
	return nil
}
