package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aria-lang/seqalign/internal/alncache"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and merge alignment cache directories",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info DIR",
	Short: "Show the contents of a cache directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := alncache.ReadInfo(args[0])
		checkError(err)

		fmt.Printf("cache format: v%d.%d\n", info.MainVersion, info.MinorVersion)
		fmt.Printf("entries: %d\n", info.Entries)
		if len(info.Partitions) == 0 {
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "mode\tmodel\tentries")
		for _, p := range info.Partitions {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Mode, p.Model, p.Entries)
		}
		checkError(tw.Flush())
	},
}

var cacheMergeCmd = &cobra.Command{
	Use:   "merge DIR...",
	Short: "Merge cache directories into one",
	Long: `Merge cache directories into one

Entries already present in the output directory are kept.

`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outDir := getFlagString(cmd, "out-dir")
		if outDir == "" {
			checkError(errors.Errorf("flag -O/--out-dir needed"))
		}

		cache := alncache.New()
		for _, dir := range args {
			checkError(cache.LoadFrom(dir))
		}
		checkError(cache.SaveTo(outDir))

		info, err := alncache.ReadInfo(outDir)
		checkError(err)
		log.Infof("%d cache directories merged into %s: %d entries", len(args), outDir, info.Entries)
	},
}

func init() {
	RootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheMergeCmd)

	cacheMergeCmd.Flags().StringP("out-dir", "O", "",
		formatFlagUsage("Output cache directory."))
}
