package main

import (
	"context"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/aria-lang/seqalign/internal/batch"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/stats"
	"github.com/pkg/profile"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Profile many reads in parallel with summary statistics",
	Long: `Profile many reads in parallel with summary statistics

Like "profile", with a progress bar, alignment caches loaded from and
saved to directories, summary statistics of the batch and an optional
identity histogram. Reads are given as files (-q) or found in a
directory (-Q). Interrupting the command still saves the caches.

`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		opts := batchOptions(cmd, cfg)
		quiet := getFlagBool(cmd, "quiet")

		switch {
		case getFlagBool(cmd, "cpu-profile"):
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case getFlagBool(cmd, "mem-profile"):
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		}

		if dir := getFlagString(cmd, "cache-in"); dir != "" {
			cfg.Cache.InDir = dir
		}
		if dir := getFlagString(cmd, "cache-out"); dir != "" {
			cfg.Cache.OutDir = dir
		}
		checkError(cfg.ExpandPaths())

		var regionRef string
		var regionStart, regionEnd int
		region := getFlagString(cmd, "region")
		if region != "" {
			var err error
			regionRef, regionStart, regionEnd, err = parseRegion(region)
			checkError(err)
		}

		files := getFlagStringSlice(cmd, "queries")
		if dir := getFlagString(cmd, "query-dir"); dir != "" {
			pattern, err := regexp.Compile(getFlagString(cmd, "file-regexp"))
			checkError(err)
			found, err := listFiles(dir, pattern, cfg.Threads)
			checkError(err)
			log.Infof("%d files found in %s", len(found), dir)
			files = append(files, found...)
		}

		refs, reads := readInputs(cmd, files)
		p, runner := newRunner(cfg, refs, reads, opts)

		timeStart := time.Now()
		defer func() {
			log.Infof("elapsed time: %s", time.Since(timeStart))
		}()

		outfh, err := xopen.Wopen(getFlagString(cmd, "out-file"))
		checkError(err)
		defer outfh.Close()

		asJSON := getFlagBool(cmd, "json")
		if !asJSON {
			writeHeader(outfh)
		}

		// process bar
		var pbs *mpb.Progress
		var bar *mpb.Bar
		if !quiet {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(reads)),
				mpb.PrependDecorators(
					decor.Name("processed reads: ", decor.WC{W: len("processed reads: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
					decor.AverageETA(decor.ET_STYLE_GO),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		comps := make([]profiler.Comparison, 0, len(reads))
		events := stats.NewEventIndex()
		var skipped int
		err = runner.Run(ctx, reads, func(res batch.Result) error {
			if bar != nil {
				bar.Increment()
			}
			skipped += res.Skipped
			if res.Ref != nil {
				comps = append(comps, res.Comparison)
				if region != "" {
					if err := events.Add(&res.Comparison); err != nil {
						return err
					}
				}
			}
			return writeResult(outfh, &res, asJSON)
		})
		if pbs != nil {
			if err != nil {
				bar.Abort(false)
			}
			pbs.Wait()
		}

		// caches are saved even when the run was interrupted
		if cerr := p.CloseTimeout(time.Minute); cerr != nil {
			log.Errorf("close aligner pool: %s", cerr)
		} else if cfg.Cache.OutDir != "" {
			log.Infof("alignment caches saved to: %s", cfg.Cache.OutDir)
		}
		checkError(err)

		if opts.Prefilter > 0 {
			log.Infof("%d read/reference pairs skipped by the k-mer prefilter", skipped)
		}
		if len(comps) == 0 {
			log.Warningf("no read aligned")
			return
		}

		summary, err := stats.Summarize(comps)
		checkError(err)
		for _, line := range strings.Split(summary.String(), "\n") {
			log.Info(line)
		}

		identities := make([]float64, len(comps))
		for i := range comps {
			identities[i] = comps[i].Query.Identity
		}
		bins := getFlagNonNegativeInt(cmd, "bins")
		if bins > 0 {
			h, err := stats.NewHistogram(identities, bins)
			checkError(err)
			lo, hi := h.ModeBin()
			log.Infof("most frequent query identity: [%.3f, %.3f)", lo, hi)

			if file := getFlagString(cmd, "plot"); file != "" {
				checkError(stats.PlotHistogram(identities, bins, "Query identity", "identity", file))
				log.Infof("identity histogram saved to: %s", file)
			}
		}

		if region != "" {
			found := events.Overlapping(regionRef, regionStart, regionEnd)
			log.Infof("%d events in %s", len(found), region)
			for _, e := range found {
				log.Infof("  %s\t%s\t%d-%d\t%s\t%d", e.Ref, e.Query, e.Start+1, e.End+1, e.Kind, e.Size)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(batchCmd)
	addProfileFlags(batchCmd)

	batchCmd.Flags().StringSliceP("queries", "q", []string{},
		formatFlagUsage("FASTA/Q files of reads."))
	batchCmd.Flags().StringP("query-dir", "Q", "",
		formatFlagUsage("Directory containing FASTA/Q files of reads. Directory symlinks are followed."))
	batchCmd.Flags().StringP("file-regexp", "", `\.(f[aq](st[aq])?|fna)(.gz)?$`,
		formatFlagUsage("Regular expression for matching read files in -Q/--query-dir."))

	batchCmd.Flags().StringP("cache-in", "", "",
		formatFlagUsage("Directory to load alignment caches from. Overrides the config."))
	batchCmd.Flags().StringP("cache-out", "", "",
		formatFlagUsage("Directory to save alignment caches to. Overrides the config."))

	batchCmd.Flags().IntP("bins", "", 20,
		formatFlagUsage("Number of bins of the identity histogram. 0 disables it."))
	batchCmd.Flags().StringP("plot", "", "",
		formatFlagUsage(`Save the identity histogram to this file (".png", ".pdf", ".svg").`))
	batchCmd.Flags().StringP("region", "", "",
		formatFlagUsage(`Report mismatches and indels overlapping a reference region, e.g., "ref1:100-200".`))

	batchCmd.Flags().BoolP("cpu-profile", "", false,
		formatFlagUsage("Write a CPU profile to the current directory."))
	batchCmd.Flags().BoolP("mem-profile", "", false,
		formatFlagUsage("Write a memory profile to the current directory."))
}
