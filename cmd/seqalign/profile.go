package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/batch"
	"github.com/aria-lang/seqalign/internal/config"
	"github.com/aria-lang/seqalign/internal/kmer"
	"github.com/aria-lang/seqalign/internal/pool"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile reads against their best reference",
	Long: `Profile reads against their best reference

Every read is aligned against every reference and the highest-scoring
alignment is profiled. Output columns (tab-delimited):

    1.  query,      Read name.
    2.  qlen,       Read length.
    3.  ref,        Best reference ("*" when all were skipped).
    4.  rlen,       Reference length.
    5.  score,      Alignment score.
    6.  hqMatch,    High-quality matches.
    7.  lqMatch,    Low-quality matches.
    8.  hqMis,      High-quality mismatches.
    9.  lqMis,      Low-quality mismatches.
    10. kmerMis,    Mismatches inside rare k-mers.
    11. indel1,     Weighted one-base indels.
    12. indel2,     Weighted two-base indels.
    13. indelL,     Weighted larger indels.
    14. qcov,       Query coverage.
    15. qident,     Query identity.
    16. ebi,        Event-based identity.
    17. cigar,      CIGAR with the reference as A.

`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		opts := batchOptions(cmd, cfg)

		refs, reads := readInputs(cmd, getFlagStringSlice(cmd, "queries"))
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

		var matched int
		err = runner.Run(context.Background(), reads, func(res batch.Result) error {
			if res.Ref != nil {
				matched++
			}
			return writeResult(outfh, &res, asJSON)
		})
		checkError(err)
		checkError(p.Close())

		log.Infof("%d of %d reads aligned to %d references", matched, len(reads), len(refs))
	},
}

func init() {
	RootCmd.AddCommand(profileCmd)
	addProfileFlags(profileCmd)
	profileCmd.Flags().StringSliceP("queries", "q", []string{},
		formatFlagUsage("FASTA/Q files of reads."))
}

// addProfileFlags adds the flags shared by profile and batch.
func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("refs", "r", "",
		formatFlagUsage("FASTA/Q file of reference sequences."))
	cmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))
	cmd.Flags().BoolP("json", "", false,
		formatFlagUsage("Output one JSON object per read instead of a table."))
	cmd.Flags().BoolP("local", "l", false,
		formatFlagUsage("Local alignment instead of the configured mode."))
	cmd.Flags().BoolP("primer", "", false,
		formatFlagUsage("Profile without quality or k-mer gating."))
	cmd.Flags().BoolP("cache", "", false,
		formatFlagUsage("Use the alignment cache of every aligner."))
	cmd.Flags().Float64P("prefilter", "", 0,
		formatFlagUsage("Minimum k-mer similarity of a read/reference pair worth aligning. 0 uses the config value."))
}

func batchOptions(cmd *cobra.Command, cfg *config.Config) batch.Options {
	opts := batch.Options{
		Mode:      cfg.AlignMode(),
		Cache:     getFlagBool(cmd, "cache"),
		Primer:    getFlagBool(cmd, "primer"),
		K:         cfg.Kmer.K,
		Prefilter: cfg.Kmer.Prefilter,
	}
	if getFlagBool(cmd, "local") {
		opts.Mode = alignment.Local
	}
	if v := getFlagNonNegativeFloat64(cmd, "prefilter"); v > 0 {
		opts.Prefilter = v
	}
	return opts
}

func readInputs(cmd *cobra.Command, queryFiles []string) ([]*sequence.Read, []*sequence.Read) {
	refFile := getFlagString(cmd, "refs")
	if refFile == "" {
		checkError(errors.Errorf("flag -r/--refs needed"))
	}
	if len(queryFiles) == 0 {
		checkError(errors.Errorf("no query files given"))
	}

	refs, err := readSeqs([]string{refFile})
	checkError(err)
	reads, err := readSeqs(queryFiles)
	checkError(err)
	log.Infof("%d references and %d reads loaded", len(refs), len(reads))
	return refs, reads
}

func newRunner(cfg *config.Config, refs, reads []*sequence.Read, opts batch.Options) (*pool.Pool, *batch.Runner) {
	var index *kmer.Index
	if cfg.Profile.CheckKmer {
		var err error
		index, err = cfg.NewKmerIndex()
		checkError(err)
		index.AddReads(reads)
		log.Infof("k-mer index: %d distinct %d-mers", index.UniqueCount(), index.K)
	}

	p, err := cfg.NewPool(index)
	checkError(err)
	runner, err := batch.NewRunner(p, refs, opts)
	checkError(err)
	return p, runner
}

func writeHeader(w io.Writer) {
	fmt.Fprintln(w, "query\tqlen\tref\trlen\tscore\thqMatch\tlqMatch\thqMis\tlqMis\tkmerMis\tindel1\tindel2\tindelL\tqcov\tqident\tebi\tcigar")
}

type jsonResult struct {
	Query      string               `json:"query"`
	Ref        string               `json:"ref"`
	CIGAR      string               `json:"cigar"`
	Comparison *profiler.Comparison `json:"comparison,omitempty"`
}

func writeResult(w io.Writer, res *batch.Result, asJSON bool) error {
	if asJSON {
		r := jsonResult{Query: res.Read.Name}
		if res.Ref != nil {
			r.Ref = res.Ref.Name
			r.CIGAR = res.Pair.CIGAR()
			r.Comparison = &res.Comparison
		}
		return json.NewEncoder(w).Encode(r)
	}

	if res.Ref == nil {
		_, err := fmt.Fprintf(w, "%s\t%d\t*\t0\t0\t0\t0\t0\t0\t0\t0\t0\t0\t0\t0\t0\t*\n",
			res.Read.Name, res.Read.Len())
		return err
	}
	c := &res.Comparison
	_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.4f\t%.4f\t%.4f\t%s\n",
		res.Read.Name, res.Read.Len(), res.Ref.Name, res.Ref.Len(), c.Score,
		c.HighQualityMatches, c.LowQualityMatches, c.HQMismatches, c.LQMismatches, c.LowKmerMismatches,
		c.OneBaseIndel, c.TwoBaseIndel, c.LargeBaseIndel,
		c.Query.Coverage, c.Query.Identity, c.EventBasedIdentity, res.Pair.CIGAR())
	return err
}
