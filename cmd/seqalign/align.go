package main

import (
	"fmt"

	"github.com/aria-lang/seqalign/internal/aligner"
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/pkg/seqalign"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align two sequences",
	Long: `Align two sequences

Sequence A is treated as the reference. The alignment is printed as a
three-line text view followed by the score and coordinates.

`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)

		a := getFlagString(cmd, "seq-a")
		b := getFlagString(cmd, "seq-b")
		if a == "" || b == "" {
			checkError(errors.Errorf("flags -a/--seq-a and -b/--seq-b are both needed"))
		}
		mode := cfg.AlignMode()
		if getFlagBool(cmd, "local") {
			mode = alignment.Local
		}

		ref, err := seqalign.NewRead("a", a, nil)
		checkError(err)
		query, err := seqalign.NewRead("b", b, nil)
		checkError(err)

		model, err := cfg.Model()
		checkError(err)

		maxSize := cfg.MaxSize
		if ref.Len() > maxSize {
			maxSize = ref.Len()
		}
		if query.Len() > maxSize {
			maxSize = query.Len()
		}
		algn := aligner.New(maxSize, model, cfg.Profile)

		if getFlagBool(cmd, "no-align") {
			checkError(algn.NoAlign(ref, query))
		} else {
			checkError(algn.Align(ref, query, mode))
		}

		r := algn.Result()
		pair := algn.Pair()
		fmt.Println(pair.Format())
		fmt.Printf("score: %d, a: [%d, %d), b: [%d, %d), identity: %.4f, gap openings: %d\n",
			r.Score, r.AStart, r.AEnd, r.BStart, r.BEnd, pair.Identity(), pair.GapOpenings())
		if getFlagBool(cmd, "cigar") {
			fmt.Printf("cigar: %s\n", pair.CIGAR())
		}
		if getFlagBool(cmd, "profile") {
			comp := algn.Profile()
			fmt.Println(comp.String())
		}
	},
}

func init() {
	RootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringP("seq-a", "a", "",
		formatFlagUsage("Sequence A (reference)."))
	alignCmd.Flags().StringP("seq-b", "b", "",
		formatFlagUsage("Sequence B (query)."))
	alignCmd.Flags().BoolP("local", "l", false,
		formatFlagUsage("Local alignment instead of the configured mode."))
	alignCmd.Flags().BoolP("no-align", "", false,
		formatFlagUsage("Score two sequences of equal length column by column without aligning."))
	alignCmd.Flags().BoolP("cigar", "", false,
		formatFlagUsage("Print the CIGAR string."))
	alignCmd.Flags().BoolP("profile", "p", false,
		formatFlagUsage("Print the alignment profile."))
}
