package main

import (
	"fmt"

	"github.com/aria-lang/seqalign/internal/config"
	"github.com/aria-lang/seqalign/pkg/seqalign"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

// RootCmd is the base command.
var RootCmd = &cobra.Command{
	Use:   "seqalign",
	Short: "Pairwise alignment and alignment profiling of sequencing reads",
	Long: fmt.Sprintf(`seqalign v%s

Pairwise affine-gap alignment of reads against references, with an
alignment cache that persists across runs and quality-aware profiles
of every alignment.

`, seqalign.Version),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		seq.ValidateSeq = false
		if getFlagBool(cmd, "quiet") {
			logging.SetLevel(logging.WARNING, "seqalign")
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(seqalign.Info())
	},
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "",
		formatFlagUsage("TOML config file. Flags given on the command line override it."))
	RootCmd.PersistentFlags().IntP("threads", "j", 0,
		formatFlagUsage("Number of aligners in the pool. 0 uses the config value."))
	RootCmd.PersistentFlags().BoolP("quiet", "", false,
		formatFlagUsage("Do not print any verbose information."))

	RootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config, or the defaults, and applies the global flags.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Default()
	if file := getFlagString(cmd, "config"); file != "" {
		var err error
		cfg, err = config.Load(file)
		checkError(err)
	}

	if threads := getFlagNonNegativeInt(cmd, "threads"); threads > 0 {
		cfg.Threads = threads
	}
	return cfg
}

func formatFlagUsage(s string) string {
	return "► " + s
}
