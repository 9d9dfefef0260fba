package main

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/aria-lang/seqalign/pkg/seqalign"
	"github.com/iafan/cwalk"
	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log *logging.Logger

func init() {
	var stderr io.Writer = os.Stderr
	if runtime.GOOS == "windows" {
		stderr = colorable.NewColorableStderr()
	}
	backend := logging.NewLogBackend(stderr, "", 0)
	format := logging.MustStringFormatter(`%{time:15:04:05.000} %{color}[%{level:.4s}]%{color:reset} %{message}`)
	logging.SetBackend(logging.NewBackendFormatter(backend, format))
	log = logging.MustGetLogger("seqalign")
}

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

func getFlagString(cmd *cobra.Command, flag string) string {
	value, err := cmd.Flags().GetString(flag)
	checkError(err)
	return value
}

func getFlagStringSlice(cmd *cobra.Command, flag string) []string {
	value, err := cmd.Flags().GetStringSlice(flag)
	checkError(err)
	return value
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	value, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return value
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	value, err := cmd.Flags().GetInt(flag)
	checkError(err)
	if value < 0 {
		checkError(errors.Errorf("value of flag --%s should not be negative: %d", flag, value))
	}
	return value
}

func getFlagNonNegativeFloat64(cmd *cobra.Command, flag string) float64 {
	value, err := cmd.Flags().GetFloat64(flag)
	checkError(err)
	if value < 0 {
		checkError(errors.Errorf("value of flag --%s should not be negative: %g", flag, value))
	}
	return value
}

// readSeqs reads every record of the files.
func readSeqs(files []string) ([]*sequence.Read, error) {
	var all []*sequence.Read
	for _, file := range files {
		reads, err := seqalign.ReadFile(file)
		if err != nil {
			return nil, err
		}
		all = append(all, reads...)
	}
	return all, nil
}

// listFiles returns the files under dir whose names match pattern, sorted.
func listFiles(dir string, pattern *regexp.Regexp, threads int) ([]string, error) {
	files := make([]string, 0, 64)
	ch := make(chan string, threads)
	done := make(chan int)
	go func() {
		for file := range ch {
			files = append(files, file)
		}
		done <- 1
	}()

	cwalk.NumWorkers = threads
	err := cwalk.WalkWithSymlinks(dir, func(_path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && pattern.MatchString(info.Name()) {
			ch <- filepath.Join(dir, _path)
		}
		return nil
	})
	close(ch)
	<-done
	if err != nil {
		return nil, errors.Wrap(err, dir)
	}

	sort.Strings(files)
	return files, nil
}

// parseRegion parses "ref:start-end" with 1-based inclusive positions and
// returns 0-based inclusive ones.
func parseRegion(s string) (string, int, int, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return "", 0, 0, errors.Errorf("invalid region, expected ref:start-end: %s", s)
	}
	ref, rng := s[:i], s[i+1:]

	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return "", 0, 0, errors.Errorf("invalid region range: %s", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", 0, 0, errors.Wrapf(err, "invalid region start: %s", s)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, errors.Wrapf(err, "invalid region end: %s", s)
	}
	if start < 1 || end < start {
		return "", 0, 0, errors.Errorf("invalid region range: %s", s)
	}
	return ref, start - 1, end - 1, nil
}
