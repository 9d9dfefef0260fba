package alncache

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/klauspost/pgzip"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/twotwotwo/sorts"
)

var be = binary.BigEndian

// Magic number for checking file format
var Magic = [8]byte{'a', 'l', 'n', 'c', 'a', 'c', 'h', 'e'}

// MainVersion is use for checking compatibility
var MainVersion uint8 = 1

// MinorVersion is less important
var MinorVersion uint8 = 0

// ErrInvalidFileFormat means invalid file format.
var ErrInvalidFileFormat = errors.New("alignment cache: invalid binary format")

// ErrBrokenFile means the file is not complete.
var ErrBrokenFile = errors.New("alignment cache: broken file")

// ErrVersionMismatch means version mismatch between files and program
var ErrVersionMismatch = errors.New("alignment cache: version mismatch")

// file names in a cache directory
const (
	FileLocal  = "local.bin.gz"
	FileGlobal = "global.bin.gz"
	FileInfo   = "info.toml"
)

func cacheFile(mode alignment.Mode) string {
	if mode == alignment.Local {
		return FileLocal
	}
	return FileGlobal
}

// LoadFrom merges the cache files of dir into c. It holds the directory's
// read lock, so loads of one directory run concurrently. A missing
// directory is an error; a directory without cache files is not.
func (c *Cache) LoadFrom(dir string) error {
	lock, err := DirLock(dir)
	if err != nil {
		return err
	}
	lock.RLock()
	defer lock.RUnlock()

	ok, err := pathutil.DirExists(dir)
	if err != nil {
		return errors.Wrapf(err, "check cache dir: %s", dir)
	}
	if !ok {
		return errors.Errorf("cache dir not found: %s", dir)
	}

	for _, mode := range []alignment.Mode{alignment.Global, alignment.Local} {
		n, err := c.readFile(filepath.Join(dir, cacheFile(mode)), mode)
		if err != nil {
			return err
		}
		log.Debugf("%d %s alignments loaded from %s", n, mode, dir)
	}
	return nil
}

// SaveTo writes c to dir, creating it if needed. Entries already saved in
// dir are kept, so several caches can be flushed into one directory. It
// holds the directory's write lock.
func (c *Cache) SaveTo(dir string) error {
	lock, err := DirLock(dir)
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()

	if err = os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create cache dir: %s", dir)
	}
	if err = os.Chmod(dir, 0755); err != nil {
		return errors.Wrapf(err, "chmod cache dir: %s", dir)
	}

	merged := New()
	merged.Merge(c)
	for _, mode := range []alignment.Mode{alignment.Global, alignment.Local} {
		file := filepath.Join(dir, cacheFile(mode))
		if _, err = merged.readFile(file, mode); err != nil {
			if !corrupt(err) {
				return err
			}
			log.Warningf("%s, overwritten", err)
		}
		n, err := merged.writeFile(file, mode)
		if err != nil {
			return err
		}
		log.Debugf("%d %s alignments saved to %s", n, mode, dir)
	}

	return merged.writeInfo(filepath.Join(dir, FileInfo))
}

// readFile merges one cache file. A missing file reads as empty.
func (c *Cache) readFile(file string, mode alignment.Mode) (int, error) {
	ok, err := pathutil.Exists(file)
	if err != nil {
		return 0, errors.Wrapf(err, "check cache file: %s", file)
	}
	if !ok {
		return 0, nil
	}

	fh, err := os.Open(file)
	if err != nil {
		return 0, errors.Wrapf(err, "open cache file: %s", file)
	}
	defer fh.Close()

	zr, err := pgzip.NewReader(fh)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidFileFormat, "%s: %s", file, err)
	}
	defer zr.Close()

	loaded := New()
	n, err := loaded.Read(bufio.NewReader(zr), mode)
	if err != nil {
		if !corrupt(err) {
			// damaged compressed stream
			err = errors.Wrap(ErrBrokenFile, err.Error())
		}
		return 0, errors.Wrap(err, file)
	}
	c.Merge(loaded)
	return n, nil
}

// corrupt reports whether err comes from the content of a cache file
// rather than from reading it.
func corrupt(err error) bool {
	return errors.Is(err, ErrBrokenFile) || errors.Is(err, ErrInvalidFileFormat) ||
		errors.Is(err, ErrVersionMismatch)
}

// writeFile replaces file atomically with the partitions of one mode.
func (c *Cache) writeFile(file string, mode alignment.Mode) (int, error) {
	tmp := file + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return 0, errors.Wrapf(err, "create cache file: %s", tmp)
	}

	zw, err := pgzip.NewWriterLevel(fh, pgzip.DefaultCompression)
	if err != nil {
		fh.Close()
		return 0, err
	}
	bw := bufio.NewWriter(zw)

	n, err := c.Write(bw, mode)
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = zw.Close()
	}
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, errors.Wrapf(err, "write cache file: %s", file)
	}

	if err = os.Rename(tmp, file); err != nil {
		return 0, errors.Wrapf(err, "rename cache file: %s", tmp)
	}
	return n, nil
}

type entry struct {
	key pairKey
	res alignment.Result
}

type entries []entry

func (s entries) Len() int      { return len(s) }
func (s entries) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s entries) Less(i, j int) bool {
	if s[i].key.a != s[j].key.a {
		return s[i].key.a < s[j].key.a
	}
	return s[i].key.b < s[j].key.b
}

// Write writes the partitions of one mode to w and returns the number of
// entries written. Partitions and entries are sorted, so equal caches
// produce identical bytes.
//
// Header (16 bytes):
//
//	Magic number, 8 bytes, alncache
//	Main and minor versions, 2 bytes
//	Mode, 1 byte
//	Blank, 5 bytes
//
// Then the number of partitions (8 bytes), and for each partition:
//
//	Model ID length (4 bytes) and bytes
//	Number of entries, 8 bytes
//	Entries: A and B (4-byte length + bytes each), score (8 bytes),
//	AStart, AEnd, BStart, BEnd (4 bytes each), number of gaps (4 bytes),
//	gaps: position and size (4 bytes each), side (1 byte).
func (c *Cache) Write(w io.Writer, mode alignment.Mode) (int, error) {
	var err error
	if err = binary.Write(w, be, Magic); err != nil {
		return 0, err
	}
	if err = binary.Write(w, be, [8]uint8{MainVersion, MinorVersion, uint8(mode)}); err != nil {
		return 0, err
	}

	parts := c.modeParts(mode)
	ids := make([]string, 0, len(parts))
	for id := range parts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err = binary.Write(w, be, uint64(len(ids))); err != nil {
		return 0, err
	}

	var N int
	buf := make([]byte, 24)
	for _, id := range ids {
		p := parts[id]
		if err = writeString(w, buf, id); err != nil {
			return N, err
		}
		be.PutUint64(buf[:8], uint64(len(p)))
		if _, err = w.Write(buf[:8]); err != nil {
			return N, err
		}

		list := make(entries, 0, len(p))
		for k, r := range p {
			list = append(list, entry{key: k, res: r})
		}
		sorts.Quicksort(list)

		for _, e := range list {
			if err = writeEntry(w, buf, &e); err != nil {
				return N, err
			}
			N++
		}
	}
	return N, nil
}

func writeString(w io.Writer, buf []byte, s string) error {
	be.PutUint32(buf[:4], uint32(len(s)))
	if _, err := w.Write(buf[:4]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeEntry(w io.Writer, buf []byte, e *entry) error {
	if err := writeString(w, buf, e.key.a); err != nil {
		return err
	}
	if err := writeString(w, buf, e.key.b); err != nil {
		return err
	}

	r := &e.res
	be.PutUint64(buf[0:8], uint64(int64(r.Score)))
	be.PutUint32(buf[8:12], uint32(r.AStart))
	be.PutUint32(buf[12:16], uint32(r.AEnd))
	be.PutUint32(buf[16:20], uint32(r.BStart))
	be.PutUint32(buf[20:24], uint32(r.BEnd))
	if _, err := w.Write(buf[:24]); err != nil {
		return err
	}

	be.PutUint32(buf[:4], uint32(len(r.Gaps)))
	if _, err := w.Write(buf[:4]); err != nil {
		return err
	}
	for _, g := range r.Gaps {
		be.PutUint32(buf[0:4], uint32(g.Pos))
		be.PutUint32(buf[4:8], uint32(g.Size))
		buf[8] = 0
		if g.InA {
			buf[8] = 1
		}
		if _, err := w.Write(buf[:9]); err != nil {
			return err
		}
	}
	return nil
}

// Read merges the partitions written by Write into c and returns the
// number of entries read. The mode recorded in the data must match mode.
func (c *Cache) Read(r io.Reader, mode alignment.Mode) (int, error) {
	buf := make([]byte, 24)

	if err := readFull(r, buf[:8]); err != nil {
		return 0, err
	}
	for i := 0; i < 8; i++ {
		if Magic[i] != buf[i] {
			return 0, ErrInvalidFileFormat
		}
	}

	if err := readFull(r, buf[:8]); err != nil {
		return 0, err
	}
	if MainVersion != buf[0] {
		return 0, ErrVersionMismatch
	}
	if alignment.Mode(buf[2]) != mode {
		return 0, errors.Wrapf(ErrInvalidFileFormat, "%s cache data in %s cache file",
			alignment.Mode(buf[2]), mode)
	}

	if err := readFull(r, buf[:8]); err != nil {
		return 0, err
	}
	nParts := be.Uint64(buf[:8])

	parts := c.modeParts(mode)
	var N int
	for i := uint64(0); i < nParts; i++ {
		id, err := readString(r, buf)
		if err != nil {
			return N, err
		}
		if err = readFull(r, buf[:8]); err != nil {
			return N, err
		}
		nEntries := be.Uint64(buf[:8])

		p, ok := parts[id]
		if !ok {
			p = make(partition, nEntries)
			parts[id] = p
		}
		for j := uint64(0); j < nEntries; j++ {
			var e entry
			if err = readEntry(r, buf, &e); err != nil {
				return N, err
			}
			if _, ok := p[e.key]; !ok {
				p[e.key] = e.res
			}
			N++
		}
	}
	return N, nil
}

// readFull reports a truncated file as ErrBrokenFile.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrBrokenFile
	}
	return err
}

func readString(r io.Reader, buf []byte) (string, error) {
	if err := readFull(r, buf[:4]); err != nil {
		return "", err
	}
	s := make([]byte, be.Uint32(buf[:4]))
	if err := readFull(r, s); err != nil {
		return "", err
	}
	return string(s), nil
}

func readEntry(r io.Reader, buf []byte, e *entry) error {
	var err error
	if e.key.a, err = readString(r, buf); err != nil {
		return err
	}
	if e.key.b, err = readString(r, buf); err != nil {
		return err
	}

	if err = readFull(r, buf[:24]); err != nil {
		return err
	}
	res := &e.res
	res.Score = int(int64(be.Uint64(buf[0:8])))
	res.AStart = int(be.Uint32(buf[8:12]))
	res.AEnd = int(be.Uint32(buf[12:16]))
	res.BStart = int(be.Uint32(buf[16:20]))
	res.BEnd = int(be.Uint32(buf[20:24]))

	if err = readFull(r, buf[:4]); err != nil {
		return err
	}
	nGaps := be.Uint32(buf[:4])
	if nGaps > 0 {
		res.Gaps = make([]alignment.GapInfo, nGaps)
	}
	for k := range res.Gaps {
		if err = readFull(r, buf[:9]); err != nil {
			return err
		}
		res.Gaps[k] = alignment.GapInfo{
			Pos:  int(be.Uint32(buf[0:4])),
			Size: int(be.Uint32(buf[4:8])),
			InA:  buf[8] == 1,
		}
	}

	if err = res.Validate(len(e.key.a), len(e.key.b)); err != nil {
		return errors.Wrapf(ErrBrokenFile, "entry %.20s/%.20s: %s", e.key.a, e.key.b, err)
	}
	return nil
}

// Info summarizes a cache directory. It is written as info.toml.
type Info struct {
	MainVersion  uint8           `toml:"main-version"`
	MinorVersion uint8           `toml:"minor-version"`
	Entries      int             `toml:"entries"`
	Partitions   []PartitionInfo `toml:"partitions"`
}

// PartitionInfo is the entry count of one (mode, model) partition.
type PartitionInfo struct {
	Mode    string `toml:"mode"`
	Model   string `toml:"model"`
	Entries int    `toml:"entries"`
}

// Info returns the current summary of c.
func (c *Cache) Info() *Info {
	info := &Info{MainVersion: MainVersion, MinorVersion: MinorVersion}
	for _, mode := range []alignment.Mode{alignment.Global, alignment.Local} {
		parts := c.modeParts(mode)
		ids := make([]string, 0, len(parts))
		for id := range parts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			n := len(parts[id])
			info.Partitions = append(info.Partitions, PartitionInfo{Mode: mode.String(), Model: id, Entries: n})
			info.Entries += n
		}
	}
	return info
}

func (c *Cache) writeInfo(file string) error {
	data, err := toml.Marshal(c.Info())
	if err != nil {
		return errors.Wrap(err, "marshal cache info")
	}
	if err = os.WriteFile(file, data, 0644); err != nil {
		return errors.Wrapf(err, "write cache info: %s", file)
	}
	return nil
}

// ReadInfo reads the info.toml of a cache directory.
func ReadInfo(dir string) (*Info, error) {
	file := filepath.Join(dir, FileInfo)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read cache info: %s", file)
	}
	info := &Info{}
	if err = toml.Unmarshal(data, info); err != nil {
		return nil, errors.Wrapf(err, "parse cache info: %s", file)
	}
	return info, nil
}
