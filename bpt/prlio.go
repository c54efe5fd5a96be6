package bpt

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/katalvlaran/partree/prl"
)

// SavePRL writes the leaves partition as a PRL file at partitionPath and a
// text index at indexPath:
//
//	<partition path, relative to the index file's directory>
//	<imagePath>
//	child1<TAB>child2<TAB>parent
//	...
//
// imagePath is only recorded, never opened.
func (f *Forest) SavePRL(imagePath, partitionPath, indexPath string, opts ...prl.Option) error {
	if f.leaves == nil {
		return ErrEmptyRaster
	}
	if err := prl.WriteFile(partitionPath, f.leaves, opts...); err != nil {
		return fmt.Errorf("bpt: %w", err)
	}

	fd, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("bpt: %w", err)
	}
	defer fd.Close()
	w := bufio.NewWriter(fd)
	fmt.Fprintln(w, relativeTo(filepath.Dir(indexPath), partitionPath))
	fmt.Fprintln(w, imagePath)
	records := f.mergeRecords()
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%d\t%d\n", rec.a, rec.b, rec.parent)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("bpt: save %s: %w", indexPath, err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("bpt: save %s: %w", indexPath, err)
	}
	f.opts.Logger.Info("forest saved as prl", "index", indexPath, "partition", partitionPath, "merges", len(records))
	return nil
}

// LoadPRL replaces the forest with the one described by the index file at
// indexPath and returns the image path it records. A relative partition
// path is resolved against the index file's directory. Merge labels are
// translated through Correspondence, so indexes numbered from 1 load as
// well as those written by SavePRL.
func (f *Forest) LoadPRL(indexPath string) (imagePath string, err error) {
	fd, err := os.Open(indexPath)
	if err != nil {
		return "", fmt.Errorf("bpt: %w", err)
	}
	defer fd.Close()

	sc := bufio.NewScanner(fd)
	var header []string
	var records []mergeRecord
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if len(header) < 2 {
			header = append(header, text)
			continue
		}
		if text == "" {
			continue
		}
		rec, err := parseMergeLine(text)
		if err != nil {
			return "", fmt.Errorf("bpt: load %s line %d: %w", indexPath, line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("bpt: load %s: %w", indexPath, err)
	}
	if len(header) < 2 || header[0] == "" {
		return "", fmt.Errorf("bpt: load %s: %w: missing header", indexPath, ErrCorruptPartitionFile)
	}

	partitionPath := header[0]
	if !filepath.IsAbs(partitionPath) {
		partitionPath = filepath.Join(filepath.Dir(indexPath), partitionPath)
	}
	leaves, err := prl.ReadFile(partitionPath)
	if err != nil {
		return "", fmt.Errorf("bpt: %w", err)
	}
	if err := f.Init(leaves); err != nil {
		return "", err
	}
	if len(records) >= f.Len() {
		return "", fmt.Errorf("bpt: load %s: %w: %d merges for %d leaves",
			indexPath, ErrCorruptPartitionFile, len(records), f.Len())
	}
	if err := f.replay(records); err != nil {
		return "", fmt.Errorf("bpt: load %s: %w", indexPath, err)
	}
	f.opts.Logger.Info("forest loaded from prl", "index", indexPath, "partition", partitionPath,
		"leaves", f.Count(Leaves), "merges", f.MergeCount())
	return header[1], nil
}

func parseMergeLine(text string) (mergeRecord, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return mergeRecord{}, fmt.Errorf("%w: want 3 fields, got %d", ErrCorruptPartitionFile, len(fields))
	}
	var v [3]Label
	for i, s := range fields {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return mergeRecord{}, fmt.Errorf("%w: %w", ErrCorruptPartitionFile, err)
		}
		v[i] = n
	}
	return mergeRecord{v[0], v[1], v[2]}, nil
}

// relativeTo expresses path relative to dir, falling back to path unchanged.
func relativeTo(dir, path string) string {
	absDir, err1 := filepath.Abs(dir)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return path
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return path
	}
	return rel
}
