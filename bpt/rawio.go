package bpt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"

	"github.com/katalvlaran/partree/grid"
)

// rawChunkLabels is how many labels readRawPartition decodes per read.
const rawChunkLabels = 1 << 16

// mergeRecord is one line of a merge sequence: parent = merge(a, b).
type mergeRecord struct {
	a, b, parent Label
}

// mergeRecords lists every live internal region in ascending label order,
// which is an order Merge accepts on replay.
func (f *Forest) mergeRecords() []mergeRecord {
	var out []mergeRecord
	for reg := range f.Regions(NonLeaves) {
		out = append(out, mergeRecord{reg.children[0], reg.children[1], reg.label})
	}
	return out
}

// replay re-creates merges recorded against another numbering. Record labels
// are translated through the correspondence table, and each parent is
// entered into it under its newly assigned label. Roots tracking is off
// during replay and the roots partition is rebuilt once at the end.
func (f *Forest) replay(records []mergeRecord) error {
	saved := f.opts.UpdateRoots
	f.opts.UpdateRoots = false
	defer func() { f.opts.UpdateRoots = saved }()

	for i, rec := range records {
		a, okA := f.correspondence[rec.a]
		b, okB := f.correspondence[rec.b]
		if !okA || !okB {
			return fmt.Errorf("%w: merge %d: unknown child in (%d, %d)", ErrCorruptPartitionFile, i, rec.a, rec.b)
		}
		if _, dup := f.correspondence[rec.parent]; dup {
			return fmt.Errorf("%w: merge %d: parent %d reused", ErrCorruptPartitionFile, i, rec.parent)
		}
		parent, err := f.MergeLabels(a, b, f.NextLabel())
		if err != nil {
			return fmt.Errorf("%w: merge %d: %w", ErrCorruptPartitionFile, i, err)
		}
		f.correspondence[rec.parent] = parent.label
	}
	f.RefreshRoots()
	return nil
}

// WriteRaw writes the leaves partition and the merge sequence as raw
// little-endian streams:
//
//	partition: dims:u64 size_i:u64... label:u64...
//	mergings:  count:u64 (child1:u64 child2:u64 parent:u64)...
//
// Merges are listed in ascending parent label; count is the number of
// records written.
func (f *Forest) WriteRaw(partition, mergings io.Writer) error {
	if f.leaves == nil {
		return ErrEmptyRaster
	}
	sizes := f.leaves.Sizes()
	buf := make([]byte, 0, 8*(1+len(sizes)+f.leaves.Len()))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(sizes)))
	for _, s := range sizes {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(s))
	}
	for _, l := range f.leaves.Data() {
		buf = binary.LittleEndian.AppendUint64(buf, l)
	}
	if _, err := partition.Write(buf); err != nil {
		return fmt.Errorf("write partition: %w", err)
	}

	records := f.mergeRecords()
	buf = make([]byte, 0, 8*(1+3*len(records)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(records)))
	for _, rec := range records {
		buf = binary.LittleEndian.AppendUint64(buf, rec.a)
		buf = binary.LittleEndian.AppendUint64(buf, rec.b)
		buf = binary.LittleEndian.AppendUint64(buf, rec.parent)
	}
	if _, err := mergings.Write(buf); err != nil {
		return fmt.Errorf("write mergings: %w", err)
	}
	return nil
}

// ReadRaw replaces the forest with the one stored by WriteRaw: Init on the
// stored leaves, then every stored merge in order.
// Returns ErrCorruptPartitionFile for truncated or inconsistent streams.
func (f *Forest) ReadRaw(partition, mergings io.Reader) error {
	leaves, err := readRawPartition(partition)
	if err != nil {
		return err
	}
	if err := f.Init(leaves); err != nil {
		return err
	}

	count, err := readUint64(mergings)
	if err != nil {
		return fmt.Errorf("%w: mergings count: %w", ErrCorruptPartitionFile, err)
	}
	if count >= uint64(f.Len()) {
		return fmt.Errorf("%w: %d merges for %d leaves", ErrCorruptPartitionFile, count, f.Len())
	}
	records := make([]mergeRecord, count)
	var rec [24]byte
	for i := range records {
		if _, err := io.ReadFull(mergings, rec[:]); err != nil {
			return fmt.Errorf("%w: merge %d: %w", ErrCorruptPartitionFile, i, err)
		}
		records[i] = mergeRecord{
			a:      binary.LittleEndian.Uint64(rec[0:]),
			b:      binary.LittleEndian.Uint64(rec[8:]),
			parent: binary.LittleEndian.Uint64(rec[16:]),
		}
	}
	return f.replay(records)
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readRawPartition(r io.Reader) (*grid.Raster, error) {
	dims, err := readUint64(r)
	if err != nil {
		return nil, fmt.Errorf("%w: partition dims: %w", ErrCorruptPartitionFile, err)
	}
	if dims == 0 || dims > grid.MaxDims {
		return nil, fmt.Errorf("%w: %d dimensions", ErrCorruptPartitionFile, dims)
	}
	sizes := make([]int, dims)
	total := uint64(1)
	for i := range sizes {
		s, err := readUint64(r)
		if err != nil {
			return nil, fmt.Errorf("%w: partition size %d: %w", ErrCorruptPartitionFile, i, err)
		}
		hi, lo := bits.Mul64(total, s)
		if s == 0 || hi != 0 || lo > math.MaxInt32 {
			return nil, fmt.Errorf("%w: bad size %d", ErrCorruptPartitionFile, s)
		}
		sizes[i], total = int(s), lo
	}
	// Labels are read in bounded chunks so a header alone cannot force a
	// large allocation.
	var labels []Label
	chunk := make([]byte, 8*min(total, rawChunkLabels))
	for remaining := total; remaining > 0; {
		n := min(remaining, rawChunkLabels)
		if _, err := io.ReadFull(r, chunk[:8*n]); err != nil {
			return nil, fmt.Errorf("%w: partition labels: %w", ErrCorruptPartitionFile, err)
		}
		for i := uint64(0); i < n; i++ {
			labels = append(labels, binary.LittleEndian.Uint64(chunk[8*i:]))
		}
		remaining -= n
	}
	out, err := grid.FromData(labels, sizes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptPartitionFile, err)
	}
	return out, nil
}

// SaveToFiles writes WriteRaw's two streams to partitionPath and mergingsPath.
func (f *Forest) SaveToFiles(partitionPath, mergingsPath string) error {
	pf, err := os.Create(partitionPath)
	if err != nil {
		return fmt.Errorf("bpt: %w", err)
	}
	defer pf.Close()
	mf, err := os.Create(mergingsPath)
	if err != nil {
		return fmt.Errorf("bpt: %w", err)
	}
	defer mf.Close()

	pw, mw := bufio.NewWriter(pf), bufio.NewWriter(mf)
	if err := f.WriteRaw(pw, mw); err != nil {
		return fmt.Errorf("bpt: save %s: %w", partitionPath, err)
	}
	for _, step := range []func() error{pw.Flush, mw.Flush, pf.Close, mf.Close} {
		if err := step(); err != nil {
			return fmt.Errorf("bpt: save %s: %w", partitionPath, err)
		}
	}
	f.opts.Logger.Info("forest saved", "partition", partitionPath, "mergings", mergingsPath,
		"regions", f.Count(Global))
	return nil
}

// LoadFromFiles is ReadRaw over the files at partitionPath and mergingsPath.
func (f *Forest) LoadFromFiles(partitionPath, mergingsPath string) error {
	pf, err := os.Open(partitionPath)
	if err != nil {
		return fmt.Errorf("bpt: %w", err)
	}
	defer pf.Close()
	mf, err := os.Open(mergingsPath)
	if err != nil {
		return fmt.Errorf("bpt: %w", err)
	}
	defer mf.Close()

	if err := f.ReadRaw(bufio.NewReader(pf), bufio.NewReader(mf)); err != nil {
		return fmt.Errorf("bpt: load %s: %w", partitionPath, err)
	}
	f.opts.Logger.Info("forest loaded", "partition", partitionPath, "mergings", mergingsPath,
		"leaves", f.Count(Leaves), "merges", f.MergeCount())
	return nil
}
