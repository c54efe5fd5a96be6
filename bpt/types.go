package bpt

import (
	"errors"
	"io"
	"log/slog"

	"github.com/katalvlaran/partree/grid"
	"github.com/katalvlaran/partree/prl"
)

// Sentinel errors for forest operations.
var (
	// ErrEmptyRaster indicates Init was given a nil raster.
	ErrEmptyRaster = errors.New("bpt: raster is nil or empty")

	// ErrInvalidLabel indicates the raster holds the reserved Border value.
	ErrInvalidLabel = errors.New("bpt: raster contains the reserved border label")

	// ErrRegionNotFound indicates a label that is out of range or was pruned.
	ErrRegionNotFound = errors.New("bpt: region not found")

	// ErrLabelOutOfSequence indicates a merge label other than the next arena slot.
	ErrLabelOutOfSequence = errors.New("bpt: merge label out of sequence")

	// ErrAlreadyMerged indicates a merge input that already has a parent.
	ErrAlreadyMerged = errors.New("bpt: region already merged")

	// ErrSelfMerge indicates an attempt to merge a region with itself.
	ErrSelfMerge = errors.New("bpt: cannot merge a region with itself")

	// ErrCorruptPartitionFile indicates a malformed partition or mergings stream.
	// It is the same sentinel the prl codec returns.
	ErrCorruptPartitionFile = prl.ErrCorruptPartitionFile
)

// Label identifies a region.
type Label = grid.Label

// Border is the neighbor label standing for "outside the image".
// It sorts after every real label.
const Border Label = ^Label(0)

// Options configures a Forest.
type Options struct {
	// Conn is the connectivity used to build the adjacency graph.
	Conn grid.Connectivity

	// UpdateRoots keeps the roots partition in sync on every merge.
	UpdateRoots bool

	// Logger receives debug records for init, merge and prune and
	// info records for file I/O.
	Logger *slog.Logger
}

// Option configures a Forest via functional arguments.
type Option func(*Options)

// DefaultOptions returns Conn4 connectivity, roots tracking enabled and a
// logger that discards everything.
func DefaultOptions() Options {
	return Options{
		Conn:        grid.Conn4,
		UpdateRoots: true,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithConnectivity selects the adjacency connectivity.
func WithConnectivity(c grid.Connectivity) Option {
	return func(o *Options) { o.Conn = c }
}

// WithUpdateRoots enables or disables roots-partition tracking on merge.
func WithUpdateRoots(on bool) Option {
	return func(o *Options) { o.UpdateRoots = on }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
