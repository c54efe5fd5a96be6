// Package prl reads and writes the compact PRL partition format: a small
// fixed header followed by a bit-packed, run-length, context-predicted label
// stream.
//
// Header (little-endian):
//
//	magic:u16=255 filetype:u8=1 compressed:u8 datatype:u8 ndims:u64 size_i:u64... num_bits:u8
//
// Body: a sequence of runs. Each run is a label prefix followed by a length.
//
//	0            Up: the label directly above the run start
//	10           Up-one-right: scanning right along the row above from the
//	             cell above, the first label that differs from it
//	110          Max+1: one more than the largest label seen so far
//	111 <n bits> explicit label on num_bits bits
//
//	1 <8 bits>   run length 1..255
//	0 <2 bits>   run length 1..4 (stored as length-1)
//
// Runs fill consecutive cells in raster order and may wrap rows. Decoding
// stops once every cell is filled. The Up-one-right scan is bounded by the
// end of the row above; a scan that runs off it is not a valid prediction.
//
// With compressed=1 the body bytes are zstd-compressed.
package prl
