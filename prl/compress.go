package prl

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// encoder is shared; EncodeAll is safe for concurrent use.
var encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
})

// compress returns body as a single zstd frame.
func compress(body []byte) ([]byte, error) {
	enc, err := encoder()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(body, nil), nil
}

// minDecoderMemory is the decoder memory floor. Frame windows are at least
// 1 KiB even for tiny bodies.
const minDecoderMemory = 1 << 20

// decompress inflates frame, failing once the output would exceed limit bytes.
func decompress(frame []byte, limit uint64) ([]byte, error) {
	if len(frame) == 0 {
		return nil, nil
	}
	dec, err := zstd.NewReader(bytes.NewReader(frame),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(max(limit, minDecoderMemory)),
	)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	out, err := io.ReadAll(io.LimitReader(dec, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}
	return out, nil
}
