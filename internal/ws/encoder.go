package ws

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Encoder compresses downstream frames for clients that negotiated the
// zstd subprotocol. EncodeAll on a shared zstd encoder is safe for
// concurrent use.
type Encoder struct {
	zstdEncoder *zstd.Encoder
}

func NewEncoder() (*Encoder, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Encoder{zstdEncoder: enc}, nil
}

// Compress returns the zstd-compressed form of a JSON frame.
func (e *Encoder) Compress(frame []byte) []byte {
	return e.zstdEncoder.EncodeAll(frame, nil)
}

// Close releases encoder resources.
func (e *Encoder) Close() {
	e.zstdEncoder.Close()
}
