package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// LZ4Compressor implements block-mode LZ4. The uncompressed length is
// prepended as a 4-byte big-endian header so Decompress can size its buffer
// exactly.
type LZ4Compressor struct{}

const lz4HeaderSize = 4

func (c *LZ4Compressor) Name() string { return "lz4" }

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	out := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(out, uint32(len(data)))

	n, err := lz4.CompressBlock(data, out[lz4HeaderSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// Incompressible input is stored raw, flagged by a zero-length
		// header so Decompress can tell the cases apart.
		out = make([]byte, lz4HeaderSize+len(data))
		binary.BigEndian.PutUint32(out, 0)
		copy(out[lz4HeaderSize:], data)
		return out, nil
	}
	return out[:lz4HeaderSize+n], nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(data) < lz4HeaderSize {
		return nil, fmt.Errorf("lz4 data truncated: %d bytes", len(data))
	}

	size := binary.BigEndian.Uint32(data)
	if size == 0 {
		return append([]byte(nil), data[lz4HeaderSize:]...), nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data[lz4HeaderSize:], out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return out[:n], nil
}
