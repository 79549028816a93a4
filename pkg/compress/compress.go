// pkg/compress/compress.go

package compress

import (
	"fmt"
	"strings"

	"github.com/DataDog/zstd"
	lz4 "github.com/hungys/go-lz4"
)

// Compressor works on a whole block at a time; the caller allocates dst
// with at least CompressBound(len(src)) bytes for Compress, and with the
// original (uncompressed) size for Decompress.
type Compressor interface {
	Name() string
	CompressBound(size int) int
	Compress(dst, src []byte) (int, error)
	Decompress(dst, src []byte) (int, error)
}

// NewCompressor returns a compressor for the given algorithm, or nil if
// the algorithm is unknown.
func NewCompressor(algr string) Compressor {
	switch strings.ToLower(algr) {
	case "lz4":
		return LZ4{}
	case "zstd":
		return ZStandard{zstd.DefaultCompression}
	case "none", "":
		return NoOp{}
	}
	return nil
}

type NoOp struct{}

func (n NoOp) Name() string { return "none" }
func (n NoOp) CompressBound(size int) int { return size }

func (n NoOp) Compress(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, fmt.Errorf("buffer too short: %d < %d", len(dst), len(src))
	}
	copy(dst, src)
	return len(src), nil
}

func (n NoOp) Decompress(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, fmt.Errorf("buffer too short: %d < %d", len(dst), len(src))
	}
	copy(dst, src)
	return len(src), nil
}

type LZ4 struct{}

func (l LZ4) Name() string { return "lz4" }
func (l LZ4) CompressBound(size int) int { return lz4.CompressBound(size) }

func (l LZ4) Compress(dst, src []byte) (int, error) {
	return lz4.CompressDefault(src, dst)
}

func (l LZ4) Decompress(dst, src []byte) (int, error) {
	return lz4.DecompressSafe(src, dst)
}

type ZStandard struct {
	level int
}

func (z ZStandard) Name() string { return "zstd" }
func (z ZStandard) CompressBound(size int) int { return zstd.CompressBound(size) }

func (z ZStandard) Compress(dst, src []byte) (int, error) {
	d, err := zstd.CompressLevel(dst, src, z.level)
	if err != nil {
		return 0, err
	}
	if len(d) > 0 && len(dst) > 0 && &d[0] != &dst[0] {
		return 0, fmt.Errorf("buffer too short: %d < %d", len(dst), len(d))
	}
	return len(d), nil
}

func (z ZStandard) Decompress(dst, src []byte) (int, error) {
	d, err := zstd.Decompress(dst, src)
	if err != nil {
		return 0, err
	}
	if len(d) > 0 && len(dst) > 0 && &d[0] != &dst[0] {
		return 0, fmt.Errorf("buffer too short: %d < %d", len(dst), len(d))
	}
	return len(d), nil
}
