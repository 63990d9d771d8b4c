package object

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// maxInflatedSize bounds decompression so malformed or hostile streams
// cannot exhaust memory.
const maxInflatedSize = 2 << 30 // 2 GiB

// Compress deflates data with zlib at the default level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream, enforcing maxInflatedSize. Inputs that
// are not valid zlib, or that inflate past the bound, fail with
// ErrCorruptObject.
func Decompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zlib stream: %v", ErrCorruptObject, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxInflatedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrCorruptObject, err)
	}
	if len(out) > maxInflatedSize {
		return nil, fmt.Errorf("%w: inflated size exceeds %d bytes", ErrCorruptObject, maxInflatedSize)
	}
	return out, nil
}
