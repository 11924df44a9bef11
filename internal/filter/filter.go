package filter

import (
	"bytes"
	stdbinary "encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

var (
	ErrUnsupported = errors.New("unsupported filter")
	ErrChecksum    = errors.New("fletcher32 checksum mismatch")
)

// decodeFunc undoes one filter. elemSize is the dataset's element size.
type decodeFunc func(f message.Filter, in []byte, elemSize int) ([]byte, error)

var decoders = map[uint16]decodeFunc{
	message.FilterDeflate:    inflate,
	message.FilterShuffle:    unshuffle,
	message.FilterFletcher32: verifyFletcher32,
}

var names = map[uint16]string{
	message.FilterDeflate:     "deflate",
	message.FilterShuffle:     "shuffle",
	message.FilterFletcher32:  "fletcher32",
	message.FilterSzip:        "szip",
	message.FilterNbit:        "nbit",
	message.FilterScaleOffset: "scaleoffset",
}

// Name returns a readable name for the filter.
func Name(f message.Filter) string {
	if n, ok := names[f.ID]; ok {
		return n
	}
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("filter %d", f.ID)
}

// Supported reports whether every filter of p can be decoded. Optional
// filters count as supported since chunks may have skipped them.
func Supported(p *message.FilterPipeline) error {
	if p == nil {
		return nil
	}
	for _, f := range p.Filters {
		if _, ok := decoders[f.ID]; !ok && !f.Optional() {
			return fmt.Errorf("%w: %s", ErrUnsupported, Name(f))
		}
	}
	return nil
}

// Decode returns the chunk with the pipeline's filters undone. Bit i of
// mask set means filter i was not applied to this chunk.
func Decode(p *message.FilterPipeline, chunk []byte, mask uint32, elemSize int) ([]byte, error) {
	if p == nil {
		return chunk, nil
	}
	data := chunk
	for i := len(p.Filters) - 1; i >= 0; i-- {
		if i < 32 && mask&(1<<uint(i)) != 0 {
			continue
		}
		f := p.Filters[i]
		dec, ok := decoders[f.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, Name(f))
		}
		var err error
		if data, err = dec(f, data, elemSize); err != nil {
			return nil, fmt.Errorf("%s: %w", Name(f), err)
		}
	}
	return data, nil
}

func inflate(_ message.Filter, in []byte, _ int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// unshuffle regroups bytes stored as all first bytes, then all second
// bytes, and so on. Trailing bytes that do not fill an element are kept
// as they are.
func unshuffle(f message.Filter, in []byte, elemSize int) ([]byte, error) {
	size := elemSize
	if len(f.ClientData) > 0 && f.ClientData[0] > 0 {
		size = int(f.ClientData[0])
	}
	n := 0
	if size > 0 {
		n = len(in) / size
	}
	if size <= 1 || n <= 1 {
		return in, nil
	}
	out := make([]byte, len(in))
	for b := 0; b < size; b++ {
		src := in[b*n : (b+1)*n]
		for e, v := range src {
			out[e*size+b] = v
		}
	}
	copy(out[n*size:], in[n*size:])
	return out, nil
}

func verifyFletcher32(_ message.Filter, in []byte, _ int) ([]byte, error) {
	if len(in) < 4 {
		return nil, fmt.Errorf("%w: chunk of %d bytes", ErrChecksum, len(in))
	}
	data := in[:len(in)-4]
	stored := stdbinary.LittleEndian.Uint32(in[len(in)-4:])
	sum := binary.Fletcher32(data)
	// Files from HDF5 before 1.6.3 hold the sum with its bytes swapped in
	// each half.
	swapped := (sum&0x00ff00ff)<<8 | (sum>>8)&0x00ff00ff
	if stored != sum && stored != swapped {
		return nil, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrChecksum, stored, sum)
	}
	return data, nil
}
