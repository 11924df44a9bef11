package filter

import (
	"bytes"
	stdbinary "encoding/binary"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func shuffle(data []byte, size int) []byte {
	n := len(data) / size
	out := make([]byte, len(data))
	for e := 0; e < n; e++ {
		for b := 0; b < size; b++ {
			out[b*n+e] = data[e*size+b]
		}
	}
	copy(out[n*size:], data[n*size:])
	return out
}

func pipeline(ids ...uint16) *message.FilterPipeline {
	p := &message.FilterPipeline{Version: 2}
	for _, id := range ids {
		p.Filters = append(p.Filters, message.Filter{ID: id})
	}
	return p
}

func TestDecodeShuffleDeflate(t *testing.T) {
	raw := make([]byte, 8*50)
	for i := range 50 {
		stdbinary.LittleEndian.PutUint64(raw[8*i:], uint64(i*i))
	}
	stored := deflate(t, shuffle(raw, 8))

	got, err := Decode(pipeline(message.FilterShuffle, message.FilterDeflate), stored, 0, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("decoded chunk differs from the original")
	}
}

func TestDecodeFilterMask(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	// Deflate (filter 1) was skipped for this chunk.
	got, err := Decode(pipeline(message.FilterShuffle, message.FilterDeflate), shuffle(raw, 4), 0b10, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("got %v, want %v", got, raw)
	}
}

func TestDecodeNilPipeline(t *testing.T) {
	in := []byte{9, 8, 7}
	got, err := Decode(nil, in, 0, 1)
	if err != nil || !bytes.Equal(got, in) {
		t.Errorf("Decode(nil) = %v, %v", got, err)
	}
}

func TestUnshuffle(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x11, 0x12, 0x21, 0x22, 0xee}
	tests := []struct {
		name     string
		f        message.Filter
		elemSize int
	}{
		{"element size from client data", message.Filter{ID: message.FilterShuffle, ClientData: []uint32{2}}, 8},
		{"element size from dataset", message.Filter{ID: message.FilterShuffle}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unshuffle(tt.f, shuffle(raw, 2), tt.elemSize)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, raw) {
				t.Errorf("got % x, want % x", got, raw)
			}
		})
	}
}

func TestFletcher32(t *testing.T) {
	data := []byte("terahertz time domain")
	sum := binary.Fletcher32(data)
	swapped := (sum&0x00ff00ff)<<8 | (sum>>8)&0x00ff00ff

	tests := []struct {
		name    string
		trailer uint32
		ok      bool
	}{
		{"current", sum, true},
		{"legacy byte order", swapped, true},
		{"corrupt", sum ^ 0x10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := stdbinary.LittleEndian.AppendUint32(append([]byte(nil), data...), tt.trailer)
			got, err := Decode(pipeline(message.FilterFletcher32), in, 0, 1)
			if !tt.ok {
				if !errors.Is(err, ErrChecksum) {
					t.Errorf("err = %v, want ErrChecksum", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("got %q, want %q", got, data)
			}
		})
	}

	if _, err := Decode(pipeline(message.FilterFletcher32), []byte{1, 2}, 0, 1); !errors.Is(err, ErrChecksum) {
		t.Errorf("short chunk: err = %v, want ErrChecksum", err)
	}
}

func TestUnsupported(t *testing.T) {
	p := pipeline(message.FilterSzip)
	if err := Supported(p); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Supported: err = %v, want ErrUnsupported", err)
	}
	if _, err := Decode(p, []byte{0}, 0, 1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Decode: err = %v, want ErrUnsupported", err)
	}
	// A skipped stage is never decoded.
	if _, err := Decode(p, []byte{0}, 1, 1); err != nil {
		t.Errorf("masked: %v", err)
	}

	opt := &message.FilterPipeline{Filters: []message.Filter{{ID: 32001, Name: "blosc", Flags: 1}}}
	if err := Supported(opt); err != nil {
		t.Errorf("optional filter: %v", err)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		f    message.Filter
		want string
	}{
		{message.Filter{ID: message.FilterDeflate}, "deflate"},
		{message.Filter{ID: 32001, Name: "blosc"}, "blosc"},
		{message.Filter{ID: 40000}, "filter 40000"},
	}
	for _, tt := range tests {
		if got := Name(tt.f); got != tt.want {
			t.Errorf("Name(%d) = %q, want %q", tt.f.ID, got, tt.want)
		}
	}
}
