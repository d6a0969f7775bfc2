package ledgeraccount

import (
	"bytes"
	"testing"

	"github.com/solwall/soldid/internal/keys"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	want := &Record{
		Initialized: true,
		Version:     CurrentVersion,
		State:       StateRotated,
		KeyType:     keys.Ed25519,
		Bump:        255,
		Keys:        [][32]byte{{1, 2, 3}, {4, 5, 6}},
	}
	want.Authority[0] = 0xAA
	want.Prefix[0] = 0xBB

	buf := make([]byte, want.Size())
	if err := want.Pack(buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	got, err := Unpack(buf)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	if got.Initialized != want.Initialized ||
		got.Version != want.Version ||
		got.State != want.State ||
		got.KeyType != want.KeyType ||
		got.Bump != want.Bump ||
		got.Authority != want.Authority ||
		got.Prefix != want.Prefix ||
		len(got.Keys) != len(want.Keys) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	for i := range want.Keys {
		if got.Keys[i] != want.Keys[i] {
			t.Errorf("key[%d] mismatch: got %v want %v", i, got.Keys[i], want.Keys[i])
		}
	}
}

func TestPackRejectsTooSmallBuffer(t *testing.T) {
	r := &Record{Keys: [][32]byte{{1}}}
	buf := make([]byte, 1)
	if err := r.Pack(buf); err == nil {
		t.Error("Pack() into too-small buffer should fail")
	}
}

func TestRepackGrowsBufferAndPreservesHeader(t *testing.T) {
	small := &Record{Initialized: true, Version: CurrentVersion, State: StateInception, Keys: [][32]byte{{9}}}
	small.Authority[0] = 7
	small.Prefix[0] = 8
	buf := make([]byte, small.Size())
	if err := small.Pack(buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	grown := &Record{
		Initialized: true,
		Version:     CurrentVersion,
		State:       StateRotated,
		Authority:   small.Authority,
		Prefix:      small.Prefix,
		Keys:        [][32]byte{{1}, {2}, {3}},
	}
	out, err := Repack(buf, grown)
	if err != nil {
		t.Fatalf("Repack() error = %v", err)
	}
	if len(out) < grown.Size() {
		t.Fatalf("Repack() did not grow buffer: len=%d want >= %d", len(out), grown.Size())
	}

	got, err := Unpack(out)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if got.Authority != small.Authority || got.Prefix != small.Prefix {
		t.Error("Repack() did not preserve authority/prefix header")
	}
	if !bytes.Equal(got.Keys[2][:], grown.Keys[2][:]) {
		t.Error("Repack() did not persist grown key vector")
	}
}

func TestOverAllocatedSize(t *testing.T) {
	base := (&Record{Keys: make([][32]byte, 2)}).Size()
	got := OverAllocatedSize(2, 10)
	if got != base*10 {
		t.Errorf("OverAllocatedSize() = %d, want %d", got, base*10)
	}
}
