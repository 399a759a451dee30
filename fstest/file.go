package fstest

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"lesiw.io/hostfs"
)

func testWriteAndRead(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "write_and_read")
	p := dir.Join("greeting.txt")

	writeText(ctx, t, p, "hello\nworld\n")
	if got, want := readText(ctx, t, p), "hello\nworld\n"; got != want {
		t.Errorf("ReadText(%q) = %q, want %q", p, got, want)
	}

	size, err := p.Size(ctx)
	if err != nil {
		t.Fatalf("Size(%q): %v", p, err)
	}
	if size != 12 {
		t.Errorf("Size(%q) = %d, want 12", p, size)
	}

	data := bytes.Repeat([]byte{0, 1, 2, 0xff}, 1<<14)
	bin := dir.Join("blob.bin")
	if err = bin.WriteBytes(ctx, data); err != nil {
		t.Fatalf("WriteBytes(%q): %v", bin, err)
	}
	got, err := bin.ReadBytes(ctx)
	if err != nil {
		t.Fatalf("ReadBytes(%q): %v", bin, err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadBytes(%q) returned %d bytes, want %d identical bytes",
			bin, len(got), len(data))
	}
}

func testWriteTruncates(
	ctx context.Context, t *testing.T, root hostfs.Path,
) {
	dir := scratch(ctx, t, root, "write_truncates")
	p := dir.Join("data.txt")

	writeText(ctx, t, p, "a much longer initial content")
	writeText(ctx, t, p, "short")
	if got := readText(ctx, t, p); got != "short" {
		t.Errorf("ReadText(%q) after overwrite = %q, want %q",
			p, got, "short")
	}
}

func testStreaming(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "streaming")
	p := dir.Join("chunks.txt")

	chunks := []string{"one ", "two ", "", "three"}
	seq := func(yield func([]byte) bool) {
		for _, c := range chunks {
			if !yield([]byte(c)) {
				return
			}
		}
	}
	if err := p.StreamingWrite(ctx, seq); err != nil {
		t.Fatalf("StreamingWrite(%q): %v", p, err)
	}

	var buf strings.Builder
	for chunk, err := range p.StreamingRead(ctx) {
		if err != nil {
			t.Fatalf("StreamingRead(%q): %v", p, err)
		}
		if len(chunk) > hostfs.ChunkSize {
			t.Errorf("StreamingRead(%q) chunk of %d bytes, want <= %d",
				p, len(chunk), hostfs.ChunkSize)
		}
		buf.Write(chunk)
	}
	if got, want := buf.String(), strings.Join(chunks, ""); got != want {
		t.Errorf("StreamingRead(%q) = %q, want %q", p, got, want)
	}

	empty := dir.Join("empty.txt")
	noChunks := slices.Values([][]byte{})
	if err := empty.StreamingWrite(ctx, noChunks); err != nil {
		t.Fatalf("StreamingWrite(%q) empty: %v", empty, err)
	}
	if got := readText(ctx, t, empty); got != "" {
		t.Errorf("ReadText(%q) = %q, want empty", empty, got)
	}
}

func testTouch(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "touch")
	p := dir.Join("new.txt")

	if err := p.Touch(ctx); err != nil {
		t.Fatalf("Touch(%q): %v", p, err)
	}
	isFile, err := p.IsFile(ctx)
	if err != nil {
		t.Fatalf("IsFile(%q): %v", p, err)
	}
	if !isFile {
		t.Errorf("IsFile(%q) after Touch = false, want true", p)
	}

	writeText(ctx, t, p, "keep")
	if err := p.Touch(ctx); err != nil {
		t.Fatalf("Touch(%q) existing: %v", p, err)
	}
	if got := readText(ctx, t, p); got != "keep" {
		t.Errorf("ReadText(%q) after second Touch = %q, want %q",
			p, got, "keep")
	}
}

func testOpenDir(ctx context.Context, t *testing.T, root hostfs.Path) {
	dir := scratch(ctx, t, root, "open_dir")

	_, err := dir.ReadBytes(ctx)
	if err == nil {
		t.Errorf("ReadBytes(%q) on directory succeeded, want error", dir)
	}

	missing := dir.Join("missing.txt")
	_, err = missing.ReadBytes(ctx)
	if !isErr(err, hostfs.ErrNotExist) {
		t.Errorf("ReadBytes(%q) err = %v, want ErrNotExist", missing, err)
	}
}
