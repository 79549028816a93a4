// pkg/chunk/store_test.go

package chunk

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func group(n, base int) []Record {
	recs := make([]Record, n)
	for i := range recs {
		recs[i] = Record{"id": float64(base + i), "name": fmt.Sprintf("item_%d", base+i)}
	}
	return recs
}

func TestFileStoreRoundTrip(t *testing.T) {
	for _, algr := range []string{"none", "lz4", "zstd"} {
		t.Run(algr, func(t *testing.T) {
			s, err := NewFileStore(t.TempDir(), JSONCodec{}, &StoreConfig{Compress: algr})
			if err != nil {
				t.Fatalf("new store: %s", err)
			}
			recs := group(10, 0)
			if err := s.Save(0, recs); err != nil {
				t.Fatalf("save: %s", err)
			}
			got, err := s.Load(0)
			if err != nil {
				t.Fatalf("load: %s", err)
			}
			if !reflect.DeepEqual(got, recs) {
				t.Fatalf("round trip mismatch:\n got %v\nwant %v", got, recs)
			}
		})
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), JSONCodec{}, nil)
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	if err := s.Save(0, group(5, 0)); err != nil {
		t.Fatalf("save: %s", err)
	}
	if err := s.Save(0, group(5, 100)); err != nil {
		t.Fatalf("overwrite: %s", err)
	}
	got, err := s.Load(0)
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	if got[0]["id"].(float64) != 100 {
		t.Fatalf("expected overwritten chunk, got id %v", got[0]["id"])
	}
}

func TestFileStoreEncrypted(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, JSONCodec{}, &StoreConfig{Compress: "lz4", SecretKey: "topsecret"})
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	recs := group(8, 0)
	if err := s.Save(0, recs); err != nil {
		t.Fatalf("save: %s", err)
	}
	raw, err := os.ReadFile(s.Path(0))
	if err != nil {
		t.Fatalf("read chunk file: %s", err)
	}
	if bytes.HasPrefix(raw, chunkMagic) {
		t.Fatalf("chunk file is not encrypted")
	}
	got, err := s.Load(0)
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	if !reflect.DeepEqual(got, recs) {
		t.Fatalf("round trip mismatch")
	}

	wrong, err := NewFileStore(dir, JSONCodec{}, &StoreConfig{Compress: "lz4", SecretKey: "nope"})
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	if _, err := wrong.Load(0); err == nil {
		t.Fatalf("expected load with wrong passphrase to fail")
	}
}

func TestFileStoreMissingChunk(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), JSONCodec{}, nil)
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	if _, err := s.Load(3); err == nil {
		t.Fatalf("expected load of missing chunk to fail")
	}
}

func TestFileStoreCorruptChunk(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), JSONCodec{}, nil)
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	if err := s.Save(0, group(3, 0)); err != nil {
		t.Fatalf("save: %s", err)
	}
	if err := os.WriteFile(s.Path(0), []byte("garbage"), 0644); err != nil {
		t.Fatalf("corrupt chunk: %s", err)
	}
	if _, err := s.Load(0); err == nil {
		t.Fatalf("expected load of corrupt chunk to fail")
	}
}

func TestFileStorePath(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), JSONCodec{}, nil)
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	if filepath.Base(s.Path(1)) != "chunk_000001.chk" {
		t.Fatalf("unexpected chunk name %s", filepath.Base(s.Path(1)))
	}
	if s.Path(1) == s.Path(2) {
		t.Fatalf("chunk paths must be unique per ordinal")
	}
}

func TestFileStoreDeleteAll(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, JSONCodec{}, nil)
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	for k := 0; k < 3; k++ {
		if err := s.Save(k, group(4, k*4)); err != nil {
			t.Fatalf("save %d: %s", k, err)
		}
	}
	unrelated := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unrelated, []byte("keep me"), 0644); err != nil {
		t.Fatalf("write unrelated: %s", err)
	}
	if err := StoreFormat(dir, &Format{UUID: "u", ChunkSize: 4, Compression: "none", Version: FormatVersion}); err != nil {
		t.Fatalf("store format: %s", err)
	}

	if err := s.DeleteAll(); err != nil {
		t.Fatalf("delete all: %s", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %s", err)
	}
	for _, e := range entries {
		if chunkFileRe.MatchString(e.Name()) {
			t.Fatalf("chunk file %s survived DeleteAll", e.Name())
		}
	}
	if !fileExists(unrelated) || !fileExists(filepath.Join(dir, FormatFile)) {
		t.Fatalf("DeleteAll removed files it does not own")
	}

	// idempotent
	if err := s.DeleteAll(); err != nil {
		t.Fatalf("delete all on empty root: %s", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestFileStoreScan(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, JSONCodec{}, nil)
	if err != nil {
		t.Fatalf("new store: %s", err)
	}
	for k := 0; k < 3; k++ {
		if err := s.Save(k, group(2, 0)); err != nil {
			t.Fatalf("save %d: %s", k, err)
		}
	}
	if n, err := s.Scan(); err != nil || n != 3 {
		t.Fatalf("scan: got %d, %v", n, err)
	}
	// a hole stops the count: only consecutive chunks from 0 are trusted
	if err := os.Remove(s.Path(1)); err != nil {
		t.Fatalf("remove: %s", err)
	}
	if n, err := s.Scan(); err != nil || n != 1 {
		t.Fatalf("scan with hole: got %d, %v", n, err)
	}
}

func TestFileStoreUnknownCompressor(t *testing.T) {
	if _, err := NewFileStore(t.TempDir(), JSONCodec{}, &StoreConfig{Compress: "snappy"}); err == nil {
		t.Fatalf("expected unknown compressor to be rejected")
	}
}

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	if f, err := LoadFormat(dir); err != nil || f != nil {
		t.Fatalf("unformatted root: got %v, %v", f, err)
	}
	want := &Format{UUID: "u-1", ChunkSize: 10, Compression: "lz4", Encrypted: true, Version: FormatVersion}
	if err := StoreFormat(dir, want); err != nil {
		t.Fatalf("store format: %s", err)
	}
	got, err := LoadFormat(dir)
	if err != nil {
		t.Fatalf("load format: %s", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("format mismatch: got %+v", got)
	}

	if err := got.CheckConfig(10, "lz4", true); err != nil {
		t.Fatalf("matching config rejected: %s", err)
	}
	if err := got.CheckConfig(20, "lz4", true); err == nil {
		t.Fatalf("chunk size mismatch accepted")
	}
	if err := got.CheckConfig(10, "zstd", true); err == nil {
		t.Fatalf("compression mismatch accepted")
	}
	if err := got.CheckConfig(10, "lz4", false); err == nil {
		t.Fatalf("encryption mismatch accepted")
	}
}

func TestEncryptor(t *testing.T) {
	e := NewAESEncryptor("passphrase")
	plain := []byte("chunk payload")
	blob, err := e.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}
	got, err := e.Decrypt(blob)
	if err != nil {
		t.Fatalf("decrypt: %s", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("round trip mismatch: %q", got)
	}
	blob[len(blob)-1] ^= 0xff
	if _, err := e.Decrypt(blob); err == nil {
		t.Fatalf("expected tampered blob to fail")
	}
}
