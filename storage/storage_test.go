package storage

import (
	"context"
	"errors"
	"testing"
)

func testKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: expected ErrNotFound, got %v", err)
	}

	if err := kv.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("get = %q, %v", got, err)
	}

	if err := kv.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _ = kv.Get(ctx, "k")
	if string(got) != "v2" {
		t.Fatalf("after overwrite = %q", got)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: expected ErrNotFound, got %v", err)
	}

	// 重复删除不报错
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("double delete failed: %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	testKV(t, NewMemory())
}

func TestFileStoreKV(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	testKV(t, fs)
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	// 键里的分隔符不能逃出数据目录
	if err := fs.Put(ctx, "whois:example.com", []byte("a")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := fs.Put(ctx, "notify:example.com", []byte("b")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := fs.Get(ctx, "whois:example.com")
	if err != nil || string(got) != "a" {
		t.Fatalf("get = %q, %v", got, err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	src := []byte("original")
	if err := m.Put(ctx, "k", src); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	src[0] = 'X'

	got, _ := m.Get(ctx, "k")
	if string(got) != "original" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
	got[0] = 'Y'

	again, _ := m.Get(ctx, "k")
	if string(again) != "original" {
		t.Fatalf("returned value aliased store: %q", again)
	}
}
