package gcs

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleWords(n int) []string {
	words := make([]string, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, fmt.Sprintf("password%d", i))
	}
	return words
}

// buildFile writes a GCS file built from content into a temp dir.
func buildFile(t *testing.T, content string, format Format, probability, granularity uint64) string {
	t.Helper()
	var out bytes.Buffer
	builder := NewBuilder(strings.NewReader(content), &out, format, probability, granularity)
	if err := builder.Process(); err != nil {
		t.Fatalf("Should not fail processing input: %s", err)
	}

	name := filepath.Join(t.TempDir(), "sample.gcs")
	if err := os.WriteFile(name, out.Bytes(), 0o644); err != nil {
		t.Fatalf("Should not fail writing file: %s", err)
	}
	return name
}

func TestBuilder_Footer(t *testing.T) {
	words := sampleWords(103)
	var out bytes.Buffer
	builder := NewBuilder(strings.NewReader(strings.Join(words, "\n")), &out, Plain, 1<<20, 16)
	if err := builder.Process(); err != nil {
		t.Fatalf("Should not fail processing input: %s", err)
	}

	data := out.Bytes()
	if len(data) < footerSize {
		t.Fatalf("There should be data written")
	}

	footer := data[len(data)-footerSize:]
	if num := binary.BigEndian.Uint64(footer[0:8]); num != 103 {
		t.Errorf("GCS should have %d items, have %d", 103, num)
	}
	if p := binary.BigEndian.Uint64(footer[8:16]); p != 1<<20 {
		t.Errorf("GCS should have probability %d, have %d", 1<<20, p)
	}

	endOfData := binary.BigEndian.Uint64(footer[16:24])
	indexLen := binary.BigEndian.Uint64(footer[24:32])
	if indexLen != 6 {
		t.Errorf("GCS should have index length %d, have %d", 6, indexLen)
	}
	if endOfData+indexLen*16+footerSize != uint64(len(data)) {
		t.Errorf("End of data %d does not match the file size %d", endOfData, len(data))
	}
	if string(footer[32:]) != gcsMagic {
		t.Errorf("Should end with the GCS magic")
	}
}

func TestBuilder_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := NewBuilder(strings.NewReader("\n\n"), &out, Plain, 100, 16).Process(); err == nil {
		t.Errorf("Should fail without entries")
	}
	if err := NewBuilder(strings.NewReader("a"), &out, Plain, 1, 16).Process(); err == nil {
		t.Errorf("Should fail with probability 1")
	}
}

func TestReader(t *testing.T) {
	words := sampleWords(500)
	for _, granularity := range []uint64{0, 1, 7, 64, 1024} {
		name := buildFile(t, strings.Join(words, "\r\n"), Plain, 1<<20, granularity)

		reader := NewReader(name)
		if err := reader.Initialize(); err != nil {
			t.Fatalf("Should not fail: %s", err)
		}
		if reader.Len() != 500 {
			t.Errorf("Reader should have 500 items, has %d", reader.Len())
		}

		for _, w := range words {
			exists, err := reader.Exists(Key(w))
			if err != nil {
				t.Fatalf("Should not fail: %s", err)
			}
			if !exists {
				t.Errorf("%q should be on file (granularity %d)", w, granularity)
			}
		}

		for _, w := range []string{"1mag@saG(@31*sasd.", "correct horse battery staple", "password-1"} {
			exists, err := reader.Exists(Key(w))
			if err != nil {
				t.Fatalf("Should not fail: %s", err)
			}
			if exists {
				t.Errorf("%q should not be on file", w)
			}
		}
	}
}

func TestReader_HIBP(t *testing.T) {
	words := []string{"password", "123456", "qwerty", "letmein"}
	var sb strings.Builder
	for i, w := range words {
		sum := sha1.Sum([]byte(w))
		sb.WriteString(fmt.Sprintf("%s:%d\r\n", strings.ToUpper(hex.EncodeToString(sum[:])), i+1))
	}
	sb.WriteString("garbage\r\n")

	reader := NewReader(buildFile(t, sb.String(), HIBP, 1<<16, 2))
	if err := reader.Initialize(); err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	for _, w := range words {
		if exists, err := reader.Exists(Key(w)); err != nil || !exists {
			t.Errorf("%q should be on file (err: %v)", w, err)
		}
	}
	if exists, _ := reader.Exists(Key("1mag@saG(@31*sasd.")); exists {
		t.Errorf("Password should not be on file")
	}
}

func TestReader_InvalidFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(name, []byte(strings.Repeat("password\n", 20)), 0o644); err != nil {
		t.Fatalf("Should not fail writing file: %s", err)
	}

	if err := NewReader(name).Initialize(); err == nil {
		t.Errorf("Should fail on a plain text file")
	}
	if err := NewReader(filepath.Join(t.TempDir(), "missing.gcs")).Initialize(); err == nil {
		t.Errorf("Should fail on a missing file")
	}
}

func TestKeyFromHex(t *testing.T) {
	sum := sha1.Sum([]byte("password"))
	key, err := KeyFromHex(strings.ToUpper(hex.EncodeToString(sum[:])))
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}
	if key != Key("password") {
		t.Errorf("KeyFromHex and Key should agree: %x != %x", key, Key("password"))
	}

	if _, err = KeyFromHex("abc"); err == nil {
		t.Errorf("Should fail on short hashes")
	}
	if _, err = KeyFromHex("zzzzzzzzzzzzzzzzzzzz"); err == nil {
		t.Errorf("Should fail on non hex input")
	}
}

func TestBuilder_ExpectLines(t *testing.T) {
	words := sampleWords(50)
	var out bytes.Buffer
	builder := NewBuilder(strings.NewReader(strings.Join(words, "\n")), &out, Plain, 1<<20, 8).ExpectLines(50)
	if cap(builder.values) < 50 {
		t.Errorf("Builder should reserve room for 50 keys, has %d", cap(builder.values))
	}
	if err := builder.Process(); err != nil {
		t.Fatalf("Should not fail processing input: %s", err)
	}

	footer := out.Bytes()[out.Len()-footerSize:]
	if num := binary.BigEndian.Uint64(footer[0:8]); num != 50 {
		t.Errorf("GCS should have %d items, have %d", 50, num)
	}
}

func TestEstimateLines(t *testing.T) {
	name := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(name, []byte(strings.Join(sampleWords(1000), "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("Should not fail writing file: %s", err)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatalf("Should not fail opening file: %s", err)
	}
	defer f.Close()

	if lines := EstimateLines(f); lines != 1000 {
		t.Errorf("Small files are read whole, estimated %d lines, want 1000", lines)
	}
	if pos, _ := f.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("File should be rewound, is at %d", pos)
	}
}
