package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"msc/config"
	"msc/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func readerForEncoding(t *testing.T, data []byte, enc srcEncoding) *bytes.Reader {
	t.Helper()
	var encoded []byte
	switch enc {
	case encUnknown:
		encoded = data
	case encUTF8:
		encoded = append([]byte{0xEF, 0xBB, 0xBF}, data...)
	case encUTF16BigEndian:
		encoded = encodeWithTransformer(t, data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())
	case encUTF16LittleEndian:
		encoded = encodeWithTransformer(t, data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())
	case encUTF32BigEndian:
		encoded = encodeWithTransformer(t, data, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder())
	case encUTF32LittleEndian:
		encoded = encodeWithTransformer(t, data, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder())
	default:
		t.Fatalf("unsupported encoding: %v", enc)
	}
	return bytes.NewReader(encoded)
}

func encodeWithTransformer(t *testing.T, data []byte, encoder transform.Transformer) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoder)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("finalize encoded sample: %v", err)
	}
	return buf.Bytes()
}

// TestProcess_NonExistentPath tests process with non-existent path
func TestProcess_NonExistentPath(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	err := process(ctx, "/nonexistent/path/file.sik", "/tmp", logger)
	if err == nil {
		t.Fatal("Expected error for non-existent path, got nil")
	}
	expectedMsg := "input source was not found"
	if !strings.Contains(err.Error(), expectedMsg) {
		t.Errorf("Expected error containing '%s', got: %v", expectedMsg, err)
	}
}

// TestProcess_CancelledContext tests process with cancelled context
func TestProcess_CancelledContext(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cancel() // Cancel immediately

	tmpDir := t.TempDir()
	err := process(cancelCtx, tmpDir, tmpDir, logger)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

// TestProcess_Directory tests process with a directory
func TestProcess_Directory(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	dstDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.sik")
	if err := os.WriteFile(testFile, []byte(testManuscriptXML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	err := process(ctx, tmpDir, dstDir, logger)
	if err != nil {
		t.Errorf("process() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dstDir, "test.ps")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

// TestProcess_DirectoryWithTail tests process with directory path that has a tail
func TestProcess_DirectoryWithTail(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	// Create a directory with a tail (invalid case)
	invalidPath := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(invalidPath, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	// Add a non-existent tail to the directory path
	pathWithTail := filepath.Join(invalidPath, "nonexistent.sik")

	err := process(ctx, pathWithTail, tmpDir, logger)
	if err == nil {
		t.Fatal("Expected error for directory with tail, got nil")
	}
}

// TestProcess_SingleFile tests process with a single manuscript file
func TestProcess_SingleFile(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	dstDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "book.sik")
	if err := os.WriteFile(testFile, []byte(testManuscriptXML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	err := process(ctx, testFile, dstDir, logger)
	if err != nil {
		t.Errorf("process() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dstDir, "book.ps")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

// TestProcess_MarkdownFile tests process with a markdown source
func TestProcess_MarkdownFile(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	dstDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "story.md")
	if err := os.WriteFile(testFile, []byte(testMarkdownSource), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	err := process(ctx, testFile, dstDir, logger)
	if err != nil {
		t.Errorf("process() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dstDir, "story.ps")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func makeTestArchive(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	zipFile, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)
	for name, content := range entries {
		f, err := w.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Store,
		})
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatalf("Failed to write to zip: %v", err)
		}
	}
	w.Close()
	zipFile.Close()
}

// TestProcess_Archive tests process with a ZIP archive
func TestProcess_Archive(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	dstDir := t.TempDir()

	zipPath := filepath.Join(tmpDir, "books.zip")
	makeTestArchive(t, zipPath, map[string][]byte{
		"book.sik": []byte(testManuscriptXML),
	})

	err := process(ctx, zipPath, dstDir, logger)
	if err != nil {
		t.Errorf("process() error = %v", err)
	}
}

// TestProcess_ArchiveWithPath tests process with path inside archive
func TestProcess_ArchiveWithPath(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	dstDir := t.TempDir()

	zipPath := filepath.Join(tmpDir, "books.zip")
	makeTestArchive(t, zipPath, map[string][]byte{
		"subdir/book.sik": []byte(testManuscriptXML),
	})

	// Process with a path inside the archive
	pathInArchive := zipPath + string(filepath.Separator) + "subdir"
	err := process(ctx, pathInArchive, dstDir, logger)
	if err != nil {
		t.Errorf("process() error = %v", err)
	}
}

// TestProcess_UnrecognizedFile tests process with unrecognized input
func TestProcess_UnrecognizedFile(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("not a manuscript file"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	err := process(ctx, testFile, tmpDir, logger)
	if err == nil {
		t.Fatal("Expected error for unrecognized file, got nil")
	}
	expectedMsg := "input was not recognized as manuscript"
	if !strings.Contains(err.Error(), expectedMsg) {
		t.Errorf("Expected error containing '%s', got: %v", expectedMsg, err)
	}
}

// TestProcess_EmptyDirectory tests process with empty directory
func TestProcess_EmptyDirectory(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	dstDir := t.TempDir()

	err := process(ctx, tmpDir, dstDir, logger)
	if err != nil {
		t.Errorf("process() should handle empty directory, got error: %v", err)
	}
}

// TestProcessDir_EmptyDir tests processDir with empty directory
func TestProcessDir_EmptyDir(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()

	err := processDir(ctx, tmpDir, tmpDir, logger)
	if err != nil {
		t.Errorf("Expected no error for empty directory, got %v", err)
	}
}

// TestProcessDir_WithCancelledContext tests processDir with cancelled context
func TestProcessDir_WithCancelledContext(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.sik")
	if err := os.WriteFile(testFile, []byte(testManuscriptXML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	cancel() // Cancel context

	err := processDir(cancelCtx, tmpDir, tmpDir, logger)
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

// TestProcessBook tests processBook with different source encodings
func TestProcessBook(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	sample := []byte(testManuscriptXML)

	// Basic UTF-8 without BOM
	dst := t.TempDir()
	err := processBook(ctx, selectReader(readerForEncoding(t, sample, encUnknown), encUnknown), "book.sik", dst, formatManuscript, logger)
	if err != nil {
		t.Errorf("processBook() error = %v", err)
	}

	// Test with different encodings
	encodings := []srcEncoding{encUTF8, encUTF16BigEndian, encUTF16LittleEndian, encUTF32BigEndian, encUTF32LittleEndian}
	for i, enc := range encodings {
		testName := "encoding_" + string(rune('0'+i))
		t.Run(testName, func(t *testing.T) {
			dst := t.TempDir()
			err := processBook(ctx, selectReader(readerForEncoding(t, sample, enc), enc), "book.sik", dst, formatManuscript, logger)
			if err != nil {
				t.Errorf("processBook() with encoding %v error = %v", enc, err)
			}
		})
	}
}

// TestProcessBook_ForcedFormat tests that requested input format overrides detection
func TestProcessBook_ForcedFormat(t *testing.T) {
	ctx, env := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	env.From = config.InputFmtMarkdown
	defer func() { env.From = config.InputFmtAuto }()

	dst := t.TempDir()
	err := processBook(ctx, strings.NewReader(testMarkdownSource), "story.txt", dst, formatUnknown, logger)
	if err != nil {
		t.Errorf("processBook() with forced format error = %v", err)
	}
}

// TestProcessBook_ExistingOutput tests overwrite handling
func TestProcessBook_ExistingOutput(t *testing.T) {
	ctx, env := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	dst := t.TempDir()
	existing := filepath.Join(dst, "book.ps")
	if err := os.WriteFile(existing, []byte("old output"), 0644); err != nil {
		t.Fatalf("Failed to create existing output: %v", err)
	}

	env.Overwrite = false
	err := processBook(ctx, strings.NewReader(testManuscriptXML), "book.sik", dst, formatManuscript, logger)
	if err == nil {
		t.Fatal("Expected error for existing output, got nil")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %v", err)
	}

	env.Overwrite = true
	defer func() { env.Overwrite = false }()
	err = processBook(ctx, strings.NewReader(testManuscriptXML), "book.sik", dst, formatManuscript, logger)
	if err != nil {
		t.Errorf("processBook() with overwrite error = %v", err)
	}
}

// TestProcessBook_BadInput tests that malformed input surfaces an error
func TestProcessBook_BadInput(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	dst := t.TempDir()
	err := processBook(ctx, strings.NewReader("<wrongRoot/>"), "book.sik", dst, formatManuscript, logger)
	if err == nil {
		t.Fatal("Expected error for malformed input, got nil")
	}
}
