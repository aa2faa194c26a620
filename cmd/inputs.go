package cmd

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"scrimtally/internal/extract"
	"scrimtally/internal/storage"
)

// openStorage opens the database at dbPath, creating its directory first.
func openStorage() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// newExtractClient builds a client for the extraction service from the
// environment. The API key may also live in ~/.scrimtally/ocr_key.
func newExtractClient() (*extract.Client, error) {
	baseURL := os.Getenv("SCRIMTALLY_OCR_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("extraction service not configured: set SCRIMTALLY_OCR_URL")
	}
	return extract.NewClient(strings.TrimSuffix(baseURL, "/"), loadOCRKey()), nil
}

// loadOCRKey returns the extraction service API key from the
// SCRIMTALLY_OCR_KEY environment variable or ~/.scrimtally/ocr_key.
func loadOCRKey() string {
	if v := os.Getenv("SCRIMTALLY_OCR_KEY"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(home, ".scrimtally", "ocr_key"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readPayloadFile reads one extraction payload dump (handling gzip or zstd
// by extension). Dumps let a run be replayed offline without re-calling the
// extraction service.
func readPayloadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var src io.Reader = f
	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("zstd %s: %w", path, err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		src = gz
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return buf.String(), nil
}
