package datasets

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Column names accepted in CSV manifests, in order of preference.
var (
	imageColumns  = []string{"image", "image_path", "img"}
	targetColumns = []string{"target", "target_path", "saliency", "mask"}
	textColumns   = []string{"text", "prompt", "caption", "description"}
)

// LoadManifest reads entries from a manifest file. Files ending in .json are
// read with ReadEntriesJSON; anything else is parsed as CSV with a header
// naming image, target and text columns. In both formats relative paths are
// resolved against the manifest's directory.
func LoadManifest(path string) ([]Entry, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		entries, err := ReadEntriesJSON(path)
		if err != nil {
			return nil, err
		}
		baseDir := filepath.Dir(path)
		for i := range entries {
			entries[i].ImagePath = resolvePath(baseDir, entries[i].ImagePath)
			entries[i].TargetPath = resolvePath(baseDir, entries[i].TargetPath)
		}
		return entries, nil
	}
	return loadCSVManifest(path)
}

func loadCSVManifest(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	imageIdx, err := findColumn(colIndex, imageColumns)
	if err != nil {
		return nil, err
	}
	targetIdx, err := findColumn(colIndex, targetColumns)
	if err != nil {
		return nil, err
	}
	textIdx, err := findColumn(colIndex, textColumns)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	var entries []Entry
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		entries = append(entries, Entry{
			ImagePath:  resolvePath(baseDir, strings.TrimSpace(record[imageIdx])),
			TargetPath: resolvePath(baseDir, strings.TrimSpace(record[targetIdx])),
			Text:       record[textIdx],
		})
	}
	return entries, nil
}

func findColumn(colIndex map[string]int, names []string) (int, error) {
	for _, name := range names {
		if idx, ok := colIndex[name]; ok {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("required column %q not found in manifest", names[0])
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || Scheme(p) != "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// ReadEntriesJSON reads a JSON list of entries, as written by WriteEntriesJSON.
// Paths are returned as stored.
func ReadEntriesJSON(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return entries, nil
}

// WriteEntriesJSON writes entries as a JSON list. The file is written to a
// temporary name in the same directory and renamed into place.
func WriteEntriesJSON(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return writeFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeFileAtomic creates the parent directory, writes through fn into a
// temporary file and renames it to path.
func writeFileAtomic(path string, fn func(w io.Writer) error) error {
	if path == "" {
		return fmt.Errorf("empty output path")
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	if err := fn(tmpFile); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}
