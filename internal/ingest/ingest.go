package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog"

	"askhr/internal/domain"
)

// DefaultExtensions are the file types picked up when walking directories.
var DefaultExtensions = []string{".pdf", ".txt", ".md"}

// BuildDocuments extracts and chunks every upload, using the file name as
// source. Chunks keep upload order and per-file order. Extraction problems
// are logged and give empty text for that file; only chunker errors abort.
func BuildDocuments(uploads []domain.Upload, chunker domain.Chunker, logger zerolog.Logger) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for _, u := range uploads {
		text, err := Extract(u, logger)
		if err != nil {
			logger.Warn().Err(err).Str("file", u.Name).Msg("extraction failed, continuing")
		}
		chunks, err := chunker.Chunk(domain.Document{Source: u.Name, Text: text})
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", u.Name, err)
		}
		logger.Debug().Str("file", u.Name).Int("chunks", len(chunks)).Msg("document chunked")
		all = append(all, chunks...)
	}
	return all, nil
}

// ReadPaths loads files named by paths. Each path may be a file, a glob or a
// directory; directories are walked recursively and only files with one of
// the given extensions are kept. Files found in a directory are named by
// their slash-separated path below it, other files by their base name. Names
// shared by two different files fall back to the path as given.
func ReadPaths(paths []string, extensions []string) ([]domain.Upload, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	var files []namedFile
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !fi.IsDir() {
				files = append(files, namedFile{path: m, name: filepath.Base(m)})
				continue
			}
			found, err := walkDir(m, extensions)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no documents found")
	}
	taken := make(map[string]string, len(files))
	clash := make(map[string]bool)
	for _, f := range files {
		p := filepath.Clean(f.path)
		if prev, ok := taken[f.name]; ok && prev != p {
			clash[f.name] = true
		}
		taken[f.name] = p
	}
	uploads := make([]domain.Upload, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, err
		}
		name := f.name
		if clash[name] {
			name = filepath.ToSlash(filepath.Clean(f.path))
		}
		uploads = append(uploads, domain.Upload{Name: name, Data: data})
	}
	return uploads, nil
}

type namedFile struct {
	path string
	name string
}

func walkDir(root string, extensions []string) ([]namedFile, error) {
	var files []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if path != root && strings.HasPrefix(de.Name(), ".") {
					return godirwalk.SkipThis
				}
				return nil
			}
			if hasExtension(path, extensions) {
				files = append(files, path)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	named := make([]namedFile, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			rel = filepath.Base(f)
		}
		named = append(named, namedFile{path: f, name: filepath.ToSlash(rel)})
	}
	return named, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
