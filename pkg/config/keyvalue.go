// Package config handles the run configuration and the author mapping.
//
// Both are persisted as newline-delimited key=value text.
package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/oneconcern/vcsmigrate/pkg/config/status"
)

// Parse key=value lines.
//
// Empty lines, lines starting with '#' and lines without '=' are ignored. Keys and values are
// split at the first '=' and trimmed. The last occurrence of a key wins.
func Parse(r io.Reader) (map[string]string, error) {
	pairs := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pos := strings.IndexByte(line, '=')
		if pos < 0 {
			continue
		}
		key := strings.TrimSpace(line[:pos])
		if key == "" {
			continue
		}
		pairs[key] = strings.TrimSpace(line[pos+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, status.ErrConfigIO.Wrap(err)
	}
	return pairs, nil
}

// Serialize key=value pairs, sorted by key
func Serialize(w io.Writer, pairs map[string]string) error {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bw := bufio.NewWriter(w)
	for _, k := range keys {
		if _, err := bw.WriteString(k + "=" + pairs[k] + "\n"); err != nil {
			return status.ErrConfigIO.Wrap(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return status.ErrConfigIO.Wrap(err)
	}
	return nil
}

// ReadFile parses a key=value file
func ReadFile(fs afero.Fs, pth string) (pairs map[string]string, err error) {
	f, err := fs.Open(pth)
	if err != nil {
		return nil, status.ErrConfigIO.Wrap(err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return Parse(f)
}

// WriteFile serializes key=value pairs to a file, replacing any prior content
func WriteFile(fs afero.Fs, pth string, pairs map[string]string) (err error) {
	if err = fs.MkdirAll(filepath.Dir(pth), 0755); err != nil {
		return status.ErrConfigIO.Wrap(err)
	}
	f, err := fs.OpenFile(pth, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return status.ErrConfigIO.Wrap(err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return Serialize(f, pairs)
}
