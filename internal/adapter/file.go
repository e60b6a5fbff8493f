package adapter

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileSource answers network queries from a directory of saved responses,
// one "<identifier>.tsv" file per single-identifier query. It is used for
// offline runs and demos.
type FileSource struct {
	dir     string
	linkFmt string
}

// NewFileSource creates a source over a directory
func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:     dir,
		linkFmt: "https://string-db.org/network/%s",
	}
}

// Name implements InteractionSource
func (f *FileSource) Name() string {
	return "file"
}

// Network implements InteractionSource. Multi-identifier queries concatenate
// the per-identifier files.
func (f *FileSource) Network(ctx context.Context, identifiers []string) ([]byte, error) {
	var out []byte
	for _, id := range identifiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(f.path(id))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read saved network for %s: %w", id, err)
		}
		out = append(out, data...)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			out = append(out, '\n')
		}
	}
	if len(out) == 0 {
		return nil, ErrNoResult
	}
	return out, nil
}

// Link implements InteractionSource
func (f *FileSource) Link(_ context.Context, identifiers []string) (string, error) {
	if len(identifiers) == 0 {
		return "", ErrNoResult
	}
	return fmt.Sprintf(f.linkFmt, url.PathEscape(strings.Join(identifiers, ","))), nil
}

func (f *FileSource) path(identifier string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, identifier)
	return filepath.Join(f.dir, name+".tsv")
}
