// Package capture turns a stream of image frames into attendance check-ins.
package capture

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Frame is one captured image.
type Frame struct {
	Path       string
	Data       []byte
	CapturedAt time.Time
}

var frameExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

func isFrameFile(name string) bool {
	return slices.Contains(frameExtensions, strings.ToLower(filepath.Ext(name)))
}

// DirSource reads frames from image files in a directory, in name order.
// With a positive PollInterval it keeps watching for new files until the
// context is cancelled.
type DirSource struct {
	Dir          string
	PollInterval time.Duration
}

// Frames yields every frame file once. A cancelled context ends the sequence
// without an error; an unreadable file is yielded as an error and skipped.
func (s DirSource) Frames(ctx context.Context) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		seen := make(map[string]struct{})
		var ticker *time.Ticker
		if s.PollInterval > 0 {
			ticker = time.NewTicker(s.PollInterval)
			defer ticker.Stop()
		}

		for {
			names, err := s.list()
			if err != nil {
				yield(Frame{}, err)
				return
			}

			for _, name := range names {
				if ctx.Err() != nil {
					return
				}
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}

				frame, err := s.read(name)
				if !yield(frame, err) {
					return
				}
			}

			if ticker == nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}

func (s DirSource) list() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && isFrameFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s DirSource) read(name string) (Frame, error) {
	path := filepath.Join(s.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{Path: path}, fmt.Errorf("read frame %s: %w", name, err)
	}

	capturedAt := time.Now().UTC()
	if info, err := os.Stat(path); err == nil {
		capturedAt = info.ModTime().UTC()
	}
	return Frame{Path: path, Data: data, CapturedAt: capturedAt}, nil
}
