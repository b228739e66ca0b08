package activity

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/filex"
)

// FileSink appends events to a text file. The file is opened and closed on
// every Record call, so no handle outlives a single write.
type FileSink struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, now: time.Now}
}

// Path is the log file location.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Record(ctx context.Context, username, action string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line := Event{Time: s.now(), UserName: username, Action: action}.String() + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := filex.EnsureParentDir(s.path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return nil
}

// tailPrealloc bounds the initial buffer of Tail; n comes from user input.
const tailPrealloc = 256

// Tail returns the last n events of the log at path, oldest first. A
// non-empty username keeps only that user's events. Malformed lines are
// skipped and a missing file yields an empty result.
func Tail(path string, n int, username string) ([]Event, error) {
	if n <= 0 {
		return []Event{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	defer f.Close()

	ring := make([]Event, 0, min(n, tailPrealloc))
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ev, err := ParseLine(sc.Text())
		if err != nil {
			continue
		}
		if username != "" && ev.UserName != username {
			continue
		}
		if len(ring) == n {
			copy(ring, ring[1:])
			ring = ring[:n-1]
		}
		ring = append(ring, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	return ring, nil
}
