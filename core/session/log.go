// Package session keeps per-character statistics for one training session
// and exports the raw results as CSV.
package session

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	fileNameLayout  = "20060102_150405"
)

var csvHeader = []string{"timestamp", "expected", "typed", "correct", "speed", "prob"}

type Entry struct {
	Timestamp time.Time
	Expected  rune
	Typed     rune
	Correct   bool
	Speed     int
	Prob      int
}

type charStats struct {
	correct int
	wrong   int
}

// Log is safe for concurrent use.
type Log struct {
	now func() time.Time

	mu      sync.Mutex
	stats   map[rune]*charStats
	entries []Entry
	started time.Time
}

type Option func(*Log)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func NewLog(opts ...Option) *Log {
	l := &Log{
		now:   time.Now,
		stats: map[rune]*charStats{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.started = l.now()
	return l
}

// Start clears all statistics and restarts the session clock.
func (l *Log) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.stats)
	l.entries = nil
	l.started = l.now()
}

func (l *Log) Record(expected, typed rune, correct bool, wpm, prob int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, Entry{
		Timestamp: l.now(),
		Expected:  expected,
		Typed:     typed,
		Correct:   correct,
		Speed:     wpm,
		Prob:      prob,
	})

	key := unicode.ToUpper(expected)
	stats, ok := l.stats[key]
	if !ok {
		stats = &charStats{}
		l.stats[key] = stats
	}
	if correct {
		stats.correct++
	} else {
		stats.wrong++
	}
}

func (l *Log) Correct() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, s := range l.stats {
		total += s.correct
	}
	return total
}

func (l *Log) Wrong() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, s := range l.stats {
		total += s.wrong
	}
	return total
}

// Accuracy returns the percentage of correct results, or 0 with no results.
func (l *Log) Accuracy() float64 {
	correct, wrong := l.Correct(), l.Wrong()
	if correct+wrong == 0 {
		return 0
	}
	return float64(correct) * 100 / float64(correct+wrong)
}

// Weakest lists up to n characters with the most errors, as "R ×3, S ×2",
// or "None" when nothing was missed.
func (l *Log) Weakest(n int) string {
	l.mu.Lock()
	type missed struct {
		char  rune
		wrong int
	}
	var chars []missed
	for char, s := range l.stats {
		if s.wrong > 0 {
			chars = append(chars, missed{char, s.wrong})
		}
	}
	l.mu.Unlock()

	slices.SortFunc(chars, func(a, b missed) int {
		if c := cmp.Compare(b.wrong, a.wrong); c != 0 {
			return c
		}
		return cmp.Compare(a.char, b.char)
	})

	if len(chars) == 0 || n <= 0 {
		return "None"
	}

	parts := make([]string, 0, n)
	for _, c := range chars[:min(n, len(chars))] {
		parts = append(parts, fmt.Sprintf("%c ×%d", c.char, c.wrong))
	}
	return strings.Join(parts, ", ")
}

// Elapsed returns the time since Start as MM:SS.
func (l *Log) Elapsed() string {
	l.mu.Lock()
	started := l.started
	l.mu.Unlock()

	secs := int(l.now().Sub(started) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func (l *Log) HasEntries() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries) > 0
}

func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

func (l *Log) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, e := range l.Entries() {
		if err := cw.Write([]string{
			e.Timestamp.Format(timestampLayout),
			string(e.Expected),
			string(e.Typed),
			strconv.FormatBool(e.Correct),
			strconv.Itoa(e.Speed),
			strconv.Itoa(e.Prob),
		}); err != nil {
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFile writes the log to morse_session_YYYYMMDD_HHMMSS.csv in dir and
// returns the file's path.
func (l *Log) ExportFile(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, "morse_session_"+l.now().Format(fileNameLayout)+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create session file: %w", err)
	}

	if err := l.ExportCSV(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close session file: %w", err)
	}
	return path, nil
}
