package keybench

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	DefaultRowCount  = 1_000_000
	DefaultBatchSize = 10_000
	ValueSize        = 1024
)

var (
	ErrDataFileMissing = errors.New("data file not found")
	ErrNotEnoughKeys   = errors.New("not enough keys in data file")
)

// Result is the outcome of one run.
type Result struct {
	// Available is the number of keys in the data file before the run.
	Available int
	Rows      int
	Bytes     int
	Elapsed   time.Duration
}

// Bench runs insert and select benchmarks against a [Store].
type Bench struct {
	store     Store
	fs        afero.Fs
	rand      *rand.Rand
	logger    *slog.Logger
	dataDir   string
	batchSize int
}

type Option func(*Bench)

// WithFileSystem sets where data files are kept. Defaults to the OS.
func WithFileSystem(fs afero.Fs) Option {
	return func(b *Bench) {
		b.fs = fs
	}
}

func WithDataDir(dir string) Option {
	return func(b *Bench) {
		b.dataDir = dir
	}
}

func WithBatchSize(n int) Option {
	return func(b *Bench) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithRand sets the source for values and select samples.
func WithRand(r *rand.Rand) Option {
	return func(b *Bench) {
		b.rand = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bench) {
		b.logger = l
	}
}

func New(store Store, opts ...Option) *Bench {
	b := &Bench{
		store:     store,
		fs:        afero.NewOsFs(),
		dataDir:   ".",
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.rand == nil {
		b.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Benchmark data.
	}

	return b
}

// DataFile returns the path of the key file for kt.
func (b *Bench) DataFile(kt KeyType) string {
	return filepath.Join(b.dataDir, kt.Name+".csv")
}

// Insert inserts rows new rows in batches and appends their keys to the
// data file. Keys are flushed to the file before each batch is sent.
func (b *Bench) Insert(ctx context.Context, kt KeyType, rows int) (*Result, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRowCount, rows)
	}

	err := b.store.CreateTable(ctx, kt)
	if err != nil {
		return nil, err
	}

	keys, err := b.readKeys(kt, false)
	if err != nil {
		return nil, err
	}

	res := &Result{Available: len(keys)}
	gen := kt.NewGenerator(int64(len(keys)))

	err = b.fs.MkdirAll(b.dataDir, 0o750)
	if err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	f, err := b.fs.OpenFile(b.DataFile(kt), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	batch := make([]Row, 0, min(rows, b.batchSize))

	for i := range rows {
		key, err := gen()
		if err != nil {
			return res, err
		}

		_, err = w.WriteString(key + "\n")
		if err != nil {
			return res, fmt.Errorf("write data file: %w", err)
		}

		batch = append(batch, Row{Key: key, Value: b.value()})

		if len(batch) < b.batchSize && i < rows-1 {
			continue
		}

		err = w.Flush()
		if err != nil {
			return res, fmt.Errorf("write data file: %w", err)
		}

		start := time.Now()
		err = b.store.InsertBatch(ctx, kt, batch)
		res.Elapsed += time.Since(start)

		if err != nil {
			return res, err
		}

		res.Rows += len(batch)
		res.Bytes += len(batch) * ValueSize
		batch = batch[:0]

		b.logger.Debug("inserted batch",
			slog.String("key_type", kt.Name),
			slog.Int("rows", res.Rows),
		)
	}

	err = f.Close()
	if err != nil {
		return res, fmt.Errorf("close data file: %w", err)
	}

	return res, nil
}

// Select looks up rows distinct keys sampled from the data file. Keys are
// queried in file order.
func (b *Bench) Select(ctx context.Context, kt KeyType, rows int) (*Result, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRowCount, rows)
	}

	keys, err := b.readKeys(kt, true)
	if err != nil {
		return nil, err
	}

	res := &Result{Available: len(keys)}
	if rows > len(keys) {
		return res, fmt.Errorf("%w: want %d, %s has %d", ErrNotEnoughKeys, rows, b.DataFile(kt), len(keys))
	}

	sample := b.rand.Perm(len(keys))[:rows]
	slices.Sort(sample)

	b.logger.Debug("selecting keys",
		slog.String("key_type", kt.Name),
		slog.Int("available", len(keys)),
		slog.Int("rows", rows),
	)

	for _, i := range sample {
		start := time.Now()
		n, err := b.store.Select(ctx, kt, keys[i])
		res.Elapsed += time.Since(start)

		if err != nil {
			return res, err
		}

		res.Rows++
		res.Bytes += n
	}

	return res, nil
}

// readKeys returns the keys in the data file. A missing file has no keys
// unless required is set.
func (b *Bench) readKeys(kt KeyType, required bool) ([]string, error) {
	path := b.DataFile(kt)

	data, err := afero.ReadFile(b.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		if required {
			return nil, fmt.Errorf("%w: %s", ErrDataFileMissing, path)
		}

		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var keys []string

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, err := kt.ParseKey(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
		}

		keys = append(keys, key)
	}

	return keys, nil
}

func (b *Bench) value() []byte {
	v := make([]byte, ValueSize)
	for i := range v {
		v[i] = byte(b.rand.Uint32())
	}

	return v
}
