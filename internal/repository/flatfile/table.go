// Package flatfile implements the repository interfaces over delimited text files.
package flatfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/codec"
	"github.com/and161185/marketstore/internal/metrics"
)

// maxLine bounds a single record line.
const maxLine = 4 << 20

// Table is one text file holding one record per line.
type Table[T any] struct {
	path    string
	codec   codec.Codec[T]
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewTable constructs a table over path.
func NewTable[T any](path string, c codec.Codec[T], log *zap.Logger, m *metrics.Metrics) *Table[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table[T]{path: path, codec: c, log: log.With(zap.String("kind", c.Kind()), zap.String("path", path)), metrics: m}
}

// Path returns the backing file path.
func (t *Table[T]) Path() string { return t.path }

// ReadAll decodes every line in file order. A missing file is an empty table.
// Malformed lines are skipped and logged; blank lines are ignored.
func (t *Table[T]) ReadAll(ctx context.Context) (items []T, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer t.metrics.Since("read_"+t.codec.Kind(), time.Now())

	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		t.log.Info("file absent, empty collection")
		return nil, nil
	}
	if err != nil {
		t.metrics.IOError(t.codec.Kind(), "read")
		t.log.Error("open for read", zap.Error(err))
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	var lineNo, skipped int
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, derr := t.codec.Decode(line)
		if derr != nil {
			skipped++
			t.metrics.Skipped(t.codec.Kind())
			t.log.Warn("skipping malformed record", zap.Int("line", lineNo), zap.Error(derr))
			continue
		}
		items = append(items, v)
	}
	if err := sc.Err(); err != nil {
		t.metrics.IOError(t.codec.Kind(), "read")
		t.log.Error("read failed", zap.Int("line", lineNo), zap.Error(err))
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	t.metrics.Read(t.codec.Kind(), len(items))
	t.log.Info("records read", zap.Int("count", len(items)), zap.Int("skipped", skipped))
	return items, nil
}

// WriteAll replaces the file with one encoded line per item, in order.
// Every item is encoded before the file is touched.
func (t *Table[T]) WriteAll(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := t.Encode(items)
	if err != nil {
		return err
	}
	return t.Replace(ctx, content)
}

// Encode renders items as the full file content without touching the file.
func (t *Table[T]) Encode(items []T) (Content, error) {
	var buf bytes.Buffer
	for i, it := range items {
		line, err := t.codec.Encode(it)
		if err != nil {
			t.log.Error("encode failed, file left unchanged", zap.Int("index", i), zap.Error(err))
			return Content{}, fmt.Errorf("%s[%d]: %w", t.codec.Kind(), i, err)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return Content{data: buf.Bytes(), count: len(items)}, nil
}

// Content is an encoded table ready to be written.
type Content struct {
	data  []byte
	count int
}

// Replace writes content to a temporary sibling and renames it over the file.
func (t *Table[T]) Replace(ctx context.Context, content Content) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer t.metrics.Since("write_"+t.codec.Kind(), time.Now())

	defer func() {
		if err != nil {
			t.metrics.IOError(t.codec.Kind(), "write")
			t.log.Error("write failed", zap.Error(err))
		}
	}()

	dir := filepath.Dir(t.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", t.path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content.data); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("rename onto %s: %w", t.path, err)
	}

	t.metrics.Wrote(t.codec.Kind())
	t.log.Info("file rewritten", zap.Int("count", content.count))
	return nil
}

// Append adds one encoded line at the end of the file, creating it if needed.
func (t *Table[T]) Append(ctx context.Context, item T) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := t.codec.Encode(item)
	if err != nil {
		t.log.Error("encode failed, nothing appended", zap.Error(err))
		return fmt.Errorf("%s: %w", t.codec.Kind(), err)
	}

	defer func() {
		if err != nil {
			t.metrics.IOError(t.codec.Kind(), "append")
			t.log.Error("append failed", zap.Error(err))
		}
	}()

	if err = os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", t.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if _, err = f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append %s: %w", t.path, err)
	}

	t.metrics.Wrote(t.codec.Kind())
	t.log.Info("record appended")
	return nil
}
