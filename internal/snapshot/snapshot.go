// Package snapshot writes and reads whole-collection exports in binary (BSON),
// XML or YAML form. Snapshots are never the source of truth; the text records are.
package snapshot

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/metrics"
)

// Format selects the snapshot encoding.
type Format string

const (
	FormatBinary Format = "binary"
	FormatXML    Format = "xml"
	FormatYAML   Format = "yaml"
)

// Formats lists every supported format.
func Formats() []Format { return []Format{FormatBinary, FormatXML, FormatYAML} }

// ParseFormat accepts a format name ("bin" is an alias of binary).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "bin", "bson":
		return FormatBinary, nil
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", errs.ErrUnknownFormat, s)
}

func (f Format) keySuffix() string {
	switch f {
	case FormatBinary:
		return "BIN"
	case FormatXML:
		return "XML"
	case FormatYAML:
		return "YAML"
	}
	return ""
}

// Kind names an exported collection.
type Kind string

const (
	KindSellers  Kind = "sellers"
	KindProducts Kind = "products"
	KindRequests Kind = "requests"
)

// PathSource resolves configuration keys such as SELLERS_XML.
type PathSource interface {
	Require(key string) (string, error)
}

type envelope[T any] struct {
	XMLName    xml.Name  `bson:"-" yaml:"-"`
	Kind       string    `bson:"kind" xml:"kind,attr" yaml:"kind"`
	ExportedAt time.Time `bson:"exported_at" xml:"exportedAt,attr" yaml:"exported_at"`
	Items      []T       `bson:"items" xml:"item" yaml:"items"`
}

// Exporter writes collections to the paths configured per (kind, format).
type Exporter struct {
	paths   PathSource
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExporter constructs an exporter.
func NewExporter(paths PathSource, log *zap.Logger, m *metrics.Metrics) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{paths: paths, log: log, metrics: m, now: time.Now}
}

// Path returns the configured file for kind in format f.
func (e *Exporter) Path(kind Kind, f Format) (string, error) {
	suffix := f.keySuffix()
	if suffix == "" {
		return "", fmt.Errorf("%w: %q", errs.ErrUnknownFormat, f)
	}
	return e.paths.Require(strings.ToUpper(string(kind)) + "_" + suffix)
}

// ExportSellers writes sellers in format f.
func (e *Exporter) ExportSellers(ctx context.Context, f Format, docs []SellerDoc) error {
	return export(ctx, e, KindSellers, f, docs)
}

// ExportProducts writes products in format f.
func (e *Exporter) ExportProducts(ctx context.Context, f Format, docs []ProductDoc) error {
	return export(ctx, e, KindProducts, f, docs)
}

// ExportRequests writes requests in format f.
func (e *Exporter) ExportRequests(ctx context.Context, f Format, docs []RequestDoc) error {
	return export(ctx, e, KindRequests, f, docs)
}

// ImportSellers reads a sellers snapshot in format f.
func (e *Exporter) ImportSellers(ctx context.Context, f Format) ([]SellerDoc, error) {
	return load[SellerDoc](ctx, e, KindSellers, f)
}

// ImportProducts reads a products snapshot in format f.
func (e *Exporter) ImportProducts(ctx context.Context, f Format) ([]ProductDoc, error) {
	return load[ProductDoc](ctx, e, KindProducts, f)
}

// ImportRequests reads a requests snapshot in format f.
func (e *Exporter) ImportRequests(ctx context.Context, f Format) ([]RequestDoc, error) {
	return load[RequestDoc](ctx, e, KindRequests, f)
}

// export skips empty collections, leaving any previous snapshot in place.
func export[T any](ctx context.Context, e *Exporter, kind Kind, f Format, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := e.log.With(zap.String("kind", string(kind)), zap.String("format", string(f)))
	if len(items) == 0 {
		log.Warn("empty collection, snapshot skipped")
		return nil
	}
	path, err := e.Path(kind, f)
	if err != nil {
		log.Error("snapshot path", zap.Error(err))
		return err
	}

	env := envelope[T]{
		XMLName:    xml.Name{Local: string(kind)},
		Kind:       string(kind),
		ExportedAt: e.now().UTC().Truncate(time.Millisecond),
		Items:      items,
	}
	b, err := marshal(f, env)
	if err != nil {
		log.Error("snapshot encode", zap.Error(err))
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		log.Error("snapshot write", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("write %s: %w", path, err)
	}
	e.metrics.Exported(string(kind), string(f))
	log.Info("snapshot written", zap.String("path", path), zap.Int("count", len(items)))
	return nil
}

func load[T any](ctx context.Context, e *Exporter, kind Kind, f Format) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := e.log.With(zap.String("kind", string(kind)), zap.String("format", string(f)))
	path, err := e.Path(kind, f)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Error("snapshot read", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var env envelope[T]
	if err := unmarshal(f, b, &env); err != nil {
		log.Error("snapshot decode", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Kind != string(kind) {
		return nil, fmt.Errorf("%s holds %q, want %q", path, env.Kind, kind)
	}
	log.Info("snapshot read", zap.String("path", path), zap.Int("count", len(env.Items)))
	return env.Items, nil
}

func marshal(f Format, v any) ([]byte, error) {
	switch f {
	case FormatBinary:
		return bson.Marshal(v)
	case FormatXML:
		b, err := xml.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append([]byte(xml.Header), append(b, '\n')...), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownFormat, f)
}

func unmarshal(f Format, b []byte, v any) error {
	switch f {
	case FormatBinary:
		return bson.Unmarshal(b, v)
	case FormatXML:
		return xml.Unmarshal(b, v)
	case FormatYAML:
		return yaml.Unmarshal(b, v)
	}
	return fmt.Errorf("%w: %q", errs.ErrUnknownFormat, f)
}
