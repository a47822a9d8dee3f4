package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/marketstore/internal/config"
	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/metrics"
)

func newExporter(t *testing.T) (*Exporter, string, *metrics.Metrics) {
	t.Helper()
	dir := t.TempDir()
	values := map[string]string{}
	for _, kind := range []string{"SELLERS", "PRODUCTS", "REQUESTS"} {
		for _, ext := range []string{"BIN", "XML", "YAML"} {
			values[kind+"_"+ext] = filepath.Join(dir, strings.ToLower(kind+"."+ext))
		}
	}
	m := metrics.New(prometheus.NewRegistry())
	e := NewExporter(config.FromMap(values), zaptest.NewLogger(t), m)
	e.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e, dir, m
}

func sellers() []SellerDoc {
	return []SellerDoc{
		{ID: "S1", Name: "Ana", Surname: "Gomez", NationalID: "1", Address: "Street 1", Credential: "argon2id$a$b",
			Publications: []string{"P1", "P2"}, Contacts: []string{"S2"}},
		{ID: "S2", Name: "Luis", Contacts: []string{"S1"}},
	}
}

func products() []ProductDoc {
	return []ProductDoc{
		{ID: "P1", Name: "Bike", Description: "Road <fast> & light", PublishedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			ImagePath: "img/b.png", Price: 100, Likes: 9, Status: "ACTIVE", Category: "SPORTS",
			Comments: []CommentDoc{{ID: "C1", AuthorID: "S2", Text: "nice, 100%"}}},
		{ID: "P2", Name: "Lamp", PublishedAt: time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC), Price: 5, Status: "SOLD", Category: "HOME"},
	}
}

func requests() []RequestDoc {
	return []RequestDoc{{ID: "R1", SenderID: "S1", ReceiverID: "S2", Status: "PENDING"}}
}

func TestExporter_RoundTripAllFormats(t *testing.T) {
	ctx := context.Background()
	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			e, _, m := newExporter(t)

			require.NoError(t, e.ExportSellers(ctx, f, sellers()))
			require.NoError(t, e.ExportProducts(ctx, f, products()))
			require.NoError(t, e.ExportRequests(ctx, f, requests()))

			gotS, err := e.ImportSellers(ctx, f)
			require.NoError(t, err)
			require.Equal(t, sellers(), gotS)

			gotP, err := e.ImportProducts(ctx, f)
			require.NoError(t, err)
			require.Len(t, gotP, 2)
			for i := range gotP {
				require.True(t, products()[i].PublishedAt.Equal(gotP[i].PublishedAt))
				gotP[i].PublishedAt = products()[i].PublishedAt
			}
			require.Equal(t, products(), gotP)

			gotR, err := e.ImportRequests(ctx, f)
			require.NoError(t, err)
			require.Equal(t, requests(), gotR)

			require.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotExports.WithLabelValues("products", string(f))))
		})
	}
}

func TestExporter_XMLIsMarkup(t *testing.T) {
	e, _, _ := newExporter(t)
	require.NoError(t, e.ExportSellers(context.Background(), FormatXML, sellers()))
	path, err := e.Path(KindSellers, FormatXML)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(b)
	require.True(t, strings.HasPrefix(s, "<?xml"))
	require.Contains(t, s, `<sellers kind="sellers" exportedAt="2025-01-02T03:04:05Z">`)
	require.Contains(t, s, `<item id="S1">`)
	require.Contains(t, s, `<product>P1</product>`)
}

func TestExporter_EmptyCollectionSkipped(t *testing.T) {
	e, dir, _ := newExporter(t)
	require.NoError(t, e.ExportRequests(context.Background(), FormatYAML, nil))
	_, err := os.Stat(filepath.Join(dir, "requests.yaml"))
	require.True(t, os.IsNotExist(err))
}

func TestExporter_MissingPathKey(t *testing.T) {
	e := NewExporter(config.FromMap(nil), nil, nil)
	err := e.ExportSellers(context.Background(), FormatBinary, sellers())
	require.ErrorIs(t, err, errs.ErrMissingConfig)
	_, err = e.ImportSellers(context.Background(), FormatBinary)
	require.ErrorIs(t, err, errs.ErrMissingConfig)
}

func TestExporter_KindMismatch(t *testing.T) {
	e, _, _ := newExporter(t)
	ctx := context.Background()
	require.NoError(t, e.ExportSellers(ctx, FormatYAML, sellers()))
	sp, _ := e.Path(KindSellers, FormatYAML)
	rp, _ := e.Path(KindRequests, FormatYAML)
	b, err := os.ReadFile(sp)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(rp, b, 0o644))

	_, err = e.ImportRequests(ctx, FormatYAML)
	require.Error(t, err)
}

func TestExporter_ImportMissingFile(t *testing.T) {
	e, _, _ := newExporter(t)
	_, err := e.ImportProducts(context.Background(), FormatBinary)
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"bin": FormatBinary, "BINARY": FormatBinary, "xml": FormatXML, " yml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	require.ErrorIs(t, err, errs.ErrUnknownFormat)

	e, _, _ := newExporter(t)
	_, err = e.Path(KindSellers, Format("csv"))
	require.ErrorIs(t, err, errs.ErrUnknownFormat)
}
