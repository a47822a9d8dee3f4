package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/marketstore/internal/model"
)

func sample() Report {
	return Report{
		GeneratedAt:      time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
		Author:           "ana",
		From:             time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:               time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
		PublishedInRange: 3,
		SellerID:         "S1",
		SellerProducts:   2,
		SellerContacts:   1,
		Top: []model.Product{
			{ID: "P2", Name: "Lamp", Likes: 9},
			{ID: "P1", Name: "Bike", Likes: 5},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample()))
	out := buf.String()

	lines := strings.Split(out, "\n")
	require.Equal(t, DefaultTitle, lines[0])
	require.Equal(t, "Date: 2025-02-03 04:05:06", lines[1])
	require.Equal(t, "Prepared by: ana", lines[2])
	require.Contains(t, out, "Products published between 2025-01-01 00:00:00 and 2025-01-31 23:59:59: 3\n")
	require.Contains(t, out, "Products published by seller S1: 2\n")
	require.Contains(t, out, "Contacts of seller S1: 1\n")
	require.Contains(t, out, "Top 2 products by likes:\n 1. Lamp (ID: P2) with 9 like(s)\n 2. Bike (ID: P1) with 5 like(s)\n")
}

func TestWrite_CustomTitleNoTop(t *testing.T) {
	r := sample()
	r.Title = "Weekly"
	r.Top = nil
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r))
	require.True(t, strings.HasPrefix(buf.String(), "Weekly\n"))
	require.Contains(t, buf.String(), "Top 0 products by likes:\n---")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.txt")
	require.NoError(t, WriteFile(path, sample()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "Prepared by: ana")
}

func TestWriteFile_BadDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	err := WriteFile(filepath.Join(blocker, "report.txt"), sample())
	if err == nil {
		t.Fatalf("expected error when parent is a file")
	}
}
