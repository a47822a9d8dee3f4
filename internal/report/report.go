// Package report renders the human-readable statistics report.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/and161185/marketstore/internal/model"
)

// DateLayout formats every timestamp in the report.
const DateLayout = "2006-01-02 15:04:05"

// DefaultTitle is used when Report.Title is empty.
const DefaultTitle = "Marketplace activity report"

// Report holds the figures printed by Write.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Author      string

	From             time.Time
	To               time.Time
	PublishedInRange int

	SellerID       string
	SellerProducts int
	SellerContacts int

	Top []model.Product
}

// Write renders r as plain text.
func Write(w io.Writer, r Report) error {
	title := r.Title
	if title == "" {
		title = DefaultTitle
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", title)
	fmt.Fprintf(bw, "Date: %s\n", r.GeneratedAt.Format(DateLayout))
	fmt.Fprintf(bw, "Prepared by: %s\n\n", r.Author)
	fmt.Fprintf(bw, "Products published between %s and %s: %d\n",
		r.From.Format(DateLayout), r.To.Format(DateLayout), r.PublishedInRange)
	fmt.Fprintf(bw, "Products published by seller %s: %d\n", r.SellerID, r.SellerProducts)
	fmt.Fprintf(bw, "Contacts of seller %s: %d\n", r.SellerID, r.SellerContacts)
	fmt.Fprintf(bw, "Top %d products by likes:\n", len(r.Top))
	for i, p := range r.Top {
		fmt.Fprintf(bw, "%2d. %s (ID: %s) with %d like(s)\n", i+1, p.Name, p.ID, p.Likes)
	}
	fmt.Fprintln(bw, strings.Repeat("-", 60))
	return bw.Flush()
}

// WriteFile writes the report to path, creating parent directories.
func WriteFile(path string, r Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return Write(f, r)
}
