package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/snapshot"
)

func withConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	var b strings.Builder
	for _, kind := range []string{"SELLERS", "PRODUCTS", "REQUESTS"} {
		lower := strings.ToLower(kind)
		fmt.Fprintf(&b, "%s_TXT=%s\n", kind, filepath.Join(dir, lower+".txt"))
		fmt.Fprintf(&b, "%s_BIN=%s\n", kind, filepath.Join(dir, "snap", lower+".bin"))
		fmt.Fprintf(&b, "%s_XML=%s\n", kind, filepath.Join(dir, "snap", lower+".xml"))
		fmt.Fprintf(&b, "%s_YAML=%s\n", kind, filepath.Join(dir, "snap", lower+".yaml"))
	}
	fmt.Fprintf(&b, "LOG_PATH=%s\n", filepath.Join(dir, "market.log"))
	path := filepath.Join(dir, "market.env")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, dir
}

func market(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), append([]string{"-config", cfg}, args...), &out, &errOut)
	return strings.TrimSpace(out.String()), err
}

func mustMarket(t *testing.T, cfg string, args ...string) string {
	t.Helper()
	out, err := market(t, cfg, args...)
	if err != nil {
		t.Fatalf("market %v: %v", args, err)
	}
	return out
}

func Test_version(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"version"}, &out, &out); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "market dev") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func Test_usageErrors(t *testing.T) {
	cfg, _ := withConfig(t)
	cases := [][]string{
		{},
		{"bogus"},
		{"seller"},
		{"seller", "fly"},
		{"seller", "add", "-name", "Ana"},
		{"product", "status", "-id", "P1", "-status", "LOST"},
		{"report", "-out", "x", "-author", "a", "-from", "2025-13-01", "-to", "2025-01-01"},
		{"snapshot", "import", "-format", "csv"},
	}
	for _, args := range cases {
		_, err := market(t, cfg, args...)
		if !errors.Is(err, errUsage) {
			t.Fatalf("args %v: want usage error, got %v", args, err)
		}
	}
}

func Test_missingConfigFile(t *testing.T) {
	_, err := market(t, filepath.Join(t.TempDir(), "absent.env"), "seller", "list")
	if err == nil {
		t.Fatalf("expected error for absent config file")
	}
}

func Test_missingTextPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.env")
	if err := os.WriteFile(path, []byte("SELLERS_TXT=/tmp/x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := market(t, path, "seller", "list")
	if !errors.Is(err, errs.ErrMissingConfig) {
		t.Fatalf("want ErrMissingConfig, got %v", err)
	}
}

func Test_fullFlow(t *testing.T) {
	cfg, dir := withConfig(t)

	if got := mustMarket(t, cfg, "seller", "add", "-id", "S1", "-name", "Ana", "-password", "pw1"); got != "S1" {
		t.Fatalf("seller add: %q", got)
	}
	mustMarket(t, cfg, "seller", "add", "-id", "S2", "-name", "Luis", "-surname", "Pardo", "-password", "pw2")
	mustMarket(t, cfg, "seller", "edit", "-id", "S2", "-address", "Main 2")
	if _, err := market(t, cfg, "seller", "edit", "-id", "S9", "-address", "x"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("edit unknown seller: %v", err)
	}

	if _, err := market(t, cfg, "seller", "add", "-id", "S1", "-name", "Dup", "-password", "x"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("duplicate seller: %v", err)
	}

	mustMarket(t, cfg, "product", "add", "-owner", "S1", "-id", "P1", "-name", "Bike", "-price", "100", "-category", "SPORTS")
	mustMarket(t, cfg, "product", "add", "-owner", "S1", "-id", "P2", "-name", "Lamp")
	if got := mustMarket(t, cfg, "product", "like", "-id", "P2"); got != "1" {
		t.Fatalf("like: %q", got)
	}
	mustMarket(t, cfg, "product", "status", "-id", "P1", "-status", "SOLD")
	mustMarket(t, cfg, "product", "add", "-owner", "S1", "-id", "P3", "-name", "Sofa", "-desc", "blue", "-price", "40", "-category", "HOME")
	mustMarket(t, cfg, "product", "edit", "-id", "P3", "-name", "Couch")
	mustMarket(t, cfg, "product", "edit", "-id", "P1", "-name", "Road bike", "-price", "90")

	var products []snapshot.ProductDoc
	if err := json.Unmarshal([]byte(mustMarket(t, cfg, "product", "list", "-seller", "S1")), &products); err != nil {
		t.Fatalf("product list: %v", err)
	}
	if len(products) != 3 || products[0].Name != "Road bike" || products[0].Status != "SOLD" || products[0].Price != 90 {
		t.Fatalf("unexpected products: %+v", products)
	}
	if sofa := products[2]; sofa.Name != "Couch" || sofa.Description != "blue" || sofa.Price != 40 || sofa.Category != "HOME" {
		t.Fatalf("edit dropped fields: %+v", sofa)
	}
	mustMarket(t, cfg, "product", "rm", "-id", "P3")

	var sellers []snapshot.SellerDoc
	if err := json.Unmarshal([]byte(mustMarket(t, cfg, "seller", "list")), &sellers); err != nil {
		t.Fatalf("seller list: %v", err)
	}
	if len(sellers) != 2 || sellers[0].Credential != "" || sellers[1].Address != "Main 2" {
		t.Fatalf("unexpected sellers: %+v", sellers)
	}
	if sellers[1].Name != "Luis" || sellers[1].Surname != "Pardo" {
		t.Fatalf("edit dropped fields: %+v", sellers[1])
	}

	reqID := mustMarket(t, cfg, "request", "send", "-from", "S2", "-to", "S1")
	mustMarket(t, cfg, "request", "accept", "-id", reqID)
	var reqs []snapshot.RequestDoc
	if err := json.Unmarshal([]byte(mustMarket(t, cfg, "request", "list", "-receiver", "S1")), &reqs); err != nil {
		t.Fatalf("request list: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Status != "ACCEPTED" {
		t.Fatalf("unexpected requests: %+v", reqs)
	}

	cid := mustMarket(t, cfg, "comment", "add", "-product", "P2", "-author", "S2", "-text", "how much? 10%")
	mustMarket(t, cfg, "comment", "edit", "-product", "P2", "-id", cid, "-text", "sold?")
	mustMarket(t, cfg, "comment", "rm", "-product", "P2", "-id", cid)

	var top []snapshot.ProductDoc
	if err := json.Unmarshal([]byte(mustMarket(t, cfg, "top")), &top); err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].ID != "P2" {
		t.Fatalf("unexpected top: %+v", top)
	}

	if got := mustMarket(t, cfg, "login", "-id", "S1", "-password", "pw1"); got != "ok" {
		t.Fatalf("login: %q", got)
	}
	if _, err := market(t, cfg, "login", "-id", "S1", "-password", "bad"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("bad login: %v", err)
	}

	reportPath := filepath.Join(dir, "out", "report.txt")
	mustMarket(t, cfg, "report", "-out", reportPath, "-author", "ana", "-from", "2000-01-01", "-to", "2100-01-01", "-seller", "S1")
	b, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Products published by seller S1: 2") {
		t.Fatalf("report content:\n%s", b)
	}

	mustMarket(t, cfg, "snapshot", "export")
	var counts map[string]int
	if err := json.Unmarshal([]byte(mustMarket(t, cfg, "snapshot", "import", "-format", "yaml")), &counts); err != nil {
		t.Fatalf("snapshot import: %v", err)
	}
	if counts["sellers"] != 2 || counts["products"] != 2 || counts["requests"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	mustMarket(t, cfg, "product", "rm", "-id", "P1")
	mustMarket(t, cfg, "request", "rm", "-id", reqID)
	mustMarket(t, cfg, "seller", "rm", "-id", "S2")
	if _, err := market(t, cfg, "seller", "rm", "-id", "S2"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second rm: %v", err)
	}

	logBytes, err := os.ReadFile(filepath.Join(dir, "market.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logBytes), `"msg":"user action"`) {
		t.Fatalf("log lacks the login action")
	}
}
