package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoFile(t *testing.T, root string, rel string, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectViolations(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contexts")

	writeGoFile(t, root, "catalog/product-service/application/service.go", `package application

import (
	"context"

	"golang.org/x/sync/errgroup"
	"lyceum/contexts/catalog/product-service/ports"
	"lyceum/internal/shared/gate"
)
`)
	writeGoFile(t, root, "catalog/product-service/application/leaky.go", `package application

import (
	"gorm.io/gorm"
	"lyceum/contexts/catalog/product-service/adapters/memory"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/platform/session"
)
`)
	writeGoFile(t, root, "catalog/product-service/domain/errors/errors.go", `package errors

import "lyceum/internal/shared/gate"
`)
	writeGoFile(t, root, "catalog/product-service/application/service_test.go", `package application

import "lyceum/internal/platform/metrics"
`)

	violations := collectViolations(root)
	rules := map[string]string{}
	for _, v := range violations {
		if v.File != "contexts/catalog/product-service/application/leaky.go" {
			t.Fatalf("unexpected violation in %s: %+v", v.File, v)
		}
		rules[v.Import] = v.Rule
	}

	expected := map[string]string{
		"gorm.io/gorm": "application import is outside explicit allowlist",
		"lyceum/contexts/catalog/product-service/adapters/memory": "application must not import adapters",
		"lyceum/internal/platform/session":                        "application must not import runtime infrastructure",
	}
	for importPath, rule := range expected {
		if rules[importPath] != rule {
			t.Fatalf("expected %q for %s, got %q", rule, importPath, rules[importPath])
		}
	}
	if rules["lyceum/contexts/identity-access/account-service/ports"] == "" {
		t.Fatalf("expected cross-context import to be flagged")
	}
}

func TestIsStdlib(t *testing.T) {
	cases := map[string]bool{
		"context":                  true,
		"net/http":                 true,
		"lyceum/internal/shared":   false,
		"github.com/google/uuid":   false,
		"golang.org/x/sync/errgrp": false,
	}
	for importPath, want := range cases {
		if got := isStdlib(importPath); got != want {
			t.Fatalf("isStdlib(%q) = %v, want %v", importPath, got, want)
		}
	}
}
