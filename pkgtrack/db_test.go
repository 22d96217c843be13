// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package pkgtrack

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := OpenStore(ctx, filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err = s.Init(ctx); err != nil {
		t.Fatal(err)
	}
	// A second Init must be a no-op.
	if err = s.Init(ctx); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAddPackage(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, name := range []string{"alpha", "beta"} {
		if err := s.AddPackage(ctx, name); err != nil {
			t.Fatalf("%q: %+v", name, err)
		}
	}
	if err := s.AddPackage(ctx, "alpha"); !errors.Is(err, ErrPackageExists) {
		t.Errorf("duplicate: got %v, wanted ErrPackageExists", err)
	}
	pkgs, err := s.Packages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkgs) != 2 || pkgs[0].Name != "alpha" || pkgs[1].Name != "beta" {
		t.Errorf("got %+v", pkgs)
	}
	if pkgs[0].ID == 0 || pkgs[1].ID <= pkgs[0].ID {
		t.Errorf("ids not ascending: %+v", pkgs)
	}
}

func TestVersions(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if err := s.AddPackage(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	pkgs, err := s.Packages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	id := pkgs[0].ID

	day := func(d int) time.Time { return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC) }
	// Insert out of order, Versions must sort by upload time.
	if err = s.StoreVersions(ctx, []Version{
		{PackageID: id, Version: "1.2.0", UploadedAt: day(3)},
		{PackageID: id, Version: "1.0.0", UploadedAt: day(1)},
		{PackageID: id, Version: "1.1.0", UploadedAt: day(2)},
	}); err != nil {
		t.Fatal(err)
	}
	versions, err := s.Versions(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 3 {
		t.Fatalf("got %d versions, wanted 3", len(versions))
	}
	for i, want := range []string{"1.0.0", "1.1.0", "1.2.0"} {
		if versions[i].Version != want {
			t.Errorf("%d. got %q, wanted %q", i, versions[i].Version, want)
		}
	}
	if !versions[0].UploadedAt.Equal(day(1)) {
		t.Errorf("got %s, wanted %s", versions[0].UploadedAt, day(1))
	}

	if versions, err = s.Versions(ctx, "nosuch"); err != nil || len(versions) != 0 {
		t.Errorf("nosuch: got %+v, %v", versions, err)
	}

	// The schema keeps (package, version) unique.
	if err = s.StoreVersions(ctx, []Version{
		{PackageID: id, Version: "1.0.0", UploadedAt: day(9)},
	}); err == nil {
		t.Error("duplicate version: wanted an error")
	}
	// And versions cannot belong to a package that does not exist.
	if err = s.StoreVersions(ctx, []Version{
		{PackageID: id + 100, Version: "0.1.0", UploadedAt: day(1)},
	}); err == nil {
		t.Error("unknown package id: wanted an error")
	}

	if err = s.StoreVersions(ctx, nil); err != nil {
		t.Errorf("empty insert: %+v", err)
	}
	if err = s.DeleteVersions(ctx); err != nil {
		t.Fatal(err)
	}
	if versions, err = s.Versions(ctx, "alpha"); err != nil || len(versions) != 0 {
		t.Errorf("after delete: got %+v, %v", versions, err)
	}
}
