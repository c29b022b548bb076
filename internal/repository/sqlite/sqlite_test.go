package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"floorlink/internal/domain"
	"floorlink/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	// Enable foreign keys for cascade deletes
	_, err = repo.db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func sampleProject() *domain.Project {
	return &domain.Project{
		Version:  domain.ProjectVersion,
		Content:  &domain.ContentRef{Handle: "h1", Kind: domain.ContentImage, Name: "floor.png"},
		Document: []byte("not really a png"),
		Items: []domain.Item{
			{
				ID: "router-1", Label: "Router", Type: "router",
				Position:         domain.Pt(50, 60),
				DocumentPosition: domain.Pt(10, 20),
				Properties:       domain.NewProperties("ip", "10.0.0.1", "uplink", ""),
			},
			{
				ID: "server-1", Label: "Server", Type: "server",
				Position:   domain.Pt(170, 60),
				Properties: domain.NewProperties("uplink", "router-1"),
			},
			{ID: "ap-1", Label: "AP", Type: "ap"},
		},
	}
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid", sql.NullString{String: "x", Valid: true}, "x"},
		{"null", sql.NullString{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestStringToNull(t *testing.T) {
	assertEqual(t, sql.NullString{}, stringToNull(""))
	assertEqual(t, sql.NullString{String: "a", Valid: true}, stringToNull("a"))
}

func TestPropertiesToNull(t *testing.T) {
	t.Run("empty is null", func(t *testing.T) {
		ns, err := propertiesToNull(nil)
		assertNoError(t, err)
		assertEqual(t, false, ns.Valid)
	})

	t.Run("keeps order", func(t *testing.T) {
		ns, err := propertiesToNull(domain.NewProperties("z", "1", "a", "2"))
		assertNoError(t, err)
		var back domain.Properties
		assertNoError(t, unmarshalJSONField(ns, &back))
		assertEqual(t, []string{"z", "a"}, back.Keys())
	})
}

func TestItemRowToDomain(t *testing.T) {
	row := itemRow{
		ID: "sw-1", Label: "Switch", Type: "switch",
		PositionX: 1, PositionY: 2, DocumentX: 3, DocumentY: 4,
		PropertiesJSON: sql.NullString{String: `{"ports":"24","uplink":"router-1"}`, Valid: true},
	}
	item, err := row.toDomain()
	assertNoError(t, err)
	assertEqual(t, domain.Pt(1, 2), item.Position)
	assertEqual(t, domain.Pt(3, 4), item.DocumentPosition)
	assertEqual(t, []string{"ports", "uplink"}, item.Properties.Keys())

	row.PropertiesJSON = sql.NullString{String: "{", Valid: true}
	if _, err := row.toDomain(); err == nil {
		t.Fatal("expected error for malformed properties")
	}
}

// ============================================================================
// Project Tests
// ============================================================================

func TestSaveAndLoadProject(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	want := sampleProject()

	assertNoError(t, repo.SaveProject(ctx, "office", want))

	got, err := repo.LoadProject(ctx, "office")
	assertNoError(t, err)
	assertEqual(t, want.Content, got.Content)
	assertEqual(t, want.Document, got.Document)
	assertEqual(t, len(want.Items), len(got.Items))
	for i := range want.Items {
		if !reflect.DeepEqual(want.Items[i].ID, got.Items[i].ID) {
			t.Fatalf("item %d: expected %s, got %s", i, want.Items[i].ID, got.Items[i].ID)
		}
		assertEqual(t, want.Items[i].Position, got.Items[i].Position)
		assertEqual(t, want.Items[i].DocumentPosition, got.Items[i].DocumentPosition)
		if !want.Items[i].Properties.Equal(got.Items[i].Properties) {
			t.Fatalf("item %s: properties %v, got %v", want.Items[i].ID, want.Items[i].Properties, got.Items[i].Properties)
		}
	}
}

func TestLoadProjectNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.LoadProject(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveProjectReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := sampleProject()
	assertNoError(t, repo.SaveProject(ctx, "office", p))

	p.Items = p.Items[:1]
	p.Content = nil
	p.Document = nil
	assertNoError(t, repo.SaveProject(ctx, "office", p))

	got, err := repo.LoadProject(ctx, "office")
	assertNoError(t, err)
	assertEqual(t, 1, len(got.Items))
	if got.Content != nil {
		t.Fatalf("expected no content, got %+v", got.Content)
	}

	n, err := repo.DocumentCount(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, n)
}

func TestSaveProjectRejectsDuplicateIDs(t *testing.T) {
	repo := newTestRepo(t)
	p := sampleProject()
	p.Items = append(p.Items, domain.Item{ID: "router-1", Type: "router"})

	err := repo.SaveProject(context.Background(), "office", p)
	var dup *domain.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %v", err)
	}

	_, err = repo.LoadProject(context.Background(), "office")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("failed save should leave nothing behind, got %v", err)
	}
}

func TestSharedDocumentStoredOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	assertNoError(t, repo.SaveProject(ctx, "a", sampleProject()))
	assertNoError(t, repo.SaveProject(ctx, "b", sampleProject()))

	n, err := repo.DocumentCount(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, n)

	assertNoError(t, repo.DeleteProject(ctx, "a"))
	n, _ = repo.DocumentCount(ctx)
	assertEqual(t, 1, n)

	assertNoError(t, repo.DeleteProject(ctx, "b"))
	n, _ = repo.DocumentCount(ctx)
	assertEqual(t, 0, n)
}

func TestListProjects(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.ListProjects(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, len(list))

	assertNoError(t, repo.SaveProject(ctx, "office", sampleProject()))
	empty := &domain.Project{Version: domain.ProjectVersion}
	assertNoError(t, repo.SaveProject(ctx, "empty", empty))

	list, err = repo.ListProjects(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(list))

	counts := map[string]int{}
	for _, s := range list {
		counts[s.Name] = s.Items
	}
	assertEqual(t, map[string]int{"office": 3, "empty": 0}, counts)
}

func TestDeleteProject(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	assertNoError(t, repo.SaveProject(ctx, "office", sampleProject()))

	assertNoError(t, repo.DeleteProject(ctx, "office"))

	var n int
	assertNoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	assertEqual(t, 0, n)

	err := repo.DeleteProject(ctx, "office")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
