package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestInitMigrationDefinesFollowGraph(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	sql := string(b)
	for _, want := range []string{"PRIMARY KEY (follower_id, followed_id)", "CHECK (follower_id <> followed_id)", "users_email_key"} {
		if !strings.Contains(sql, want) {
			t.Errorf("init migration missing %q", want)
		}
	}
}

func TestFollowEdgeHasNoMetadata(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	sql := string(b)
	start := strings.Index(sql, "CREATE TABLE IF NOT EXISTS followers")
	if start < 0 {
		t.Fatal("followers table not found")
	}
	table := sql[start:]
	table = table[:strings.Index(table, ");")]
	var cols []string
	for _, line := range strings.Split(table, "\n")[1:] {
		f := strings.Fields(line)
		if len(f) == 0 || f[0] == "PRIMARY" || f[0] == "CONSTRAINT" {
			continue
		}
		cols = append(cols, f[0])
	}
	if strings.Join(cols, ",") != "follower_id,followed_id" {
		t.Errorf("followers columns: got %v, want [follower_id followed_id]", cols)
	}
}
