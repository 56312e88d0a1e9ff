package migrate

import (
	"testing"

	"connex/internal/db"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn, dialect, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	for i := 0; i < 2; i++ {
		if err := Migrate(conn, dialect); err != nil {
			t.Fatalf("migrate pass %d: %v", i, err)
		}
	}
	v, err := Version(conn)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 {
		t.Fatalf("expected schema version 1, got %d", v)
	}
}

func TestActionsAreAppendOnly(t *testing.T) {
	conn, dialect, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	if err := Migrate(conn, dialect); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO actions(id,type,title,user_id,priority,department,created_at,updated_at) VALUES ('a1','comment_added','hi','u1','Medium','Other',1,1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := conn.Exec(`UPDATE actions SET title='changed' WHERE id='a1'`); err == nil {
		t.Fatalf("expected update to be rejected")
	}
	if _, err := conn.Exec(`DELETE FROM actions WHERE id='a1'`); err == nil {
		t.Fatalf("expected delete to be rejected")
	}
}

func TestLoadMigrationsPerDialect(t *testing.T) {
	for _, d := range []db.Dialect{db.SQLite, db.Postgres} {
		ms, err := loadMigrations(d)
		if err != nil {
			t.Fatalf("%s: %v", d, err)
		}
		if len(ms) == 0 || ms[0].Version != 1 {
			t.Fatalf("%s: unexpected migrations %+v", d, ms)
		}
	}
}
