package turso_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/oselabs/agentsight/internal/adapters/turso"
	"github.com/oselabs/agentsight/internal/domain"
	"github.com/oselabs/agentsight/internal/migrate"
)

// testTursoDB starts a libsql-server container for full integration testing.
// Slower than the in-memory database, but exercises the real server.
func testTursoDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "ghcr.io/tursodatabase/libsql-server:latest",
		ExposedPorts: []string{"8080/tcp"},
		WaitingFor:   wait.ForHTTP("/health").WithPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start libsql-server container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	mappedPort, err := container.MappedPort(ctx, "8080")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	url := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	db, err := sql.Open("libsql", url)
	if err != nil {
		t.Fatalf("Failed to connect to libsql-server: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate.RunAll(ctx, db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestEventStoreAgainstServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	store := turso.NewEventStore(testTursoDB(t))

	res, err := store.Ingest(ctx, "org-1", []domain.Event{
		event("e1", "s1", testBase),
		event("e2", "s1", testBase.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, "Accepted", 2, res.Accepted)

	// Duplicate detection holds against the real server too.
	res, err = store.Ingest(ctx, "org-1", []domain.Event{event("e1", "s1", testBase)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, "Rejected", 1, res.Rejected)
	assertEqual(t, "Code", domain.CodeDuplicate, res.Errors[0].Code)

	events, err := store.ListByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, "events", 2, len(events))
}
