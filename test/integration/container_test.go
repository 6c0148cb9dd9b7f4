package integration

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const postgresImage = "postgres:16-alpine"

// startWithTestcontainers runs a disposable PostgreSQL through the docker
// CLI on a host port docker picks, and returns its URL and a teardown.
func startWithTestcontainers(ctx context.Context) (string, func(), error) {
	out, err := docker(ctx, "run", "-d", "--rm",
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER=hms",
		"-e", "POSTGRES_PASSWORD=hms",
		"-e", "POSTGRES_DB=hms_test",
		postgresImage,
	)
	if err != nil {
		return "", nil, err
	}
	id := out
	teardown := func() { _, _ = docker(context.Background(), "stop", id) }

	// "127.0.0.1:49153"
	addr, err := docker(ctx, "port", id, "5432/tcp")
	if err != nil {
		teardown()
		return "", nil, err
	}
	addr, _, _ = strings.Cut(addr, "\n")

	url := fmt.Sprintf("postgres://hms:hms@%s/hms_test?sslmode=disable", addr)
	if err := awaitPostgres(ctx, url, 30*time.Second); err != nil {
		teardown()
		return "", nil, err
	}
	return url, teardown, nil
}

func docker(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker %s: %w: %s", args[0], err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

// awaitPostgres retries a single connection until the server accepts it.
// The entrypoint restarts postgres once after init, so one success is
// followed by a second check.
func awaitPostgres(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ready := 0
	for ready < 2 {
		conn, err := pgx.Connect(ctx, url)
		if err == nil {
			err = conn.Ping(ctx)
			conn.Close(ctx)
		}
		if err == nil {
			ready++
		} else {
			ready = 0
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres at %s not ready: %w", url, ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil
}
