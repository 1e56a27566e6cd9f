// Command healthcheck probes the running server's health endpoint and exits
// non-zero unless the server reports itself healthy. It is the container
// HEALTHCHECK for scratch images, which have no curl or wget.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const defaultAddr = "127.0.0.1:8080"

func main() {
	os.Exit(check(os.Getenv("STUDIOPANEL_LISTEN_ADDR")))
}

type healthReport struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func check(listenAddr string) int {
	url := fmt.Sprintf("http://%s/api/v1/health", normalizeAddr(listenAddr))
	if err := probe(url, 2*time.Second); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		return 1
	}
	return 0
}

// probe fetches the health report at url and returns an error unless the
// server answered 200 with status "ok".
func probe(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var report healthReport
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&report); err != nil {
		return fmt.Errorf("decode health report: %w", err)
	}

	if resp.StatusCode != http.StatusOK || report.Status != "ok" {
		return fmt.Errorf("unhealthy: http %d, status %q, database %q", resp.StatusCode, report.Status, report.Database)
	}

	return nil
}

// normalizeAddr ensures the healthcheck connects to loopback rather than the
// bind-all address. The healthcheck runs inside the server's container, so
// loopback is always reachable.
func normalizeAddr(raw string) string {
	if raw == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
