// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package couchcontainer locates a real CouchDB server for live tests, either
// from the environment or by starting one with testcontainers-go.
package couchcontainer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// EnvDSN names an existing CouchDB server to test against.
	EnvDSN = "COUCHDOC_TEST_DSN"
	// EnvDocker, when set, starts a CouchDB container if EnvDSN is unset.
	EnvDocker = "COUCHDOC_TEST_DOCKER"
	// DefaultImage is the image started when EnvDocker is set.
	DefaultImage = "couchdb:3.3.3"

	adminUser     = "admin"
	adminPassword = "abc123"
	couchPort     = "5984/tcp"
)

// DSN returns the DSN of a live CouchDB server, or skips the test if none is
// configured. Containers are terminated when the test completes.
func DSN(t *testing.T) string { //nolint:thelper // Not a helper
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		return dsn
	}
	if os.Getenv(EnvDocker) == "" {
		t.Skipf("Neither %s nor %s set, skipping live tests", EnvDSN, EnvDocker)
	}
	ctx := context.Background()
	dsn, terminate, err := StartCouchDB(ctx, DefaultImage)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := terminate(context.Background()); err != nil {
			t.Logf("failed to terminate CouchDB container: %s", err)
		}
	})
	return dsn
}

// StartCouchDB starts a CouchDB container, and returns its DSN along with a
// function that terminates it.
func StartCouchDB(ctx context.Context, image string) (string, func(context.Context) error, error) {
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{couchPort},
		WaitingFor:   wait.ForHTTP("/").WithPort(couchPort).WithStartupTimeout(120 * time.Second),
		Env: map[string]string{
			"COUCHDB_USER":     adminUser,
			"COUCHDB_PASSWORD": adminPassword,
		},
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, err
	}
	terminate := func(ctx context.Context) error {
		return container.Terminate(ctx)
	}
	host, err := container.Host(ctx)
	if err != nil {
		_ = terminate(ctx)
		return "", nil, err
	}
	mappedPort, err := container.MappedPort(ctx, couchPort)
	if err != nil {
		_ = terminate(ctx)
		return "", nil, err
	}
	dsn := fmt.Sprintf("http://%s:%s@%s:%s/", adminUser, adminPassword, host, mappedPort.Port())
	// A single node logs errors until the system databases exist.
	for _, db := range []string{"_users", "_replicator"} {
		if err := put(ctx, dsn+db); err != nil {
			_ = terminate(ctx)
			return "", nil, err
		}
	}
	return dsn, terminate, nil
}

func put(ctx context.Context, path string) error {
	rq, err := http.NewRequestWithContext(ctx, http.MethodPut, path, nil)
	if err != nil {
		return err
	}
	rq.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(rq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPreconditionFailed:
		return nil
	}
	return fmt.Errorf("failed to create %s: %s", path, resp.Status)
}
