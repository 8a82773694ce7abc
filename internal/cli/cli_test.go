package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/turning"
	"github.com/aretw0/turning/pkg/adapters/file"
	"github.com/aretw0/turning/pkg/adapters/redis"
	"github.com/aretw0/turning/pkg/domain"
)

const door = `
name: door
states: [closed, open]
initialize:
  - states: closed
    by: installing door
turns:
  - from: closed
    to: open
    by: opening
  - from: open
    to: closed
    by: closing
`

var configKeys = []string{
	"TURNING_STORE", "TURNING_STORE_PATH", "TURNING_REDIS_ADDR", "TURNING_REDIS_PASSWORD",
	"TURNING_ENCRYPTION_KEY", "TURNING_PUSHGATEWAY", "TURNING_LOG_LEVEL", "TURNING_REDACT",
}

// clearEnv unsets the config keys for the test and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Empty(t, cfg.Redact)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, ".env", strings.Join([]string{
		"TURNING_STORE=SQLite",
		"TURNING_STORE_PATH=/tmp/reports.db",
		"TURNING_REDACT=token=\\w+, secret",
		"TURNING_LOG_LEVEL=warn",
	}, "\n"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/reports.db", cfg.StorePath)
	assert.Equal(t, []string{`token=\w+`, "secret"}, cfg.Redact)

	logger, err := cfg.Logger(false)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("TURNING_STORE", "memory")
	path := writeFile(t, ".env", "TURNING_STORE=redis\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "failed to load env files")

	t.Setenv("TURNING_REDACT", "(")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "invalid TURNING_REDACT pattern")
}

func TestConfig_Logger(t *testing.T) {
	_, err := Config{LogLevel: "loud"}.Logger(false)
	assert.ErrorContains(t, err, "unknown log level")

	logger, err := Config{LogLevel: "loud"}.Logger(true)
	require.NoError(t, err, "debug ignores the configured level")
	assert.NotNil(t, logger)
}

func key(t *testing.T) string {
	t.Helper()
	return hex.EncodeToString(bytes.Repeat([]byte{7}, 32))
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"file", Config{Store: StoreFile, StorePath: t.TempDir()}},
		{"memory", Config{Store: StoreMemory}},
		{"sqlite", Config{Store: StoreSQLite, StorePath: filepath.Join(t.TempDir(), "r.db")}},
		{"redis", Config{Store: StoreRedis, RedisAddr: mr.Addr()}},
		{"encrypted", Config{Store: StoreMemory, EncryptionKey: key(t), Redact: []string{"secret"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := OpenBackends(tt.cfg)
			require.NoError(t, err)
			defer func() { assert.NoError(t, b.Close()) }()

			report := &domain.Report{RunID: "r1", Completed: true,
				Cases: []domain.CaseRecord{{ID: "1", Status: domain.StatusFailed, Errors: []string{"secret leaked"}}}}
			require.NoError(t, b.Store.Save(ctx, "door", report))
			got, err := b.Store.Load(ctx, "door")
			require.NoError(t, err)
			assert.Equal(t, "r1", got.RunID)

			unlock, err := b.Locker.Lock(ctx, "door", time.Second)
			require.NoError(t, err)
			require.NoError(t, unlock(ctx))
		})
	}
}

func TestOpenBackends_SQLiteFailing(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBackends(Config{Store: StoreSQLite, StorePath: filepath.Join(t.TempDir(), "r.db")})
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Failing)
	require.NoError(t, b.Store.Save(ctx, "green", &domain.Report{RunID: "a", Completed: true}))
	require.NoError(t, b.Store.Save(ctx, "red", &domain.Report{RunID: "b", Completed: true, FailedIDs: []string{"1"}}))

	failing, err := b.Failing(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, failing)
}

func TestOpenBackends_Errors(t *testing.T) {
	_, err := OpenBackends(Config{Store: "tape"})
	assert.ErrorContains(t, err, `unknown store "tape"`)

	_, err = OpenBackends(Config{Store: StoreMemory, EncryptionKey: "abcd"})
	assert.ErrorContains(t, err, "want 32 bytes, got 2")

	_, err = OpenBackends(Config{Store: StoreMemory, EncryptionKey: "zz"})
	assert.ErrorContains(t, err, "invalid TURNING_ENCRYPTION_KEY")
}

func TestReadModel(t *testing.T) {
	m, err := ReadModel(writeFile(t, "door.yaml", door))
	require.NoError(t, err)
	assert.Equal(t, "door", m.Name)

	plan, err := m.Compile().Search(turning.RandomSeed("seed"))
	require.NoError(t, err)
	assert.Positive(t, plan.Cases())

	unnamed, err := ReadModel(writeFile(t, "front-door.yml", strings.Replace(door, "name: door\n", "", 1)))
	require.NoError(t, err)
	assert.Equal(t, "front-door", unnamed.Name)

	_, err = ReadModel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read model")
}

func TestRun_StoresReport(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer

	report, err := Run(context.Background(), Config{Store: StoreFile, StorePath: dir}, RunConfig{
		ModelPath: writeFile(t, "door.yaml", door),
		Out:       &out,
		ErrOut:    &errOut,
		Options:   []turning.RunOption{turning.RandomSeed("seed")},
	})
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, "door", report.Suite)
	assert.Contains(t, out.String(), "Test Case 1")
	assert.Contains(t, out.String(), "passed")

	saved, err := file.New(dir).Load(context.Background(), "door")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, saved.RunID)
	assert.Equal(t, "seed", saved.Seed)
}

func TestRun_ListOnlyIsNotStored(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	report, err := Run(context.Background(), Config{Store: StoreFile, StorePath: dir}, RunConfig{
		ModelPath: writeFile(t, "door.yaml", door),
		Suite:     "front",
		Out:       &out,
		ErrOut:    &out,
		Options:   []turning.RunOption{turning.ListOnly()},
	})
	require.NoError(t, err)
	assert.True(t, report.ListOnly)
	assert.Contains(t, out.String(), "test cases")

	_, err = file.New(dir).Load(context.Background(), "front")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestRun_RedisAndPushgateway(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	var mu sync.Mutex
	var pushed []string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		pushed = append(pushed, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	var out bytes.Buffer
	report, err := Run(ctx, Config{Store: StoreRedis, RedisAddr: mr.Addr(), Pushgateway: gateway.URL}, RunConfig{
		ModelPath: writeFile(t, "door.yaml", door),
		Out:       &out,
		ErrOut:    &out,
	})
	require.NoError(t, err)
	assert.True(t, report.Passed())

	mu.Lock()
	assert.Equal(t, []string{"PUT /metrics/job/door"}, pushed)
	mu.Unlock()

	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()
	suites, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"door"}, suites)
}

func TestRun_EncryptedReport(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cfg := Config{Store: StoreFile, StorePath: dir, EncryptionKey: key(t)}

	_, err := Run(context.Background(), cfg, RunConfig{
		ModelPath: writeFile(t, "door.yaml", door),
		Out:       &out,
		ErrOut:    &out,
	})
	require.NoError(t, err)

	raw, err := file.New(dir).Load(context.Background(), "door")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Cases)

	b, err := OpenBackends(cfg)
	require.NoError(t, err)
	opened, err := b.Store.Load(context.Background(), "door")
	require.NoError(t, err)
	assert.NotEmpty(t, opened.Cases)
}

func TestRun_InvalidModel(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(context.Background(), Config{Store: StoreMemory}, RunConfig{
		ModelPath: writeFile(t, "bad.yaml", "states: [a]\nturns:\n  - from: b\n    to: a\n"),
		Out:       &out,
		ErrOut:    &out,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeclaration)
}

func TestSignalContext(t *testing.T) {
	sc := NewSignalContext(context.Background())
	assert.Nil(t, sc.Signal())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
