package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/comigor/schoolassist-go/internal/config"
	"github.com/comigor/schoolassist-go/internal/conversation"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	empty, err := store.List(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, empty)

	welcome, err := store.Append(ctx, "s1", conversation.Welcome(now))
	require.NoError(t, err)
	require.Equal(t, conversation.WelcomeID, welcome.ID)

	user, err := store.Append(ctx, "s1", conversation.NewMessage(conversation.RoleUser, "What is 2+2?", now))
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	reply, err := store.Append(ctx, "s1", conversation.NewMessage(conversation.RoleAssistant, "It is **4**.", now.Add(time.Second)))
	require.NoError(t, err)
	require.NotEqual(t, user.ID, reply.ID)

	_, err = store.Append(ctx, "s2", conversation.NewMessage(conversation.RoleUser, "other session", now))
	require.NoError(t, err)

	got, err := store.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.True(t, got[0].IsWelcome())
	require.Equal(t, user.ID, got[1].ID)
	require.Equal(t, conversation.RoleUser, got[1].Role)
	require.Equal(t, "What is 2+2?", got[1].Content)
	require.Equal(t, conversation.RoleAssistant, got[2].Role)
	require.Equal(t, "It is **4**.", got[2].Content)
	require.True(t, now.Add(time.Second).Equal(got[2].Timestamp))

	require.NoError(t, store.Clear(ctx, "s1"))
	got, err = store.List(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, got)

	// Clearing an unknown session is a no-op.
	require.NoError(t, store.Clear(ctx, "missing"))

	other, err := store.List(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	require.Equal(t, "other session", other[0].Content)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	_, err := store.Append(ctx, "s", conversation.NewMessage(conversation.RoleUser, "hi", time.Now()))
	require.NoError(t, err)

	got, err := store.List(ctx, "s")
	require.NoError(t, err)
	got[0].Content = "changed"

	again, err := store.List(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, "hi", again[0].Content)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = store.Append(ctx, "s", conversation.NewMessage(conversation.RoleUser, "persisted", time.Now()))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.List(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "persisted", got[0].Content)
}

func TestBoltStore(t *testing.T) {
	store, err := OpenBolt(filepath.Join(t.TempDir(), "nested", "history.bolt"))
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := Open(ctx, config.HistoryConfig{Backend: config.BackendMemory})
	require.IsType(t, &Memory{}, store)

	store = Open(ctx, config.HistoryConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "a.db")})
	require.IsType(t, &SQLite{}, store)
	require.NoError(t, store.Close())

	store = Open(ctx, config.HistoryConfig{Backend: config.BackendBolt, Path: filepath.Join(dir, "b.bolt")})
	require.IsType(t, &Bolt{}, store)
	require.NoError(t, store.Close())
}

func TestOpen_DefaultPathPerBackend(t *testing.T) {
	ctx := context.Background()
	t.Chdir(t.TempDir())

	store := Open(ctx, config.HistoryConfig{Backend: config.BackendSQLite})
	require.IsType(t, &SQLite{}, store)
	require.NoError(t, store.Close())

	// A sqlite file already sits at the sqlite default; bolt must not pick it.
	store = Open(ctx, config.HistoryConfig{Backend: config.BackendBolt})
	require.IsType(t, &Bolt{}, store)
	require.NoError(t, store.Close())

	require.FileExists(t, DefaultSQLitePath)
	require.FileExists(t, DefaultBoltPath)
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	ctx := context.Background()

	store := Open(ctx, config.HistoryConfig{Backend: "cassandra"})
	require.IsType(t, &Memory{}, store)

	store = Open(ctx, config.HistoryConfig{Backend: config.BackendPostgres})
	require.IsType(t, &Memory{}, store)

	store = Open(ctx, config.HistoryConfig{Backend: config.BackendRedis, RedisAddr: "127.0.0.1:1"})
	require.IsType(t, &Memory{}, store)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()
	exerciseStore(t, store)

	require.False(t, mr.Exists(redisKey("s1")))
	items, err := mr.List(redisKey("s2"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Contains(t, items[0], `"type":"user"`)
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()

	_, err := mr.Push(redisKey("s"), "not json")
	require.NoError(t, err)
	_, err = store.List(context.Background(), "s")
	require.ErrorContains(t, err, "decode message")
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	store := Open(context.Background(), config.HistoryConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()})
	require.IsType(t, &Redis{}, store)
	require.NoError(t, store.Close())
}

func TestPostgresRecordMapping(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	msg := conversation.Message{ID: "m1", Content: "**4**", Role: conversation.RoleAssistant, Timestamp: now}

	rec := toRecord("s1", msg)
	require.Equal(t, "m1", rec.MessageID)
	require.Equal(t, "s1", rec.SessionID)
	require.Equal(t, "assistant", rec.Role)
	require.Equal(t, "messages", rec.TableName())

	back, err := rec.message()
	require.NoError(t, err)
	require.Equal(t, "m1", back.ID)
	require.Equal(t, conversation.RoleAssistant, back.Role)
	require.Equal(t, "**4**", back.Content)
	require.True(t, now.Equal(back.Timestamp))
	require.Equal(t, time.UTC, back.Timestamp.Location())

	rec.Role = "narrator"
	_, err = rec.message()
	require.Error(t, err)
}

// TestPostgresStore needs a disposable database, e.g.
// SCHOOLASSIST_TEST_POSTGRES_DSN="host=localhost user=postgres dbname=schoolassist_test sslmode=disable".
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SCHOOLASSIST_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SCHOOLASSIST_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	for _, id := range []string{"nobody", "s1", "s2", "missing"} {
		require.NoError(t, store.Clear(ctx, id))
	}
	exerciseStore(t, store)
}
