package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-authgate/mailbridge/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestStoreWithSQLite tests store operations with SQLite
func TestStoreWithSQLite(t *testing.T) {
	testBasicOperations(t, "sqlite", nil)
}

// TestStoreWithPureSQLite tests store operations with the cgo-free SQLite driver
func TestStoreWithPureSQLite(t *testing.T) {
	testBasicOperations(t, "sqlite-pure", nil)
}

// TestStoreWithPostgres tests store operations with PostgreSQL
func TestStoreWithPostgres(t *testing.T) {
	// Skip if running short tests or Docker is not available
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	testBasicOperations(t, "postgres", pgContainer)
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(&buf)
	sql := func() (string, int64) { return "SELECT * FROM linked_accounts", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	assert.Contains(t, buf.String(), "disk I/O error")
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver: oracle")
	assert.False(t, IsSupportedDriver("oracle"))
	assert.True(t, IsSupportedDriver("sqlite-pure"))
}

// createFreshStore creates a new store instance for test isolation
// For SQLite, each call creates a fresh :memory: database
// For PostgreSQL, each call creates a uniquely-named database in the container
func createFreshStore(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) *Store {
	t.Helper()

	var dsn string
	switch driver {
	case "sqlite", "sqlite-pure":
		dsn = ":memory:"
	case "postgres":
		dbName := "test_" + uuid.New().String()[:8]

		ctx := context.Background()

		createDBCmd := fmt.Sprintf("CREATE DATABASE %s", dbName)
		_, _, err := pgContainer.Exec(
			ctx,
			[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", createDBCmd},
		)
		require.NoError(t, err)

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf(
			"host=%s port=%s user=testuser password=testpass dbname=%s sslmode=disable",
			host, port.Port(), dbName,
		)

		t.Cleanup(func() {
			dropDBCmd := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName)
			_, _, _ = pgContainer.Exec(
				context.Background(),
				[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", dropDBCmd},
			)
		})
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	store, err := New(context.Background(), driver, dsn)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func newAccount(userID, identity string, linkedAt time.Time) (*models.LinkedAccount, *models.Credential) {
	account := &models.LinkedAccount{
		ID:               uuid.New().String(),
		UserID:           userID,
		ProviderIdentity: identity,
		Status:           models.AccountStatusActive,
		LinkedAt:         linkedAt,
	}
	cred := &models.Credential{
		ID:           uuid.New().String(),
		AccessToken:  "access-" + identity,
		RefreshToken: "refresh-" + identity,
		ExpiresAt:    linkedAt.Add(time.Hour),
	}
	return account, cred
}

func newMessage(accountID, providerID string, receivedAt time.Time) *models.SyncedMessage {
	return &models.SyncedMessage{
		ID:                uuid.New().String(),
		LinkedAccountID:   accountID,
		ProviderMessageID: providerID,
		ThreadID:          "thread-" + providerID,
		ReceivedAt:        receivedAt,
		Snippet:           "snippet " + providerID,
		RawPayload:        models.RawPayload(`{"id":"` + providerID + `"}`),
	}
}

// testBasicOperations tests basic CRUD operations on the store
// Each subtest creates a fresh store instance for isolation
func testBasicOperations(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("CreateAndGetLinkedAccount", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))
		assert.Equal(t, account.ID, cred.LinkedAccountID)

		got, err := store.GetPrimaryLinkedAccount(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", got.ProviderIdentity)
		require.NotNil(t, got.Credential)
		assert.Equal(t, "refresh-a@x.com", got.Credential.RefreshToken)

		byIdentity, err := store.GetLinkedAccountByIdentity(ctx, "user-1", "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, account.ID, byIdentity.ID)
	})

	t.Run("DuplicateLinkedAccount", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))

		dup, dupCred := newAccount("user-1", "a@x.com", now)
		err := store.CreateLinkedAccount(ctx, dup, dupCred)
		require.ErrorIs(t, err, ErrLinkedAccountExists)

		var creds int64
		require.NoError(t, store.DB().Model(&models.Credential{}).Count(&creds).Error)
		assert.Equal(t, int64(1), creds)
	})

	t.Run("FailedCredentialInsertRollsBackAccount", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		first, firstCred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, first, firstCred))

		second, secondCred := newAccount("user-2", "b@x.com", now)
		secondCred.ID = firstCred.ID
		err := store.CreateLinkedAccount(ctx, second, secondCred)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrLinkedAccountExists, "only a taken (user, identity) pair reports exists")
		assert.Nil(t, second.Credential)

		_, err = store.GetPrimaryLinkedAccount(ctx, "user-2")
		require.ErrorIs(t, err, ErrRecordNotFound)

		var accounts int64
		require.NoError(t, store.DB().Model(&models.LinkedAccount{}).Count(&accounts).Error)
		assert.Equal(t, int64(1), accounts)
	})

	t.Run("PrimaryAccountIsEarliestLinked", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		later, laterCred := newAccount("user-1", "b@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, later, laterCred))
		earlier, earlierCred := newAccount("user-1", "a@x.com", now.Add(-time.Hour))
		require.NoError(t, store.CreateLinkedAccount(ctx, earlier, earlierCred))

		got, err := store.GetPrimaryLinkedAccount(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, earlier.ID, got.ID)
	})

	t.Run("GetPrimaryLinkedAccountNotFound", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		_, err := store.GetPrimaryLinkedAccount(ctx, "nobody")
		require.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("UpdateCredentialTokens", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))

		expires := now.Add(2 * time.Hour)
		require.NoError(t, store.UpdateCredentialTokens(ctx, account.ID, "new-access", "new-refresh", expires))

		got, err := store.GetLinkedAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-access", got.Credential.AccessToken)
		assert.Equal(t, "new-refresh", got.Credential.RefreshToken)
		assert.True(t, got.Credential.ExpiresAt.Equal(expires))
		assert.Equal(t, cred.ID, got.Credential.ID, "credential is mutated in place")

		err = store.UpdateCredentialTokens(ctx, "missing", "a", "b", expires)
		require.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("ReplaceCredentialRestoresActive", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))
		require.NoError(t, store.UpdateLinkedAccountStatus(ctx, account.ID, models.AccountStatusReauthRequired))

		replacement := &models.Credential{
			ID:              uuid.New().String(),
			LinkedAccountID: account.ID,
			AccessToken:     "fresh-access",
			RefreshToken:    "fresh-refresh",
			ExpiresAt:       now.Add(time.Hour),
		}
		require.NoError(t, store.ReplaceCredential(ctx, replacement))

		got, err := store.GetLinkedAccountByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AccountStatusActive, got.Status)
		assert.Equal(t, "fresh-refresh", got.Credential.RefreshToken)

		var creds int64
		require.NoError(t, store.DB().Model(&models.Credential{}).Count(&creds).Error)
		assert.Equal(t, int64(1), creds)
	})

	t.Run("InsertMessagesIsIdempotent", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))

		inserted, err := store.InsertMessages(ctx, []*models.SyncedMessage{
			newMessage(account.ID, "m1", now),
			newMessage(account.ID, "m2", now.Add(time.Minute)),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)

		inserted, err = store.InsertMessages(ctx, []*models.SyncedMessage{
			newMessage(account.ID, "m2", now.Add(time.Minute)),
			newMessage(account.ID, "m3", now.Add(2*time.Minute)),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), inserted)

		count, err := store.CountMessages(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		inserted, err = store.InsertMessages(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})

	t.Run("ExistingMessageIDs", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))
		other, otherCred := newAccount("user-2", "b@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, other, otherCred))

		_, err := store.InsertMessages(ctx, []*models.SyncedMessage{
			newMessage(account.ID, "m1", now),
			newMessage(other.ID, "m2", now),
		})
		require.NoError(t, err)

		existing, err := store.ExistingMessageIDs(ctx, account.ID, []string{"m1", "m2", "m3"})
		require.NoError(t, err)
		assert.Len(t, existing, 1)
		assert.Contains(t, existing, "m1")

		empty, err := store.ExistingMessageIDs(ctx, account.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ListMessagesNewestFirst", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))

		_, err := store.InsertMessages(ctx, []*models.SyncedMessage{
			newMessage(account.ID, "old", now.Add(-2*time.Hour)),
			newMessage(account.ID, "new", now),
			newMessage(account.ID, "mid", now.Add(-time.Hour)),
		})
		require.NoError(t, err)

		msgs, err := store.ListMessages(ctx, account.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "new", msgs[0].ProviderMessageID)
		assert.Equal(t, "mid", msgs[1].ProviderMessageID)
		assert.Equal(t, "old", msgs[2].ProviderMessageID)
		assert.Empty(t, msgs[0].RawPayload, "listing does not load raw payloads")

		page, err := store.ListMessages(ctx, account.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "mid", page[0].ProviderMessageID)

		full, err := store.GetMessage(ctx, account.ID, "new")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"new"}`, string(full.RawPayload))

		_, err = store.GetMessage(ctx, account.ID, "absent")
		require.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("DeleteLinkedAccountCascades", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))
		_, err := store.InsertMessages(ctx, []*models.SyncedMessage{
			newMessage(account.ID, "m1", now),
		})
		require.NoError(t, err)

		require.NoError(t, store.DeleteLinkedAccount(ctx, account.ID))

		_, err = store.GetPrimaryLinkedAccount(ctx, "user-1")
		require.ErrorIs(t, err, ErrRecordNotFound)

		var creds, msgs int64
		require.NoError(t, store.DB().Model(&models.Credential{}).Count(&creds).Error)
		require.NoError(t, store.DB().Model(&models.SyncedMessage{}).Count(&msgs).Error)
		assert.Zero(t, creds)
		assert.Zero(t, msgs)

		require.ErrorIs(t, store.DeleteLinkedAccount(ctx, account.ID), ErrRecordNotFound)
	})

	t.Run("TouchLastSynced", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		account, cred := newAccount("user-1", "a@x.com", now)
		require.NoError(t, store.CreateLinkedAccount(ctx, account, cred))
		require.NoError(t, store.TouchLastSynced(ctx, account.ID, now))

		got, err := store.GetLinkedAccountByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastSyncedAt)
		assert.True(t, got.LastSyncedAt.Equal(now))
	})

	t.Run("AuditLogs", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		entries := make([]*models.AuditLog, 0, 3)
		for i, event := range []models.EventType{
			models.EventMailboxConnected,
			models.EventSyncCompleted,
			models.EventSyncCompleted,
		} {
			entries = append(entries, &models.AuditLog{
				ID:          uuid.New().String(),
				EventType:   event,
				EventTime:   now,
				Severity:    models.SeverityInfo,
				ActorUserID: "user-1",
				Action:      string(event),
				Success:     true,
				CreatedAt:   now.Add(time.Duration(i) * time.Second),
			})
		}
		require.NoError(t, store.CreateAuditLogBatch(ctx, entries))

		logs, pagination, err := store.GetAuditLogsPaginated(
			ctx,
			NewPaginationParams(1, 10),
			AuditLogFilters{ActorUserID: "user-1", EventType: models.EventSyncCompleted},
		)
		require.NoError(t, err)
		assert.Len(t, logs, 2)
		assert.Equal(t, int64(2), pagination.Total)

		deleted, err := store.DeleteOldAuditLogs(ctx, now.Add(90*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})

	t.Run("Health", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		require.NoError(t, store.Health(ctx))
	})
}
