package store

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-authgate/mailbridge/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Store struct {
	db     *gorm.DB
	driver string
}

func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(os.Stdout),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isSQLite(driver) {
		// A single connection keeps :memory: databases alive and avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.WithContext(ctx).AutoMigrate(
		&models.LinkedAccount{},
		&models.Credential{},
		&models.SyncedMessage{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db, driver: driver}, nil
}

// newGormLogger logs warnings and slow queries. A missing row is an expected
// answer for unlinked users and is not logged.
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// Linked account operations

// CreateLinkedAccount persists an account and its credential as one unit.
// Returns ErrLinkedAccountExists if the (user, identity) pair is already linked.
func (s *Store) CreateLinkedAccount(
	ctx context.Context,
	account *models.LinkedAccount,
	cred *models.Credential,
) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.LinkedAccount{}).
			Where("user_id = ? AND provider_identity = ?", account.UserID, account.ProviderIdentity).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrLinkedAccountExists
		}

		if err := tx.Omit(clause.Associations).Create(account).Error; err != nil {
			return err
		}
		cred.LinkedAccountID = account.ID
		return tx.Create(cred).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && s.linkedAccountExists(ctx, account) {
		// A concurrent link of the same pair won the race
		return ErrLinkedAccountExists
	}
	if err == nil {
		account.Credential = cred
	}
	return err
}

func (s *Store) linkedAccountExists(ctx context.Context, account *models.LinkedAccount) bool {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.LinkedAccount{}).
		Where("user_id = ? AND provider_identity = ?", account.UserID, account.ProviderIdentity).
		Count(&count).Error
	return err == nil && count > 0
}

// GetPrimaryLinkedAccount returns the earliest linked account of a user with its credential
func (s *Store) GetPrimaryLinkedAccount(
	ctx context.Context,
	userID string,
) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	err := s.db.WithContext(ctx).
		Preload("Credential").
		Where("user_id = ?", userID).
		Order("linked_at ASC, id ASC").
		First(&account).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// GetLinkedAccountByIdentity finds the account linking userID to a provider identity
func (s *Store) GetLinkedAccountByIdentity(
	ctx context.Context,
	userID, identity string,
) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	err := s.db.WithContext(ctx).
		Preload("Credential").
		Where("user_id = ? AND provider_identity = ?", userID, identity).
		First(&account).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// GetLinkedAccountByID finds an account by primary key
func (s *Store) GetLinkedAccountByID(ctx context.Context, id string) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	if err := s.db.WithContext(ctx).Preload("Credential").First(&account, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// ReplaceCredential installs a fresh credential for an existing account and marks it active
func (s *Store) ReplaceCredential(ctx context.Context, cred *models.Credential) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "linked_account_id"}},
			DoUpdates: clause.AssignmentColumns(
				[]string{"access_token", "refresh_token", "expires_at", "updated_at"},
			),
		}).Create(cred).Error; err != nil {
			return err
		}

		result := tx.Model(&models.LinkedAccount{}).
			Where("id = ?", cred.LinkedAccountID).
			Update("status", models.AccountStatusActive)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

// UpdateCredentialTokens mutates the credential of an account in place
func (s *Store) UpdateCredentialTokens(
	ctx context.Context,
	accountID, accessToken, refreshToken string,
	expiresAt time.Time,
) error {
	result := s.db.WithContext(ctx).Model(&models.Credential{}).
		Where("linked_account_id = ?", accountID).
		Updates(map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"expires_at":    expiresAt,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpdateLinkedAccountStatus sets the usability status of an account
func (s *Store) UpdateLinkedAccountStatus(
	ctx context.Context,
	accountID string,
	status models.AccountStatus,
) error {
	return s.db.WithContext(ctx).Model(&models.LinkedAccount{}).
		Where("id = ?", accountID).
		Update("status", status).Error
}

// TouchLastSynced records the completion time of a sync
func (s *Store) TouchLastSynced(ctx context.Context, accountID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.LinkedAccount{}).
		Where("id = ?", accountID).
		Update("last_synced_at", at).Error
}

// DeleteLinkedAccount removes an account together with its credential and messages
func (s *Store) DeleteLinkedAccount(ctx context.Context, accountID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("linked_account_id = ?", accountID).
			Delete(&models.SyncedMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("linked_account_id = ?", accountID).
			Delete(&models.Credential{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.LinkedAccount{}, "id = ?", accountID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

// Synced message operations

// ExistingMessageIDs returns the subset of providerIDs already stored for an account
func (s *Store) ExistingMessageIDs(
	ctx context.Context,
	accountID string,
	providerIDs []string,
) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(providerIDs))
	if len(providerIDs) == 0 {
		return existing, nil
	}

	var found []string
	err := s.db.WithContext(ctx).Model(&models.SyncedMessage{}).
		Where("linked_account_id = ? AND provider_message_id IN ?", accountID, providerIDs).
		Pluck("provider_message_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// InsertMessages commits a batch of messages in one statement, ignoring rows
// whose (account, provider message id) already exists. Returns rows inserted.
func (s *Store) InsertMessages(ctx context.Context, msgs []*models.SyncedMessage) (int64, error) {
	if len(msgs) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "linked_account_id"}, {Name: "provider_message_id"}},
			DoNothing: true,
		}).
		Create(&msgs)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListMessages returns message summaries newest first. Raw payloads are not loaded.
func (s *Store) ListMessages(
	ctx context.Context,
	accountID string,
	limit, offset int,
) ([]models.SyncedMessage, error) {
	var msgs []models.SyncedMessage
	err := s.db.WithContext(ctx).
		Omit("raw_payload").
		Where("linked_account_id = ?", accountID).
		Order("received_at DESC, provider_message_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	return msgs, err
}

// GetMessage returns one stored message including its raw payload
func (s *Store) GetMessage(
	ctx context.Context,
	accountID, providerMessageID string,
) (*models.SyncedMessage, error) {
	var msg models.SyncedMessage
	err := s.db.WithContext(ctx).
		Where("linked_account_id = ? AND provider_message_id = ?", accountID, providerMessageID).
		First(&msg).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

// CountMessages returns how many messages are stored for an account
func (s *Store) CountMessages(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SyncedMessage{}).
		Where("linked_account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
