package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// Access and refresh tokens are encrypted with AES-256-GCM before write and
// decrypted after read.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
	now func() time.Time
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes for AES-256-GCM,
// or nil to disable credential storage (reads and writes return ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key, now: time.Now}
}

// Get returns the owner's credential with decrypted tokens.
func (r *CredentialRepo) Get(ctx context.Context, ownerID string) (*model.Credential, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, owner_id, access_token, refresh_token, expires_at, mailbox_address, created_at, updated_at
		FROM mailbox_credentials WHERE owner_id = ?`

	var (
		cred                          model.Credential
		encAccess, encRefresh         string
		expiresAt, createdAt, updated string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, ownerID).Scan(
		&cred.ID, &cred.OwnerID, &encAccess, &encRefresh,
		&expiresAt, &cred.MailboxAddress, &createdAt, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential for %s: %w", ownerID, err)
	}

	if cred.AccessToken, err = r.decrypt(encAccess); err != nil {
		return nil, fmt.Errorf("decrypt access token for %s: %w", ownerID, err)
	}
	if cred.RefreshToken, err = r.decrypt(encRefresh); err != nil {
		return nil, fmt.Errorf("decrypt refresh token for %s: %w", ownerID, err)
	}

	if cred.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at for %s: %w", ownerID, err)
	}
	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", ownerID, err)
	}
	if cred.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at for %s: %w", ownerID, err)
	}

	return &cred, nil
}

// Save inserts the owner's credential or updates it in place. created_at is
// kept from the first insert.
func (r *CredentialRepo) Save(ctx context.Context, cred model.Credential) error {
	encAccess, err := r.encrypt(cred.AccessToken)
	if err != nil {
		return err
	}
	encRefresh, err := r.encrypt(cred.RefreshToken)
	if err != nil {
		return err
	}

	now := formatTime(r.now())
	const query = `INSERT INTO mailbox_credentials
		(owner_id, access_token, refresh_token, expires_at, mailbox_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			mailbox_address = excluded.mailbox_address,
			updated_at = excluded.updated_at`

	_, err = r.db.Writer.ExecContext(ctx, query,
		cred.OwnerID, encAccess, encRefresh, formatTime(cred.ExpiresAt), cred.MailboxAddress, now, now,
	)
	if err != nil {
		return fmt.Errorf("save credential for %s: %w", cred.OwnerID, err)
	}
	return nil
}

// Delete removes the owner's credential.
func (r *CredentialRepo) Delete(ctx context.Context, ownerID string) error {
	const query = `DELETE FROM mailbox_credentials WHERE owner_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, ownerID)
	if err != nil {
		return fmt.Errorf("delete credential for %s: %w", ownerID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return driven.ErrCredentialNotFound
	}
	return nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *CredentialRepo) aead() (cipher.AEAD, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
