package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"gorm.io/gorm"

	"github.com/zaqqye/surat_tugas_web/internal/models"
)

var ErrSessionNotFound = errors.New("session: not found")

// Store persists sessions in Postgres. The upstream access/refresh tokens are
// sealed with an AEAD before they touch the database; the key is derived from
// the configured session secret.
type Store struct {
	db   *gorm.DB
	aead cipher.AEAD
}

func NewStore(db *gorm.DB, secret string) (*Store, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("surat-tugas-web/session-tokens"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, aead: aead}, nil
}

func (s *Store) seal(plain string) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Store) open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", errors.New("session: sealed token too short")
	}
	nonce, ct := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (s *Store) Create(sessionID, accessToken, refreshToken, userJSON string, expiresAt time.Time) error {
	access, err := s.seal(accessToken)
	if err != nil {
		return err
	}
	refresh, err := s.seal(refreshToken)
	if err != nil {
		return err
	}
	rec := models.Session{
		SessionID:     sessionID,
		AccessSealed:  access,
		RefreshSealed: refresh,
		UserJSON:      userJSON,
		ExpiresAt:     expiresAt,
	}
	return s.db.Create(&rec).Error
}

func (s *Store) Find(sessionID string) (*models.Session, error) {
	var rec models.Session
	if err := s.db.Where("session_id = ?", sessionID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Delete removes a session row. Deleting a missing session is not an error:
// logout must be callable at any time.
func (s *Store) Delete(sessionID string) error {
	return s.db.Where("session_id = ?", sessionID).Delete(&models.Session{}).Error
}

func (s *Store) UpdateTokens(sessionID, accessToken, refreshToken string) error {
	access, err := s.seal(accessToken)
	if err != nil {
		return err
	}
	refresh, err := s.seal(refreshToken)
	if err != nil {
		return err
	}
	return s.db.Model(&models.Session{}).Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{"access_sealed": access, "refresh_sealed": refresh}).Error
}

func (s *Store) UpdateUser(sessionID, userJSON string) error {
	return s.db.Model(&models.Session{}).Where("session_id = ?", sessionID).
		Update("user_json", userJSON).Error
}

// DeleteExpired clears sessions past their expiry. Called opportunistically
// from the resolver; there is no background sweeper.
func (s *Store) DeleteExpired(now time.Time) error {
	return s.db.Where("expires_at < ?", now).Delete(&models.Session{}).Error
}
