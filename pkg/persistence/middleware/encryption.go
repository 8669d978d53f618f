package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
)

// envelopeKey is the single attribute under which the ciphertext travels.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionAdapter struct {
	next   ports.PersistenceAdapter
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that stores attributes as an
// opaque AES-GCM blob. The underlying adapter only ever sees a single
// base64 attribute; the real keys and values never reach it.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.PersistenceAdapter) ports.PersistenceAdapter {
		return &encryptionAdapter{
			next:   next,
			config: config,
		}
	}
}

func (a *encryptionAdapter) SaveAttributes(ctx context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error {
	// 1. Serialize the real attributes
	plaintext, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	// 2. Encrypt
	ciphertext, err := encrypt(plaintext, a.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt attributes: %w", err)
	}

	// 3. Store an opaque envelope that hides all attribute content
	sealed := map[string]any{
		envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
	}
	return a.next.SaveAttributes(ctx, envelope, sealed)
}

func (a *encryptionAdapter) GetAttributes(ctx context.Context, envelope *model.RequestEnvelope) (map[string]any, bool, error) {
	// 1. Load the sealed envelope
	sealed, found, err := a.next.GetAttributes(ctx, envelope)
	if err != nil || !found {
		return nil, found, err
	}

	// 2. Extract the ciphertext. With encryption configured, a plain blob
	// is refused rather than passed through. Fail secure.
	encoded, ok := sealed[envelopeKey].(string)
	if !ok {
		return nil, false, errors.New("stored attributes are missing the encrypted envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	// 3. Decrypt, trying the active key first and then the fallbacks
	plaintext, err := decryptWithRotation(ciphertext, a.config.ActiveKey, a.config.FallbackKeys)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decrypt attributes: %w", err)
	}

	// 4. Deserialize
	var attributes map[string]any
	if err := json.Unmarshal(plaintext, &attributes); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal decrypted attributes: %w", err)
	}
	return attributes, true, nil
}

func (a *encryptionAdapter) DeleteAttributes(ctx context.Context, envelope *model.RequestEnvelope) error {
	return a.next.DeleteAttributes(ctx, envelope)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
