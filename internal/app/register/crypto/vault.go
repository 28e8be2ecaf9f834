package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLength  = 32
	pbkdf2SaltLength = 16

	keyAlgorithm = "PBKDF2-SHA256"
	vaultVersion = 1

	vaultPermissions = 0600
)

var (
	ErrNoCredentials   = errors.New("device credentials not found")
	ErrWrongPassphrase = errors.New("wrong device passphrase")
)

// Header метаданные зашифрованного файла учетных данных
type Header struct {
	Version      int       `json:"version"`
	KeyAlgorithm string    `json:"key_algorithm"`
	Salt         string    `json:"salt"`
	Iterations   int       `json:"iterations"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type container struct {
	Header Header `json:"header"`
	Data   string `json:"data"`
}

// Vault хранит токен устройства на диске в зашифрованном виде (AES-GCM,
// ключ из парольной фразы через PBKDF2)
type Vault struct {
	path       string
	passphrase []byte
	mu         sync.Mutex
}

func NewVault(path, passphrase string) (*Vault, error) {
	if path == "" {
		return nil, errors.New("vault: empty path")
	}
	if passphrase == "" {
		return nil, errors.New("vault: empty passphrase")
	}
	return &Vault{
		path:       path,
		passphrase: []byte(passphrase),
	}, nil
}

// Save шифрует токен новой солью и перезаписывает файл
func (v *Vault) Save(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	salt := make([]byte, pbkdf2SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("ошибка генерации соли: %w", err)
	}

	key := pbkdf2.Key(v.passphrase, salt, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	defer clearMemory(key)

	sealed, err := encryptWithKey(key, []byte(token))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(container{
		Header: Header{
			Version:      vaultVersion,
			KeyAlgorithm: keyAlgorithm,
			Salt:         hex.EncodeToString(salt),
			Iterations:   pbkdf2Iterations,
			UpdatedAt:    time.Now().UTC(),
		},
		Data: hex.EncodeToString(sealed),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	if err := os.WriteFile(v.path, data, vaultPermissions); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	return nil
}

// Load расшифровывает сохраненный токен
func (v *Vault) Load() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	raw, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredentials
		}
		return "", fmt.Errorf("ошибка чтения файла: %w", err)
	}

	var c container
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", fmt.Errorf("ошибка декодирования файла: %w", err)
	}
	if c.Header.KeyAlgorithm != keyAlgorithm {
		return "", fmt.Errorf("неподдерживаемый алгоритм: %s", c.Header.KeyAlgorithm)
	}

	salt, err := hex.DecodeString(c.Header.Salt)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования соли: %w", err)
	}
	sealed, err := hex.DecodeString(c.Data)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования данных: %w", err)
	}

	key := pbkdf2.Key(v.passphrase, salt, c.Header.Iterations, pbkdf2KeyLength, sha256.New)
	defer clearMemory(key)

	plain, err := decryptWithKey(key, sealed)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(plain), nil
}

// Wipe удаляет файл учетных данных. Отсутствие файла не ошибка.
func (v *Vault) Wipe() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла: %w", err)
	}
	return nil
}

func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

func encryptWithKey(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithKey(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("шифротекст слишком короткий")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка расшифровки: %w", err)
	}
	return plaintext, nil
}

func clearMemory(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
