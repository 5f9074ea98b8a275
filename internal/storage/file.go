package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// ErrInvalidKey ключ шифрования не 32 байта в hex.
var ErrInvalidKey = errors.New("encryption key must be 64 hex characters")

// ErrDecrypt файл не удалось расшифровать текущим ключом.
var ErrDecrypt = errors.New("cannot decrypt session file")

// File хранит состояние в JSON-файле с правами 0600.
// Если задан ключ, содержимое шифруется secretbox.
type File struct {
	mu   sync.Mutex
	path string
	key  *[keySize]byte
}

// ParseKey разбирает ключ шифрования из hex.
func ParseKey(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != keySize {
		return nil, ErrInvalidKey
	}
	return b, nil
}

// NewFile создаёт хранилище в файле path. key может быть nil.
func NewFile(path string, key []byte) (*File, error) {
	const op = "storage.NewFile"
	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}
	f := &File{path: path}
	if key != nil {
		if len(key) != keySize {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidKey)
		}
		var k [keySize]byte
		copy(k[:], key)
		f.key = &k
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	const op = "storage.File.Get"
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	const op = "storage.File.Set"
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	data[key] = value
	if err := f.save(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, keys ...string) error {
	const op = "storage.File.Delete"
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, k := range keys {
		delete(data, k)
	}
	if err := f.save(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return make(map[string]string), nil
	}
	if f.key != nil {
		raw, err = f.open(raw)
		if err != nil {
			return nil, err
		}
	}
	data := make(map[string]string)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// save пишет во временный файл и переименовывает его, чтобы не оставить
// полузаписанный файл при падении процесса.
func (f *File) save(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if f.key != nil {
		raw, err = f.seal(raw)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *File) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plain, &nonce, f.key), nil
}

func (f *File) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, f.key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
