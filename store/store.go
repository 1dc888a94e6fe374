// Package store persists one account as a single encrypted file on disk
// (§4.B). The file format is a small fixed header (salt, nonce) followed
// by a chacha20poly1305-sealed gob encoding of account.Snapshot.
package store

import (
	"bytes"
	"encoding/gob"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/crypto"
	"github.com/go-errors/errors"
)

const fileMode = 0600

// ErrNotFound is returned when the named account has no file on disk.
var ErrNotFound = errors.New("not_found")

// ErrWrongPassword is returned when decryption fails, meaning either the
// password is wrong or the file is corrupt.
var ErrWrongPassword = errors.New("wrong_password")

// Store manages the on-disk account files under a single directory, one
// file per account name, per §4.B.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Errorf("creating account directory: %v", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".dwdacct")
}

// Exists reports whether an account file named name is present.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// List returns the names of every account file in the store's directory.
func (s *Store) List() ([]string, error) {
	entries, err := ioutil.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Errorf("listing accounts: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		const ext = ".dwdacct"
		if filepath.Ext(e.Name()) == ext {
			names = append(names, e.Name()[:len(e.Name())-len(ext)])
		}
	}
	return names, nil
}

// Save encrypts acct under password and atomically writes it to name's
// file, per §4.B's save_account.
func (s *Store) Save(name, password string, acct *account.Account) error {
	snap, err := acct.Export()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return errors.Errorf("encoding account: %v", err)
	}

	salt, nonce, ciphertext, err := crypto.Encrypt([]byte(password), buf.Bytes())
	if err != nil {
		return err
	}

	var out bytes.Buffer
	out.Write(salt)
	out.Write(nonce)
	out.Write(ciphertext)

	tmp := s.path(name) + ".tmp"
	if err := ioutil.WriteFile(tmp, out.Bytes(), fileMode); err != nil {
		return errors.Errorf("writing account file: %v", err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return errors.Errorf("committing account file: %v", err)
	}

	log.Debugf("saved account %q (%d bytes)", name, out.Len())
	return nil
}

// Load decrypts name's file under password and reconstructs the account,
// per §4.B's load_account.
func (s *Store) Load(name, password string) (*account.Account, error) {
	raw, err := ioutil.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Errorf("reading account file: %v", err)
	}

	if len(raw) < crypto.SaltSize+crypto.NonceSize {
		return nil, errors.New("truncated account file")
	}
	salt := raw[:crypto.SaltSize]
	nonce := raw[crypto.SaltSize : crypto.SaltSize+crypto.NonceSize]
	ciphertext := raw[crypto.SaltSize+crypto.NonceSize:]

	plaintext, err := crypto.Decrypt([]byte(password), salt, nonce, ciphertext)
	if err != nil {
		return nil, ErrWrongPassword
	}

	var snap account.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(plaintext)).Decode(&snap); err != nil {
		return nil, errors.Errorf("decoding account: %v", err)
	}

	return account.Restore(&snap)
}

// Delete removes name's account file.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return errors.Errorf("deleting account file: %v", err)
	}
	return nil
}
