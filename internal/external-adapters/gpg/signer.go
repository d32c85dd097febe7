package gpg

import (
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// SignatureExtension is appended to the signed file's name
const SignatureExtension = ".asc"

// Signer produces armored detached signatures with a single private key
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads an armored private key and unlocks it with passphrase.
// The first key in the file that carries private material is used.
func NewSignerFromFile(keyPath, passphrase string) (*Signer, error) {
	//nolint:gosec // G304: keyPath is the configured signing key
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open signing key: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	entities, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	for _, entity := range entities {
		if entity.PrivateKey == nil {
			continue
		}
		if err := decryptEntity(entity, []byte(passphrase)); err != nil {
			return nil, err
		}
		return &Signer{entity: entity}, nil
	}

	return nil, fmt.Errorf("%s contains no private key", keyPath)
}

// Fingerprint returns the signing key's fingerprint in upper-case hex
func (s *Signer) Fingerprint() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}

// SignFile writes <filePath>.asc and returns its path
func (s *Signer) SignFile(filePath string) (string, error) {
	//nolint:gosec // G304: filePath is the archive being signed
	data, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file to sign: %w", err)
	}
	//nolint:errcheck // Defer close
	defer data.Close()

	sigPath := filePath + SignatureExtension
	//nolint:gosec // G304: signature path derives from the signed file
	out, err := os.Create(sigPath)
	if err != nil {
		return "", fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, data, nil); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to sign %s: %w", filePath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write signature: %w", err)
	}

	return sigPath, nil
}

func decryptEntity(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to unlock signing key: %w", err)
		}
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
			if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
				return fmt.Errorf("failed to unlock signing subkey: %w", err)
			}
		}
	}
	return nil
}
