// SPDX-License-Identifier: Apache-2.0
package keyring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/gopenpgp/v3/constants"
	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/ProtonMail/gopenpgp/v3/profile"
	"github.com/charmbracelet/log"
)

var (
	// ErrKeyNotFound is returned when a key id is not in the keyring
	ErrKeyNotFound = errors.New("key not found")
	// ErrNoRecipients is returned when an encryption would have no recipients
	ErrNoRecipients = errors.New("no enabled recipients")
	// ErrDecryptionFailed is returned when no owned key can open a message
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrBadPassphrase is returned when a passphrase does not unlock a key
	ErrBadPassphrase = errors.New("passphrase does not unlock key")
)

const (
	privateDir = "private"
	publicDir  = "public"
	keyExt     = ".asc"
)

// KeyFormat represents the PGP key file format
type KeyFormat int

const (
	// KeyFormatArmored is ASCII-armored format (.asc) - text-based, universal compatibility
	KeyFormatArmored KeyFormat = iota
	// KeyFormatBinary is binary format (.gpg) - more compact, but less portable
	KeyFormatBinary
)

// Trust tags a key by ownership
type Trust int

const (
	// TrustMarginal marks an imported public key
	TrustMarginal Trust = iota
	// TrustUltimate marks a key whose private half we hold
	TrustUltimate
)

func (t Trust) String() string {
	if t == TrustUltimate {
		return "ultimate"
	}
	return "marginal"
}

// KeyInfo represents information about a PGP key
type KeyInfo struct {
	KeyID       string
	Fingerprint string
	Name        string
	Email       string
	Created     time.Time
	Expires     time.Time // zero when the key never expires
	Algorithm   string
	Trust       Trust
	Locked      bool // private half is passphrase-protected
}

// Owned reports whether the private half is in the keyring
func (k KeyInfo) Owned() bool {
	return k.Trust == TrustUltimate
}

// Keyring is a directory of armored keys: private/<ID>.asc holds private
// material as supplied (possibly locked), public/<ID>.asc the public half.
type Keyring struct {
	dir      string
	pgp      *crypto.PGPHandle
	security int8

	public  map[string]*crypto.Key
	private map[string]*crypto.Key
}

// Option configures a Keyring
type Option func(*Keyring)

// WithProfile selects the OpenPGP profile used for key generation and encryption
func WithProfile(p *profile.Custom) Option {
	return func(k *Keyring) {
		k.pgp = crypto.PGPWithProfile(p)
	}
}

// WithSecurity selects the key generation security level
func WithSecurity(level int8) Option {
	return func(k *Keyring) {
		k.security = level
	}
}

// Open loads every key under dir, creating the directory layout if missing
func Open(dir string, opts ...Option) (*Keyring, error) {
	k := &Keyring{
		dir: dir,
		// RFC4880 profile for RSA 4096-bit keys
		pgp:      crypto.PGPWithProfile(profile.RFC4880()),
		security: constants.HighSecurity,
		public:   make(map[string]*crypto.Key),
		private:  make(map[string]*crypto.Key),
	}
	for _, opt := range opts {
		opt(k)
	}

	if err := os.MkdirAll(filepath.Join(dir, privateDir), 0700); err != nil {
		return nil, fmt.Errorf("failed to create keyring directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, publicDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create keyring directory: %w", err)
	}

	if err := k.loadDir(privateDir); err != nil {
		return nil, err
	}
	if err := k.loadDir(publicDir); err != nil {
		return nil, err
	}

	log.Debugf("Opened keyring %s (%d keys, %d owned)", dir, len(k.public), len(k.private))
	return k, nil
}

func (k *Keyring) loadDir(sub string) error {
	paths, err := filepath.Glob(filepath.Join(k.dir, sub, "*"+keyExt))
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	for _, path := range paths {
		key, err := loadKey(path)
		if err != nil {
			log.Warnf("Skipping unreadable key %s: %v", path, err)
			continue
		}
		id := keyID(key)

		if sub == privateDir {
			if !key.IsPrivate() {
				log.Warnf("Skipping %s: no private material", path)
				continue
			}
			k.private[id] = key
			if _, ok := k.public[id]; !ok {
				pub, err := key.ToPublic()
				if err != nil {
					return fmt.Errorf("failed to extract public key %s: %w", id, err)
				}
				k.public[id] = pub
			}
			continue
		}

		k.public[id] = key
	}

	return nil
}

// Dir returns the keyring directory
func (k *Keyring) Dir() string {
	return k.dir
}

// Has reports whether id is known
func (k *Keyring) Has(id string) bool {
	_, ok := k.public[normalizeID(id)]
	return ok
}

// KeyIDs returns every known key id, sorted
func (k *Keyring) KeyIDs() []string {
	ids := make([]string, 0, len(k.public))
	for id := range k.public {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OwnedKeyIDs returns the ids of keys with private material, sorted
func (k *Keyring) OwnedKeyIDs() []string {
	ids := make([]string, 0, len(k.private))
	for id := range k.private {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns information about every known key
func (k *Keyring) List() []KeyInfo {
	infos := make([]KeyInfo, 0, len(k.public))
	for _, id := range k.KeyIDs() {
		infos = append(infos, k.info(id))
	}
	return infos
}

// Info returns information about a single key
func (k *Keyring) Info(id string) (*KeyInfo, error) {
	id = normalizeID(id)
	if _, ok := k.public[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}
	info := k.info(id)
	return &info, nil
}

func (k *Keyring) info(id string) KeyInfo {
	info := describeKey(k.public[id])
	info.KeyID = id
	if priv, ok := k.private[id]; ok {
		info.Trust = TrustUltimate
		if locked, err := priv.IsLocked(); err == nil {
			info.Locked = locked
		}
	}
	return info
}

// Remove deletes keys from the keyring; with no ids every key is removed.
// Unknown ids fail before anything is deleted.
func (k *Keyring) Remove(ids ...string) ([]string, error) {
	if len(ids) == 0 {
		ids = k.KeyIDs()
	}

	targets := make([]string, 0, len(ids))
	for _, id := range ids {
		id = normalizeID(id)
		if _, ok := k.public[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
		}
		targets = append(targets, id)
	}

	for _, id := range targets {
		for _, sub := range []string{privateDir, publicDir} {
			path := k.keyPath(sub, id)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove key %s: %w", id, err)
			}
		}
		if priv, ok := k.private[id]; ok {
			priv.ClearPrivateParams()
		}
		delete(k.private, id)
		delete(k.public, id)
		log.Debugf("Removed key %s", id)
	}

	return targets, nil
}

// register persists key and adds it to the in-memory maps
func (k *Keyring) register(key *crypto.Key) (string, error) {
	id := keyID(key)

	pub := key
	if key.IsPrivate() {
		if err := saveKey(key, k.keyPath(privateDir, id), KeyFormatArmored, 0600); err != nil {
			return "", fmt.Errorf("failed to save private key: %w", err)
		}
		var err error
		pub, err = key.ToPublic()
		if err != nil {
			return "", fmt.Errorf("failed to extract public key: %w", err)
		}
		k.private[id] = key
	}

	if err := saveKey(pub, k.keyPath(publicDir, id), KeyFormatArmored, 0644); err != nil {
		return "", fmt.Errorf("failed to save public key: %w", err)
	}
	k.public[id] = pub

	return id, nil
}

func (k *Keyring) keyPath(sub, id string) string {
	return filepath.Join(k.dir, sub, id+keyExt)
}

func keyID(key *crypto.Key) string {
	return strings.ToUpper(key.GetHexKeyID())
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(id), "0x"))
}

// describeKey extracts identity, dates and algorithm from the key entity
func describeKey(key *crypto.Key) KeyInfo {
	info := KeyInfo{
		KeyID:       keyID(key),
		Fingerprint: strings.ToUpper(key.GetFingerprint()),
	}

	entity := key.GetEntity()
	if entity == nil || entity.PrimaryKey == nil {
		return info
	}
	info.Created = entity.PrimaryKey.CreationTime
	info.Algorithm = algorithmName(entity.PrimaryKey)

	// Identities is a map; pick the lexically first for a stable result
	names := make([]string, 0, len(entity.Identities))
	for name := range entity.Identities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		identity := entity.Identities[name]
		if identity.UserId != nil {
			info.Name = identity.UserId.Name
			info.Email = identity.UserId.Email
		}
		if sig, err := identity.LatestValidSelfCertification(time.Now(), nil); err == nil &&
			sig != nil && sig.KeyLifetimeSecs != nil && *sig.KeyLifetimeSecs > 0 {
			info.Expires = entity.PrimaryKey.CreationTime.Add(
				time.Duration(*sig.KeyLifetimeSecs) * time.Second)
		}
		break
	}

	return info
}

func algorithmName(pk *packet.PublicKey) string {
	switch pk.PubKeyAlgo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSAEncryptOnly, packet.PubKeyAlgoRSASignOnly:
		if bits, err := pk.BitLength(); err == nil {
			return fmt.Sprintf("RSA %d", bits)
		}
		return "RSA"
	case packet.PubKeyAlgoDSA:
		return "DSA"
	case packet.PubKeyAlgoElGamal:
		return "ElGamal"
	case packet.PubKeyAlgoECDSA:
		return "ECDSA"
	case packet.PubKeyAlgoECDH:
		return "ECDH"
	case packet.PubKeyAlgoEdDSA:
		return "EdDSA"
	case packet.PubKeyAlgoEd25519:
		return "Ed25519"
	case packet.PubKeyAlgoEd448:
		return "Ed448"
	case packet.PubKeyAlgoX25519:
		return "X25519"
	case packet.PubKeyAlgoX448:
		return "X448"
	default:
		return fmt.Sprintf("algo-%d", pk.PubKeyAlgo)
	}
}

// saveKey saves a key in the specified format
func saveKey(key *crypto.Key, path string, format KeyFormat, perm os.FileMode) error {
	var data []byte
	var err error

	if format == KeyFormatBinary {
		data, err = key.Serialize()
		if err != nil {
			return fmt.Errorf("failed to serialize key: %w", err)
		}
	} else {
		armored, err := key.Armor()
		if err != nil {
			return fmt.Errorf("failed to armor key: %w", err)
		}
		data = []byte(armored)
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	return nil
}

// loadKey loads a key from either ASCII-armored or binary format (auto-detects)
func loadKey(path string) (*crypto.Key, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	return parseKey(keyData)
}

func parseKey(keyData []byte) (*crypto.Key, error) {
	// Try ASCII-armored first
	key, err := crypto.NewKeyFromArmored(string(keyData))
	if err == nil {
		return key, nil
	}

	// Try binary format
	key, err = crypto.NewKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key (tried both armored and binary formats): %w", err)
	}

	return key, nil
}
