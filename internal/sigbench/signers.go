package sigbench

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs and verifies messages with a fixed key.
type Signer interface {
	Name() string
	Sign(msg []byte) ([]byte, error)
	Verify(msg, sig []byte) bool
}

// DefaultSigners returns a fresh key for every scheme that has a Go
// implementation in the dependency set. Ed448 has none and keeps its
// published figures.
func DefaultSigners() ([]Signer, error) {
	ctors := []func() (Signer, error){
		NewSecp256k1Signer,
		func() (Signer, error) { return NewNISTSigner("ECDSA (secp256r1)", elliptic.P256()) },
		NewEd25519Signer,
		func() (Signer, error) { return NewNISTSigner("ECDSA (secp384r1)", elliptic.P384()) },
		NewSchnorrSigner,
	}

	signers := make([]Signer, 0, len(ctors))
	for _, ctor := range ctors {
		s, err := ctor()
		if err != nil {
			return nil, err
		}
		signers = append(signers, s)
	}
	return signers, nil
}

// secp256k1Signer signs Keccak-256 digests the way Ethereum transactions are
// signed.
type secp256k1Signer struct {
	key    *ecdsa.PrivateKey
	pubkey []byte
}

// NewSecp256k1Signer generates an Ethereum account key.
func NewSecp256k1Signer() (Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}
	return &secp256k1Signer{key: key, pubkey: crypto.FromECDSAPub(&key.PublicKey)}, nil
}

func (s *secp256k1Signer) Name() string { return "ECDSA (secp256k1)" }

func (s *secp256k1Signer) Sign(msg []byte) ([]byte, error) {
	return crypto.Sign(crypto.Keccak256(msg), s.key)
}

func (s *secp256k1Signer) Verify(msg, sig []byte) bool {
	if len(sig) < crypto.RecoveryIDOffset {
		return false
	}
	return crypto.VerifySignature(s.pubkey, crypto.Keccak256(msg), sig[:crypto.RecoveryIDOffset])
}

// nistSigner signs with ECDSA over a NIST curve using the hash that matches
// the curve size.
type nistSigner struct {
	name string
	key  *ecdsa.PrivateKey
}

// NewNISTSigner generates a key on curve. P-384 digests with SHA-384, all
// other curves with SHA-256.
func NewNISTSigner(name string, curve elliptic.Curve) (Signer, error) {
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate %s key: %w", name, err)
	}
	return &nistSigner{name: name, key: key}, nil
}

func (s *nistSigner) Name() string { return s.name }

func (s *nistSigner) digest(msg []byte) []byte {
	if s.key.Curve.Params().BitSize > 256 {
		h := sha512.Sum384(msg)
		return h[:]
	}
	h := sha256.Sum256(msg)
	return h[:]
}

func (s *nistSigner) Sign(msg []byte) ([]byte, error) {
	return ecdsa.SignASN1(rand.Reader, s.key, s.digest(msg))
}

func (s *nistSigner) Verify(msg, sig []byte) bool {
	return ecdsa.VerifyASN1(&s.key.PublicKey, s.digest(msg), sig)
}

type ed25519Signer struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewEd25519Signer generates an Ed25519 key pair.
func NewEd25519Signer() (Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &ed25519Signer{pub: pub, priv: priv}, nil
}

func (s *ed25519Signer) Name() string { return "Ed25519" }

func (s *ed25519Signer) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, msg), nil
}

func (s *ed25519Signer) Verify(msg, sig []byte) bool {
	return ed25519.Verify(s.pub, msg, sig)
}

// schnorrSigner uses the secp256k1 Schnorr variant from dcrd (EC-Schnorr-DCRv0).
// It is not BIP-340, so it is reported under its own name.
type schnorrSigner struct {
	key *secp256k1.PrivateKey
	pub *secp256k1.PublicKey
}

// NewSchnorrSigner generates a secp256k1 key for Schnorr signatures.
func NewSchnorrSigner() (Signer, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate schnorr key: %w", err)
	}
	return &schnorrSigner{key: key, pub: key.PubKey()}, nil
}

func (s *schnorrSigner) Name() string { return "Schnorr (secp256k1, DCRv0)" }

func (s *schnorrSigner) Sign(msg []byte) ([]byte, error) {
	h := sha256.Sum256(msg)
	sig, err := schnorr.Sign(s.key, h[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

func (s *schnorrSigner) Verify(msg, sig []byte) bool {
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	h := sha256.Sum256(msg)
	return parsed.Verify(h[:], s.pub)
}
