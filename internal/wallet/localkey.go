package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/sign/schnorr"
	"go.dedis.ch/kyber/v4/suites"

	"chain-poker/internal/chain"
)

// PubKeyType tags public keys produced by LocalKey.
const PubKeyType = "kyber/ed25519-schnorr"

const addressPrefix = "secret1"

var suite = suites.MustFind("Ed25519")

// LocalKey is an in-process wallet holding one Ed25519 scalar. Signatures are
// Schnorr over the canonical JSON of the signed document.
type LocalKey struct {
	priv    kyber.Scalar
	pub     kyber.Point
	address string
	chainID string

	mu      sync.Mutex
	enabled map[string]bool
}

// NewLocalKey loads a hex-encoded private scalar, or generates a fresh one
// when keyHex is empty. chainID restricts which chain may be enabled; empty
// allows any.
func NewLocalKey(keyHex, chainID string) (*LocalKey, error) {
	priv := suite.Scalar()
	if keyHex == "" {
		priv.Pick(suite.RandomStream())
	} else {
		raw, err := hex.DecodeString(strings.TrimSpace(keyHex))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		if err := priv.UnmarshalBinary(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
	}
	pub := suite.Point().Mul(priv, nil)
	addr, err := AddressOf(pub)
	if err != nil {
		return nil, err
	}
	return &LocalKey{
		priv:    priv,
		pub:     pub,
		address: addr,
		chainID: chainID,
		enabled: map[string]bool{},
	}, nil
}

// KeyHex exports the private scalar so a generated key can be persisted.
func (k *LocalKey) KeyHex() string {
	raw, _ := k.priv.MarshalBinary()
	return hex.EncodeToString(raw)
}

func (k *LocalKey) Address() string { return k.address }

func (k *LocalKey) Enable(_ context.Context, chainID string) error {
	if k.chainID != "" && chainID != k.chainID {
		return fmt.Errorf("%w: %s", ErrUnknownChain, chainID)
	}
	k.mu.Lock()
	k.enabled[chainID] = true
	k.mu.Unlock()
	return nil
}

func (k *LocalKey) Identity(_ context.Context, chainID string) (string, error) {
	if !k.isEnabled(chainID) {
		return "", ErrNotEnabled
	}
	return k.address, nil
}

func (k *LocalKey) Signer(chainID string) (chain.Signer, error) {
	if !k.isEnabled(chainID) {
		return nil, ErrNotEnabled
	}
	return &localSigner{key: k, chainID: chainID}, nil
}

func (k *LocalKey) isEnabled(chainID string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.enabled[chainID]
}

func (k *LocalKey) pubKey() (chain.PubKey, error) {
	raw, err := k.pub.MarshalBinary()
	if err != nil {
		return chain.PubKey{}, err
	}
	return chain.PubKey{Type: PubKeyType, Value: base64.StdEncoding.EncodeToString(raw)}, nil
}

func (k *LocalKey) sign(v any) (chain.PubKey, string, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return chain.PubKey{}, "", err
	}
	sig, err := schnorr.Sign(suite, k.priv, msg)
	if err != nil {
		return chain.PubKey{}, "", err
	}
	pk, err := k.pubKey()
	if err != nil {
		return chain.PubKey{}, "", err
	}
	return pk, base64.StdEncoding.EncodeToString(sig), nil
}

type localSigner struct {
	key     *LocalKey
	chainID string
}

func (s *localSigner) SignPermit(_ context.Context, params chain.PermitParams) (chain.PermitToken, error) {
	if params.ChainID != s.chainID {
		return chain.PermitToken{}, fmt.Errorf("%w: %s", ErrUnknownChain, params.ChainID)
	}
	pk, sig, err := s.key.sign(params)
	if err != nil {
		return chain.PermitToken{}, err
	}
	return chain.PermitToken{Params: params, Signature: chain.PermitSignature{PubKey: pk, Signature: sig}}, nil
}

func (s *localSigner) SignTx(_ context.Context, doc chain.TxDoc) (chain.SignedTx, error) {
	if doc.ChainID != s.chainID {
		return chain.SignedTx{}, fmt.Errorf("%w: %s", ErrUnknownChain, doc.ChainID)
	}
	pk, sig, err := s.key.sign(doc)
	if err != nil {
		return chain.SignedTx{}, err
	}
	return chain.SignedTx{Doc: doc, PubKey: pk, Signature: sig}, nil
}

// AddressOf derives the bech32-looking account address of a public key:
// prefix plus the hex of the first 20 bytes of its SHA-256.
func AddressOf(pub kyber.Point) (string, error) {
	raw, err := pub.MarshalBinary()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return addressPrefix + hex.EncodeToString(sum[:20]), nil
}

// VerifyPermit checks a permit signature produced by a LocalKey.
func VerifyPermit(token chain.PermitToken) error {
	return verify(token.Signature.PubKey, token.Signature.Signature, token.Params)
}

// VerifyTx checks a transaction signature produced by a LocalKey and returns
// the signer's address.
func VerifyTx(tx chain.SignedTx) (string, error) {
	if err := verify(tx.PubKey, tx.Signature, tx.Doc); err != nil {
		return "", err
	}
	pub, err := decodePoint(tx.PubKey)
	if err != nil {
		return "", err
	}
	return AddressOf(pub)
}

func verify(pk chain.PubKey, sigB64 string, v any) error {
	pub, err := decodePoint(pk)
	if err != nil {
		return err
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := schnorr.Verify(suite, pub, msg, sig); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return nil
}

func decodePoint(pk chain.PubKey) (kyber.Point, error) {
	if pk.Type != PubKeyType {
		return nil, fmt.Errorf("%w: pub key type %q", ErrBadSignature, pk.Type)
	}
	raw, err := base64.StdEncoding.DecodeString(pk.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	pub := suite.Point()
	if err := pub.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return pub, nil
}
