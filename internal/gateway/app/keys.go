package app

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcos777-ux/Newsick-public/pkg/cryptox"
	"github.com/marcos777-ux/Newsick-public/pkg/jwtx"
)

// InitSigningKey loads or generates the Ed25519 token key and returns its
// signer together with a verifier that trusts it.
//
// Without GATEWAY_SIGNING_KEY_FILE the key is ephemeral and every token
// becomes invalid on restart, same as the accounts.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.EdDSASigner, jwtx.Verifier, error) {
	pemKey, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, nil, err
	}

	kid, err := keyID(pemKey)
	if err != nil {
		return nil, nil, err
	}

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, err
	}

	mode := "persistent"
	if cfg.SigningKeyFile == "" {
		mode = "ephemeral"
	}
	logger.Info("signing key ready", "kid", kid, "mode", mode)

	return signer, jwtx.NewVerifierEdDSA(keys, cfg.Issuer), nil
}

// keyID derives a stable kid from the public key so a key loaded from disk
// keeps its id across restarts.
func keyID(pemKey []byte) (string, error) {
	s, err := jwtx.NewSignerEdDSA("tmp", pemKey)
	if err != nil {
		return "", fmt.Errorf("failed to load signing key: %w", err)
	}
	pub, ok := s.Public().(ed25519.PublicKey)
	if !ok {
		return "", errors.New("signing key is not Ed25519")
	}
	sum := sha256.Sum256(pub)
	return base64.RawURLEncoding.EncodeToString(sum[:12]), nil
}
