package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoadPrivateKey reads a PEM encoded RSA private key (PKCS#1 or PKCS#8)
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}
	return key, nil
}

// PublicKeyFingerprint returns the "SHA256:<base64>" fingerprint the account
// registered for the user's public key
func PublicKeyFingerprint(key *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}

// accountLocator normalizes an account identifier for JWT claims: upper case,
// without any region or cloud suffix
func accountLocator(account string) string {
	account = strings.ToUpper(strings.TrimSpace(account))
	if i := strings.Index(account, "."); i >= 0 {
		account = account[:i]
	}
	return account
}

// NewKeyPairJWT signs a key-pair authentication token for account/user
func NewKeyPairJWT(account, user string, key *rsa.PrivateKey, now time.Time, lifetime time.Duration) (string, error) {
	fingerprint, err := PublicKeyFingerprint(&key.PublicKey)
	if err != nil {
		return "", err
	}

	qualifiedUser := accountLocator(account) + "." + strings.ToUpper(user)
	claims := jwt.RegisteredClaims{
		Issuer:    qualifiedUser + "." + fingerprint,
		Subject:   qualifiedUser,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
