package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/fairflowapp/fairflow/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long a PIN-reset token stays valid.
const TokenTTL = time.Hour

// bcryptCost matches the salt rounds of the original reset backend.
const bcryptCost = 10

var (
	// ErrTokenInvalid is returned for unknown or already-used tokens.
	ErrTokenInvalid = errors.New("reset token is invalid or has already been used")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("reset token has expired")
	// ErrBadNewPin is returned when the replacement PIN fails validation.
	ErrBadNewPin = errors.New("new PIN must be 4-6 digits")
)

type tokenRecord struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// ResetFlow implements the three-step admin-PIN reset: generate a
// single-use token, verify it, and confirm with a new PIN that is hashed
// before storage.
type ResetFlow struct {
	data *store.Data
	now  func() time.Time
}

// NewResetFlow returns a reset flow over the given data layer.
func NewResetFlow(data *store.Data) *ResetFlow {
	return &ResetFlow{data: data, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (f *ResetFlow) WithClock(now func() time.Time) *ResetFlow {
	f.now = now
	return f
}

func (f *ResetFlow) readTokens() map[string]tokenRecord {
	tokens := map[string]tokenRecord{}
	raw, ok, err := f.data.KV().Get(store.KeyResetTokens)
	if err == nil && ok && len(raw) > 0 {
		_ = json.Unmarshal(raw, &tokens)
	}
	return tokens
}

func (f *ResetFlow) writeTokens(tokens map[string]tokenRecord) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return f.data.KV().Set(store.KeyResetTokens, raw)
}

// GenerateToken creates a reset token valid for one hour. The caller is
// responsible for delivering it (the original flow emails a link).
func (f *ResetFlow) GenerateToken() (string, error) {
	token := uuid.NewString()
	tokens := f.readTokens()
	tokens[token] = tokenRecord{ExpiresAt: f.now().Add(TokenTTL)}
	if err := f.writeTokens(tokens); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyToken checks that a token exists and has not expired.
func (f *ResetFlow) VerifyToken(token string) error {
	rec, ok := f.readTokens()[token]
	if !ok {
		return ErrTokenInvalid
	}
	if f.now().After(rec.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

// ConfirmReset validates the token and the new PIN, stores a bcrypt hash
// of the PIN in settings, and consumes the token. Tokens are single-use.
func (f *ResetFlow) ConfirmReset(token, newPin string) error {
	if err := f.VerifyToken(token); err != nil {
		return err
	}
	if !workerPinRe.MatchString(newPin) {
		return ErrBadNewPin
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPin), bcryptCost)
	if err != nil {
		return err
	}

	settings := f.data.ReadSettings()
	settings.AdminPinHash = string(hashed)
	settings.AdminCode = "" // the plain code is retired once a hash exists
	if err := f.data.WriteSettings(settings); err != nil {
		return err
	}

	tokens := f.readTokens()
	delete(tokens, token)
	return f.writeTokens(tokens)
}
