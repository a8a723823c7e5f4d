// Package auth implements the local identity contract: three-tier PIN
// validation (admin, manager, worker) and the token-based admin-PIN reset
// flow.
package auth

import (
	"errors"
	"regexp"
	"strings"

	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
	"golang.org/x/crypto/bcrypt"
)

// Role classifies who a PIN belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

// Identity is the result of a successful PIN match.
type Identity struct {
	Role Role
	Name string
}

// ErrPinMismatch is returned when a PIN matches no admin, manager or
// worker code.
var ErrPinMismatch = errors.New("PIN does not match any admin, manager or worker code")

// workerPinRe enforces the 4-6 digit rule that applies to worker PINs
// only; admin and manager codes carry no length constraint.
var workerPinRe = regexp.MustCompile(`^\d{4,6}$`)

// Validator resolves PINs against stored settings and users.
type Validator struct {
	data *store.Data
}

// NewValidator returns a validator reading from the given data layer.
func NewValidator(data *store.Data) *Validator {
	return &Validator{data: data}
}

// ValidatePin matches a PIN in priority order: admin code, then manager
// codes, then worker PINs. First match wins.
func (v *Validator) ValidatePin(pin string) (Identity, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return Identity{}, errors.New("PIN is required")
	}

	settings := v.data.ReadSettings()

	if matchesAdmin(settings, pin) {
		name := settings.AdminName
		if name == "" {
			name = settings.OwnerName
		}
		if name == "" {
			name = "Admin"
		}
		return Identity{Role: RoleAdmin, Name: name}, nil
	}

	for _, m := range settings.Managers {
		if m.Code != "" && strings.TrimSpace(m.Code) == pin {
			return Identity{Role: RoleManager, Name: m.Name}, nil
		}
	}

	if workerPinRe.MatchString(pin) {
		for _, u := range v.data.ReadUsers() {
			if u.Pin == pin {
				return Identity{Role: RoleWorker, Name: u.DisplayName}, nil
			}
		}
	}

	return Identity{}, ErrPinMismatch
}

// matchesAdmin accepts the plain admin code or, once the email reset flow
// has run, the bcrypt hash it stored.
func matchesAdmin(settings models.Settings, pin string) bool {
	if settings.AdminCode != "" && settings.AdminCode == pin {
		return true
	}
	if settings.AdminPinHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(settings.AdminPinHash), []byte(pin)) == nil
	}
	return false
}
