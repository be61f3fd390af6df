package models

import (
	"errors"
	"time"

	"github.com/hivemindhq/hivemind/internal/secrets"
)

// Role discriminates the two account variants. It is fixed at creation; there
// is no promotion or demotion path.
type Role string

const (
	RoleObserver Role = "observer"
	RoleSupport  Role = "support"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	return Role(s) == RoleObserver || Role(s) == RoleSupport
}

// Status gates access to most authenticated routes. Only a support caller may
// change it; any status may be set from any other.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ValidStatus reports whether s names a known status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// CardType is the accepted set of card networks.
type CardType string

const (
	CardVisa       CardType = "Visa"
	CardMastercard CardType = "Mastercard"
)

// NotificationPreference selects how an observer wants to be contacted.
type NotificationPreference string

const (
	NotifyText  NotificationPreference = "text"
	NotifyEmail NotificationPreference = "email"
)

// ErrPasswordMismatch is returned by ChangePassword when the supplied current
// password does not verify against the stored hash.
var ErrPasswordMismatch = errors.New("current password is incorrect")

// Account is one registered identity. The common profile applies to both
// roles; Observer carries the observer-only payload and is nil for support
// accounts, so support code cannot reach card fields by accident.
type Account struct {
	ID           string
	Username     string // email address
	Forename     string
	Surname      string
	Address      string
	Role         Role
	Status       Status
	PasswordHash string
	CreatedAt    time.Time

	Observer *ObserverProfile
}

// ObserverProfile holds the fields that only exist for observer accounts.
// Card data is stored in its write-only digest form: first 12 digits and CVV
// only as hashes, last 4 digits in clear.
type ObserverProfile struct {
	AccountBalance         float64
	CardNumberHash         string
	CardNumberLast4        string
	CardName               string
	CardType               CardType
	NotificationPreference NotificationPreference
	CardCVVHash            string
}

// IsObserver reports whether the account holds the observer role.
func (a *Account) IsObserver() bool {
	return a != nil && a.Role == RoleObserver
}

// IsSupport reports whether the account holds the support role.
func (a *Account) IsSupport() bool {
	return a != nil && a.Role == RoleSupport
}

// IsActive reports whether the account may use the authenticated routes.
func (a *Account) IsActive() bool {
	return a != nil && a.Status == StatusActive
}

// FullName is the display name used by views and recipient lists.
func (a *Account) FullName() string {
	return a.Forename + " " + a.Surname
}

// SetPassword replaces the stored credential with a hash of plain.
func (a *Account) SetPassword(h secrets.Hasher, plain string) error {
	hash, err := h.Hash(plain)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// Authenticate reports whether plain verifies against the stored credential.
func (a *Account) Authenticate(h secrets.Hasher, plain string) bool {
	return a.PasswordHash != "" && h.Compare(plain, a.PasswordHash)
}

// ChangePassword swaps the credential only when current verifies first; on any
// failure the stored hash is left untouched.
func (a *Account) ChangePassword(h secrets.Hasher, current, newPassword string) error {
	if !a.Authenticate(h, current) {
		return ErrPasswordMismatch
	}
	return a.SetPassword(h, newPassword)
}

// SetCardDetails encodes card data into the observer profile. Inputs that are
// not exactly 16 (number) or 3 (CVV) characters are ignored without error;
// handlers pre-validate so strict rejection happens before this point.
// Calling this on a non-observer account is a no-op.
func (a *Account) SetCardDetails(h secrets.Hasher, cardNumber, cvv string) {
	if a.Observer == nil {
		return
	}
	digest, _ := secrets.EncodeCard(h, cardNumber, cvv)
	if digest.NumberHash != "" {
		a.Observer.CardNumberHash = digest.NumberHash
		a.Observer.CardNumberLast4 = digest.Last4
	}
	if digest.CVVHash != "" {
		a.Observer.CardCVVHash = digest.CVVHash
	}
}

// AccountUpdate is a partial update of the common profile. Nil means "leave
// unchanged"; a pointer to the empty string means "set to empty", so absent
// and present-but-empty stay distinguishable.
type AccountUpdate struct {
	Forename *string
	Surname  *string
	Address  *string
}

// ObserverUpdate is a partial update of the observer payload.
type ObserverUpdate struct {
	CardNumberHash         *string
	CardNumberLast4        *string
	CardCVVHash            *string
	CardName               *string
	CardType               *CardType
	NotificationPreference *NotificationPreference
}

// Apply copies the set fields of u onto the account's common profile.
func (u AccountUpdate) Apply(a *Account) {
	if u.Forename != nil {
		a.Forename = *u.Forename
	}
	if u.Surname != nil {
		a.Surname = *u.Surname
	}
	if u.Address != nil {
		a.Address = *u.Address
	}
}

// Apply copies the set fields of u onto the observer payload. No-op when the
// account has no observer payload.
func (u ObserverUpdate) Apply(a *Account) {
	if a.Observer == nil {
		return
	}
	p := a.Observer
	if u.CardNumberHash != nil {
		p.CardNumberHash = *u.CardNumberHash
	}
	if u.CardNumberLast4 != nil {
		p.CardNumberLast4 = *u.CardNumberLast4
	}
	if u.CardCVVHash != nil {
		p.CardCVVHash = *u.CardCVVHash
	}
	if u.CardName != nil {
		p.CardName = *u.CardName
	}
	if u.CardType != nil {
		p.CardType = *u.CardType
	}
	if u.NotificationPreference != nil {
		p.NotificationPreference = *u.NotificationPreference
	}
}
