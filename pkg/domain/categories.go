package domain

import (
	"fmt"

	dErrors "fides/pkg/domain-errors"
)

// Integer-coded category sets. Each registry configures behaviour per
// category (issuer authorization per credential type, risk thresholds per
// activity type), so the sets are closed and validated at trust boundaries.

// ConsentType identifies a category of data a user can share.
type ConsentType uint8

const (
	ConsentTypeAccountData    ConsentType = 1
	ConsentTypeTransactionLog ConsentType = 2
	ConsentTypeCreditHistory  ConsentType = 3
	ConsentTypeContactDetails ConsentType = 4
	ConsentTypeRiskProfile    ConsentType = 5
)

var validConsentTypes = map[ConsentType]bool{
	ConsentTypeAccountData:    true,
	ConsentTypeTransactionLog: true,
	ConsentTypeCreditHistory:  true,
	ConsentTypeContactDetails: true,
	ConsentTypeRiskProfile:    true,
}

// ParseConsentType validates an integer-coded consent type from external input.
func ParseConsentType(v uint8) (ConsentType, error) {
	t := ConsentType(v)
	if !t.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown consent type: %d", v))
	}
	return t, nil
}

// IsValid checks membership in the closed consent-type set.
func (t ConsentType) IsValid() bool { return validConsentTypes[t] }

// CredentialType identifies a category of claim an issuer can attest to.
type CredentialType uint8

const (
	CredentialTypeKYC           CredentialType = 1
	CredentialTypeAML           CredentialType = 2
	CredentialTypeAccreditation CredentialType = 3
	CredentialTypeProofOfFunds  CredentialType = 4
	CredentialTypeResidency     CredentialType = 5
)

var validCredentialTypes = map[CredentialType]bool{
	CredentialTypeKYC:           true,
	CredentialTypeAML:           true,
	CredentialTypeAccreditation: true,
	CredentialTypeProofOfFunds:  true,
	CredentialTypeResidency:     true,
}

// ParseCredentialType validates an integer-coded credential type.
func ParseCredentialType(v uint8) (CredentialType, error) {
	t := CredentialType(v)
	if !t.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown credential type: %d", v))
	}
	return t, nil
}

// IsValid checks membership in the closed credential-type set.
func (t CredentialType) IsValid() bool { return validCredentialTypes[t] }

// ActivityType identifies a category of user activity scored for fraud risk.
type ActivityType uint8

const (
	ActivityTypeLogin         ActivityType = 1
	ActivityTypeTransaction   ActivityType = 2
	ActivityTypeWithdrawal    ActivityType = 3
	ActivityTypeProfileChange ActivityType = 4
	ActivityTypeAPIAccess     ActivityType = 5
)

var validActivityTypes = map[ActivityType]bool{
	ActivityTypeLogin:         true,
	ActivityTypeTransaction:   true,
	ActivityTypeWithdrawal:    true,
	ActivityTypeProfileChange: true,
	ActivityTypeAPIAccess:     true,
}

// ParseActivityType validates an integer-coded activity type.
func ParseActivityType(v uint8) (ActivityType, error) {
	t := ActivityType(v)
	if !t.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown activity type: %d", v))
	}
	return t, nil
}

// IsValid checks membership in the closed activity-type set.
func (t ActivityType) IsValid() bool { return validActivityTypes[t] }
