package internal

import (
	"bitwise74/caption-api/internal/service"
	"bitwise74/caption-api/pkg/security"

	"gorm.io/gorm"
)

// Deps holds everything handlers need, built once at startup
type Deps struct {
	DB        *gorm.DB
	Hasher    *security.PBKDF2Hash
	Tokens    *security.Tokens
	Resolver  *security.Resolver
	Captioner service.Captioner

	// Cookie settings shared by the auth handlers
	SecureCookies bool
	// Hex chars in a minted guest id, tunable entropy
	GuestIDLength int
}
