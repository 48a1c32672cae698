package httpapi

import (
	"github.com/tinoosan/fintrack/internal/auth"
	"github.com/tinoosan/fintrack/internal/service/user"
)

// Compile-time checks that the token service satisfies both sides of authentication.
var (
	_ TokenVerifier    = (*auth.Tokens)(nil)
	_ user.TokenIssuer = (*auth.Tokens)(nil)
)
