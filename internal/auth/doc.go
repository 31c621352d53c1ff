// Package auth handles end-user authentication for the API surface.
//
// # Tokens
//
// API requests authenticate with HS256-signed JWTs carrying the user ID in
// the "sub" claim:
//
//	verifier := auth.NewJWTVerifier([]byte(secret))
//	token, err := verifier.Generate(userID, 24*time.Hour)
//	userID, err := verifier.Verify(token)
//
// # Passwords
//
// Passwords are stored as bcrypt hashes:
//
//	hash, err := auth.HashPassword(plaintext)
//	ok := auth.CheckPassword(hash, plaintext)
//
// This package covers end-user credentials only. The bearer credential for
// the external agent service is owned by the agent package.
package auth
