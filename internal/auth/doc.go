// Package auth provides staff authentication for the backend.
//
// Two modes are supported:
//   - "none": no authentication required (default); every request runs
//     as an anonymous staff account
//   - "local": staff accounts stored in the database, with session
//     cookies for browser clients and Bearer tokens for API clients
//
// # Configuration
//
// Set AUTH_MODE to select the mode:
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires account creation and login
//
// For local mode:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// The first account is created with the create-admin CLI command;
// there is no self-service signup.
package auth
