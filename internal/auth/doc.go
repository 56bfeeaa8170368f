// Package auth implements the authentication and authorization layer:
// stateless credential tokens, dual-channel transport (bearer header and
// HTTP-only cookie), the session guard middleware, the step-up password
// verifier and the login rate limiter.
//
// Tokens are signed HS256 JWTs that embed only the user ID and an expiry;
// nothing is persisted server-side, so validity is entirely a function of
// signature and clock. All verification failures surface to callers as a
// single uniform 401 so that forgery, expiry and deleted-account cases are
// indistinguishable from outside.
package auth
