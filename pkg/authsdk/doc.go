/*
Package authsdk provides a client SDK for the Newsick auth gateway.

# Overview

The gateway exposes two credential endpoints that share one reply shape:

	POST /api/login     {"identifier", "secret"}
	POST /api/register  {"identifier", "secret", "displayName"}

	-> {"success": bool, "token": string|null, "message": string|null}

plus GET /api/profile (bearer token) and GET /livez. The token is opaque to
the client, it is only handed back on later authenticated calls.

	client := authsdk.NewSDKClient("https://gateway.example.com")

	outcome, err := client.Login(ctx, authsdk.Credentials{
		Identifier: "a@b.com",
		Secret:     "secret1",
	})
	if err != nil {
		// *ValidationError or *TransportError
		return err
	}
	if err := outcome.Err(); err != nil {
		// *RejectionError, success=false
		return err
	}
	profile, err := client.GetProfile(ctx, outcome.TokenValue())

# Credentials

Credentials is the one canonical shape for both flows. The identifier is an
email or a username; NormalizeIdentifier trims it and lower-cases emails.
Registration needs an email, a password of at least MinSecretLength
characters and a non-blank display name:

	creds.ValidateLogin()          // identifier and secret present
	creds.ValidateRegistration()   // email well-formed, secret long enough
	authsdk.ValidateDisplayName(n) // non-blank, no @, at most 32 chars

Login and Register run these checks before sending when ValidateLocally is
set (the default), so an invalid form never reaches the network.

# Error Handling

Errors fall into three types:

  - ValidationError: local input problem, found before any network call
  - RejectionError: the gateway answered success=false, its message is
    meant for the user as is
  - TransportError: network, timeout or parse failure

DisplayMessage maps any of them to the string a screen should show. Transport
failures always map to ConnectionErrorMessage so nothing internal leaks.

	if err != nil {
		fmt.Println(authsdk.DisplayMessage(err))
	}

# Request IDs

Every request carries an X-Request-ID header. Use WithRequestID to pick the
id, otherwise a fresh ULID is generated per request. The session controller
uses its attempt id here so a login can be followed across both logs.

# Thread Safety

SDKClient holds no per-request state and is safe for concurrent use.
*/
package authsdk
