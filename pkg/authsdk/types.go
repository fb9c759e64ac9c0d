package authsdk

// ============================================================================
// Credential Types
// ============================================================================

// Credentials is the single canonical credential shape used by both the
// login and the registration flows.
type Credentials struct {
	// Identifier is an email address or a username. Emails are lower-cased
	// by NormalizeIdentifier, usernames are kept as typed.
	Identifier string

	// Secret is the account password, never logged.
	Secret string

	// DisplayName is only sent on registration, it is the public username
	// shown on the profile screen.
	DisplayName string
}

// LoginRequest is the JSON body of POST /api/login.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// RegisterRequest is the JSON body of POST /api/register.
type RegisterRequest struct {
	Identifier  string `json:"identifier"`
	Secret      string `json:"secret"`
	DisplayName string `json:"displayName,omitempty"`
}

// ============================================================================
// Outcome Types
// ============================================================================

// AuthOutcome is the gateway reply to both login and register. Token and
// Message are nullable on the wire.
type AuthOutcome struct {
	Success bool    `json:"success"`
	Token   *string `json:"token"`
	Message *string `json:"message"`

	// StatusCode is the HTTP status the outcome arrived with. Not on the wire.
	StatusCode int `json:"-"`
}

// Succeeded builds a successful outcome carrying token.
func Succeeded(token string) AuthOutcome {
	return AuthOutcome{Success: true, Token: &token}
}

// Rejected builds a failed outcome carrying a user facing message.
func Rejected(message string) AuthOutcome {
	return AuthOutcome{Success: false, Message: &message}
}

// TokenValue returns the token or "" when the gateway sent null.
func (o *AuthOutcome) TokenValue() string {
	if o == nil || o.Token == nil {
		return ""
	}
	return *o.Token
}

// MessageValue returns the message or "" when the gateway sent null.
func (o *AuthOutcome) MessageValue() string {
	if o == nil || o.Message == nil {
		return ""
	}
	return *o.Message
}

// Err returns nil for a successful outcome and a *RejectionError otherwise.
func (o *AuthOutcome) Err() error {
	if o.Success {
		return nil
	}
	return &RejectionError{StatusCode: o.StatusCode, Message: o.MessageValue()}
}

// outcomeWire is used for decoding so that a reply without a "success" key
// is told apart from an explicit false.
type outcomeWire struct {
	Success *bool   `json:"success"`
	Token   *string `json:"token"`
	Message *string `json:"message"`
}

// ============================================================================
// Profile Types
// ============================================================================

// Profile is the signed-in account as returned by GET /api/profile.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by GET /livez and GET /readyz.
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`
}
