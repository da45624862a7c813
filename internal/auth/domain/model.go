package domain

// User is the profile returned by GET /auth/me.
type User struct {
	ID          string  `json:"id"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	Role        string  `json:"role,omitempty"`
}

// Session is returned by the login and OTP endpoints.
type Session struct {
	Token     string `json:"token,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	User      *User  `json:"user,omitempty"`
	Verified  bool   `json:"verified,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Token string `json:"token"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}
