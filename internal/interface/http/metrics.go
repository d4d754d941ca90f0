package handlers

import "expvar"

// authStats is published at /debug/vars under "auth" when debug metrics are enabled.
var authStats = expvar.NewMap("auth")

const (
	statSignupOK         = "signup_ok"
	statSignupEmailTaken = "signup_email_taken"
	statLoginOK          = "login_ok"
	statLoginFailed      = "login_failed"
	statUnauthorized     = "unauthorized"
)

func count(name string) { authStats.Add(name, 1) }
