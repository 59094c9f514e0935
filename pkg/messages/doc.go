// Package messages holds the user-facing texts of the sign-in flow: timeout
// notices, the alternate sign-in action label and error messages.
//
// Texts live in YAML files keyed by language, with nested keys flattened to
// dotted paths:
//
//	en:
//	  timeout:
//	    request: "Sending the code is taking longer than expected."
//
// English and Vietnamese are embedded. Load picks the bundled language closest
// to a BCP 47 locale using golang.org/x/text/language, and WithSource layers
// application-provided YAML on top.
//
//	cat := messages.MustLoad("vi-VN")
//	cat.Text(messages.KeyAlternateSignIn)
package messages
