// Package cookie reads and writes HTTP cookies with secure defaults and
// optional AES-256-GCM encryption.
//
// # Basic Usage
//
//	manager, err := cookie.New([]string{"your-32-char-secret-key-here!!!!"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Plain value
//	err = manager.Set(w, "user_id", "12345", cookie.WithMaxAge(3600))
//	value, err := manager.Get(r, "user_id")
//	if errors.Is(err, cookie.ErrCookieNotFound) {
//		// Cookie doesn't exist
//	}
//
//	// Expire immediately
//	manager.Delete(w, "user_id")
//
// # Encrypted Cookies
//
// SetEncrypted and SetJSON seal the value with AES-256-GCM. The key is the
// SHA-256 digest of the secret, so tampered or foreign values fail with
// ErrDecryptionFailed:
//
//	err := manager.SetJSON(w, "session", payload)
//	err = manager.GetJSON(r, "session", &payload)
//
// # Key Rotation
//
// Pass several secrets, newest first. New values are sealed with the first,
// reads try every secret:
//
//	manager, err := cookie.New([]string{newSecret, oldSecret})
//
// # Configuration
//
//	var cfg cookie.Config
//	config.MustLoad(&cfg) // COOKIE_SECRETS, COOKIE_SECURE, ...
//	manager, err := cookie.NewFromConfig(cfg)
//
// Defaults are Path=/, HttpOnly and SameSite=Lax. Per-call options override
// them, including HttpOnly and SameSite.
package cookie
