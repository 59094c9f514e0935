// Package secrets seals small payloads, such as persisted UI state, with
// AES-256-GCM.
//
// A Sealer is built from a 32-byte master key and a purpose string. The cipher
// key is derived with HKDF-SHA256, so the same master key can serve several
// purposes without their ciphertexts being interchangeable.
//
//	key, err := secrets.DecodeKey(os.Getenv("UISTATE_ENCRYPTION_KEY"))
//	if err != nil {
//		return err
//	}
//	sealer, err := secrets.NewSealer(key, "ui-state")
//	if err != nil {
//		return err
//	}
//	sealed, err := sealer.Seal(data)
//
// Use GenerateKey and EncodeKey to create a key for configuration.
package secrets
