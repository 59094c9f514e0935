// Package uistate persists a single UI state snapshot so a flow can survive a
// short process restart.
//
// Backends share the Backend[T] interface and return ErrNoSnapshot when
// nothing was saved:
//
//   - Memory keeps the value in process.
//   - File writes JSON atomically through a temporary file and rename.
//   - Redis stores JSON under one key with a TTL using pkg/redis.
//
// Open picks a backend from Config, which loads from UISTATE_* variables:
//
//	var cfg uistate.Config
//	if err := config.Load(&cfg, config.WithPrefix(uistate.EnvPrefix)); err != nil {
//	    return err
//	}
//	backend, err := uistate.Open[phoneauth.AuthUIState](ctx, cfg,
//	    uistate.WithRedisConfig(redisCfg),
//	)
//	if err != nil {
//	    return err
//	}
//	defer backend.Close()
//
// Snapshots are encoded with encoding/json, so T controls its layout through
// struct tags. Setting UISTATE_ENCRYPTION_KEY seals file and redis snapshots
// with a secrets.Sealer; WithSealer does the same for hand-built backends.
package uistate
