// File: lixenwraith/configtree/doc.go

// Package configtree provides typed key-value configuration storage over a
// pluggable backend: a flat TOML, JSON or YAML file, a bbolt database, a
// SQLite table, or memory.
//
// Values are one of string, bool, uint32, int32, uint64 or int64. Call sites
// stay the same whichever backend the platform selects.
//
// Quick Start:
//
//	cfg, err := configtree.NewBuilder().WithApp("myapp").Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Open(false); err != nil {
//	    log.Fatal(err)
//	}
//	defer cfg.Close()
//
//	var port uint32
//	if err := configtree.Read(cfg, "port", &port, false); errors.Is(err, configtree.ErrKeyNotFound) {
//	    port = 8080
//	}
//	_ = configtree.Write(cfg, "api_token", token, true)
//
// Sessions:
// A Config is idle until Open succeeds. Key operations on an idle or closed
// Config return ErrNotOpen. Close flushes the backend; writes to the file,
// bolt and SQLite backends become durable only then. Open(true) starts a
// write-only session whose flush replaces the stored content.
//
// Enforced reads:
// After SetEnforceRead, a failed Read logs the failure and panics with
// *EnforcedReadError. Use it for keys the program cannot run without.
//
// Masking:
// The masked argument of Read and Write hides the value from log output
// only; the stored value is unchanged.
//
// Default locations:
// On Windows the default backend is a bbolt database at
// %APPDATA%\<app>\config.db. Elsewhere it is a TOML file at
// $XDG_CONFIG_HOME/<app>/config.toml.
package configtree
