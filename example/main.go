// FILE: example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/lixenwraith/configtree"
)

// AppConfig is the typed view of the settings written below
type AppConfig struct {
	Server struct {
		Host     string        `toml:"host"`
		Port     uint32        `toml:"port"`
		LogLevel string        `toml:"log_level"`
		Timeout  time.Duration `toml:"timeout"`
	} `toml:"server"`
	APIToken string `toml:"api_token"`
}

func main() {
	dir, err := os.MkdirTemp("", "configtree-example")
	if err != nil {
		log.Fatalf("❌ Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	configFilePath := filepath.Join(dir, "config.toml")

	// =========================================================================
	// PART 1: WRITE-ONLY SESSION
	// Open(true) skips loading; Close replaces the file with what was written.
	// =========================================================================
	log.Println("➡️  PART 1: Writing initial settings...")

	cfg := configtree.NewBuilder().
		WithBackend(configtree.BackendFile).
		WithPath(configFilePath).
		MustBuild()

	if err := cfg.Open(true); err != nil {
		log.Fatalf("❌ Open failed: %v", err)
	}
	must(configtree.Write(cfg, "server.host", "localhost", false))
	must(configtree.Write(cfg, "server.port", uint32(8080), false))
	must(configtree.Write(cfg, "server.log_level", "info", false))
	must(configtree.Write(cfg, "server.timeout", "15s", false))
	must(configtree.Write(cfg, "api_token", "example-token", true))
	if err := cfg.Close(); err != nil {
		log.Fatalf("❌ Close failed: %v", err)
	}
	log.Printf("✅ Initial settings saved to %s.", configFilePath)

	// =========================================================================
	// PART 2: TYPED OPTIONS SHARED WITH COMMAND-LINE FLAGS
	// Stored values load first; flags given on the command line override them.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Loading options and parsing flags...")

	port := configtree.NewOption("server.port", uint32(80), "listen port")
	logLevel := configtree.NewOption("server.log_level", "warn", "log level")
	token := configtree.NewOption("api_token", "", "API token")
	token.Masked = true

	if err := cfg.Open(false); err != nil {
		log.Fatalf("❌ Open failed: %v", err)
	}
	must(configtree.ReadOption(cfg, port, false))
	must(configtree.ReadOption(cfg, logLevel, false))
	must(configtree.ReadOption(cfg, token, false))

	fs := pflag.NewFlagSet("example", pflag.ExitOnError)
	port.BindFlag(fs)
	logLevel.BindFlag(fs)
	token.BindFlag(fs)
	// ./example --server.port 9090 --server.log_level debug
	_ = fs.Parse(os.Args[1:])

	must(configtree.WriteOption(cfg, port, false))
	must(configtree.WriteOption(cfg, logLevel, false))
	log.Printf("✅ port=%d log_level=%s api_token=%s", port.Get(), logLevel.Get(), token)

	// =========================================================================
	// PART 3: STRUCT DECODING AND REQUIRED KEYS
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Scanning into a struct...")

	var app AppConfig
	must(cfg.Scan(&app))
	printCurrentState(&app, "Scanned State")

	var missing string
	if err := configtree.Read(cfg, "database.url", &missing, false); errors.Is(err, configtree.ErrKeyNotFound) {
		log.Println("✅ Optional key database.url is absent, as expected.")
	}

	if err := cfg.Close(); err != nil {
		log.Fatalf("❌ Close failed: %v", err)
	}
}

func must(err error) {
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// printCurrentState is a helper to display the typed config state.
func printCurrentState(cfg *AppConfig, title string) {
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Server Host:      %s\n", cfg.Server.Host)
	fmt.Printf("     Server Port:      %d\n", cfg.Server.Port)
	fmt.Printf("     Server Log Level: %s\n", cfg.Server.LogLevel)
	fmt.Printf("     Server Timeout:   %s\n", cfg.Server.Timeout)
	fmt.Printf("     API Token:        %s\n", configtree.Redact(cfg.APIToken, true))
	fmt.Println("   --------------------------------------------------")
}
