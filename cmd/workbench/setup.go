package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rflorenc/distribution-workbench/internal/config"
	"github.com/rflorenc/distribution-workbench/internal/logging"
	"github.com/rflorenc/distribution-workbench/internal/models"
	"github.com/rflorenc/distribution-workbench/internal/platform"
)

// loadConfig reads the config file named by --config and applies the flags
// that were set explicitly on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if f := flags.Lookup("listen"); f != nil && f.Changed {
		cfg.Listen = f.Value.String()
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if f := flags.Lookup("demo"); f != nil && f.Changed {
		cfg.Demo, _ = flags.GetBool("demo")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)
	return cfg, nil
}

// connect returns the remote client for cfg. Demo mode uses a seeded
// in-memory service; otherwise the configured endpoint is discovered and
// pinged before use.
func connect(ctx context.Context, cfg *config.Config) (platform.RemoteClient, error) {
	if cfg.Demo {
		logging.Info("Main", "demo mode: using an in-memory service")
		return demoClient(), nil
	}
	if !cfg.HasEndpoint() {
		return nil, fmt.Errorf("no endpoint configured; set endpoint.host in the config file or use --demo")
	}
	ep := cfg.RemoteEndpoint()
	logging.Info("Main", "endpoint %s (%s) token=%s", ep.Name, ep.BaseURL(), ep.MaskedToken())

	client := platform.NewHTTPClient(ep)
	if info := platform.Discover(ctx, client); info != nil {
		logging.Info("Main", "service version %s, API prefix %s", info.Version, client.APIPrefix())
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", ep.Name, err)
	}
	return client, nil
}

func demoClient() *platform.MemoryClient {
	m := platform.NewMemoryClient()
	m.SetLatency(400 * time.Millisecond)
	now := time.Now().UTC()
	m.Seed(&models.Distribution{
		ID: "E2QWRUHAPOMQZL", OriginBucket: "assets", DomainName: "d111111abcdef8.cdn.example.net",
		Enabled: true, Deployed: true, Aliases: []string{"static.example.com"}, Status: "Deployed", LastModified: now,
	})
	m.Seed(&models.Distribution{
		ID: "E1K4QX7Z3PLN8A", OriginBucket: "media", DomainName: "d222222abcdef8.cdn.example.net",
		Enabled: false, Deployed: true, Aliases: []string{}, Status: "Deployed", LastModified: now,
	})
	m.Seed(&models.Distribution{
		ID: "E3M9VB2C5TR7YW", OriginBucket: "downloads", DomainName: "d333333abcdef8.cdn.example.net",
		Enabled: false, Deployed: false, Aliases: []string{"dl.example.com"}, Status: "InProgress", LastModified: now,
	})
	m.SeedMetadata("reports/q3.csv", map[string]string{"owner": "finance", "retention": "7y"})
	m.SeedMetadata("index.html", map[string]string{"cache-control": "max-age=60"})
	return m
}
