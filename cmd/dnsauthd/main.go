// Command dnsauthd is an authoritative DNS server. It loads zone files
// from a directory, serves them over UDP and TCP, and optionally
// exposes a read-only operational HTTP surface (/healthz, /stats).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jthorne/dnsauthd/internal/api"
	"github.com/jthorne/dnsauthd/internal/config"
	"github.com/jthorne/dnsauthd/internal/edns"
	"github.com/jthorne/dnsauthd/internal/helpers"
	"github.com/jthorne/dnsauthd/internal/logging"
	"github.com/jthorne/dnsauthd/internal/resolver"
	"github.com/jthorne/dnsauthd/internal/server"
	"github.com/jthorne/dnsauthd/internal/zone"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values. Flags override the
// loaded config; an unset flag leaves the config's value untouched.
type cliFlags struct {
	configPath string
	host       string
	port       int
	zonesDir   string
	noTCP      bool
	jsonLogs   bool
	debug      bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&f.host, "host", "", "Override DNS server bind host")
	flag.IntVar(&f.port, "port", 0, "Override DNS server bind port")
	flag.StringVar(&f.zonesDir, "zones", "", "Override zone file directory")
	flag.BoolVar(&f.noTCP, "no-tcp", false, "Disable the TCP server")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.zonesDir != "" {
		cfg.Zones.Directory = f.zonesDir
	}
	if f.jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if f.debug {
		cfg.Logging.Level = "DEBUG"
	}
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load(config.ResolveConfigPath(flags.configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyCLIOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	zones, tree, err := loadZones(cfg)
	if err != nil {
		return fmt.Errorf("loading zones: %w", err)
	}
	logger.Info("zones loaded", "count", len(zones), "directory", cfg.Zones.Directory)

	cookieSecret, err := cfg.CookieSecret()
	if err != nil {
		return fmt.Errorf("cookie secret: %w", err)
	}

	ednsCfg := edns.Config{
		CookieSecret:    cookieSecret,
		CookieStrategy:  cfg.CookieStrategy(),
		IdentityEnabled: cfg.EDNS.IdentityEnabled,
		Identity:        []byte(cfg.EDNS.Identity),
	}

	maxUDP := helpers.ClampIntToUint16(cfg.Server.MaxUDPPayload)
	res := resolver.New(tree, ednsCfg, maxUDP)
	stats := server.NewDNSStats()
	handler := &server.QueryHandler{
		Logger:   logger,
		Resolver: res,
		Stats:    stats,
		Timeout:  cfg.QueryTimeoutDuration(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("dnsauthd starting", "addr", addr, "workers", cfg.Server.Workers.String(), "tcp", !flags.noTCP)

	udp := &server.UDPServer{Logger: logger, Handler: handler, MaxUDPPayload: maxUDP}
	var tcp *server.TCPServer
	if !flags.noTCP {
		tcp = &server.TCPServer{Logger: logger, Handler: handler}
	}

	var apiSrv *api.Server
	if cfg.API.Enabled {
		apiSrv = api.New(cfg, logger)
		apiSrv.Handler().SetZones(zones)
		apiSrv.Handler().SetDNSStats(stats)
		logger.Info("api starting", "addr", apiSrv.Addr())
		go func() {
			if serveErr := apiSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("api server error", "err", serveErr)
				cancel()
			}
		}()
	}

	errCh := make(chan error, 2)
	go func() { errCh <- udp.Run(ctx, addr) }()
	if tcp != nil {
		go func() { errCh <- tcp.Run(ctx, addr) }()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("transport exited early", "err", err)
			cancel()
		}
	}

	stopTimeout := 5 * time.Second
	_ = udp.Stop(stopTimeout)
	if tcp != nil {
		_ = tcp.Stop(stopTimeout)
	}
	if apiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), stopTimeout)
		_ = apiSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	logger.Info("dnsauthd stopped")
	return nil
}

// loadZones parses every file in cfg.Zones.Files, or, when that list is
// empty, every zone file discovered in cfg.Zones.Directory, returning both the
// individual zones (for reporting) and their merged tree (for the
// resolver).
func loadZones(cfg *config.Config) ([]*zone.Zone, *zone.Tree, error) {
	files := cfg.Zones.Files
	if len(files) == 0 {
		var err error
		files, err = zone.DiscoverZoneFiles(cfg.Zones.Directory)
		if err != nil {
			return nil, nil, err
		}
	}

	tree := zone.NewTree()
	zones := make([]*zone.Zone, 0, len(files))
	for _, f := range files {
		z, err := zone.LoadFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f, err)
		}
		tree.Merge(z.Tree)
		zones = append(zones, z)
	}
	return zones, tree, nil
}
