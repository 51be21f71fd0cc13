package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dnsscience/authdnsd/internal/dnsmsg"
	"github.com/dnsscience/authdnsd/internal/kv"
	"github.com/dnsscience/authdnsd/internal/metrics"
	"github.com/dnsscience/authdnsd/internal/ratelimit"
	"github.com/dnsscience/authdnsd/internal/resolver"
	"github.com/dnsscience/authdnsd/internal/router"
	"github.com/dnsscience/authdnsd/internal/transport"
	"github.com/dnsscience/authdnsd/internal/worker"
	"github.com/dnsscience/authdnsd/internal/zone"
)

var (
	udpAddr     = flag.String("udp", "0.0.0.0:53", "UDP listen address")
	tcpAddr     = flag.String("tcp", "0.0.0.0:53", "TCP listen address")
	mode        = flag.String("mode", "zone", "Server mode: zone or kv")
	zoneFile    = flag.String("zone", "", "Zone file to load (default built-in records when unset)")
	zoneFormat  = flag.String("format", "text", "Zone file format: text or dnszone")
	routerZone  = flag.String("router-zone", "", "IP-router zone suffix (empty disables routing)")
	workers     = flag.Int("workers", 0, "Worker pool size (0 = runtime default)")
	qps         = flag.Float64("qps", 0, "Per-client queries/sec (0 = use built-in default)")
	burst       = flag.Int("burst", 0, "Per-client burst size (0 = use built-in default)")
	exemptCIDRs = flag.String("exempt", "", "Comma-separated CIDRs exempt from rate limiting")
	metricsAddr = flag.String("metrics", ":9091", "Prometheus metrics listen address")
	configPath  = flag.String("config", "", "YAML config file (flags override its values)")
	stats       = flag.Bool("stats", true, "Print statistics periodically")
)

func main() {
	flag.Parse()

	if *configPath != "" {
		fc, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		applyConfigFile(fc)
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                                                                  ║")
	fmt.Println("║                 authdnsd - authoritative DNS server             ║")
	fmt.Println("║                                                                  ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Mode:        %s\n", *mode)
	fmt.Printf("  UDP Address: %s\n", *udpAddr)
	fmt.Printf("  TCP Address: %s\n", *tcpAddr)
	if *mode == "zone" {
		fmt.Printf("  Zone File:   %s\n", orDefault(*zoneFile, "<built-in>"))
		fmt.Printf("  Router Zone: %s\n", orDefault(*routerZone, "<disabled>"))
	}
	fmt.Println()

	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		fmt.Fprintf(os.Stderr, "error registering metrics: %v\n", err)
		os.Exit(1)
	}

	asmCfg, err := buildAssemblerConfig(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building server: %v\n", err)
		os.Exit(1)
	}
	asm := resolver.New(asmCfg)

	limiter := ratelimit.New(ratelimitConfig())
	for _, cidr := range splitCSV(*exemptCIDRs) {
		if err := limiter.AddExempt(cidr); err != nil {
			fmt.Fprintf(os.Stderr, "error parsing exempt CIDR %q: %v\n", cidr, err)
			os.Exit(1)
		}
	}

	pool := worker.NewPool(worker.Config{
		Workers: *workers,
		PanicHandler: func(r interface{}) {
			log.Printf("authdnsd: worker panic recovered: %v", r)
		},
	})
	defer pool.Close()

	udpSrv := transport.NewUDPServer(transport.UDPServerConfig{
		Addr:    *udpAddr,
		Handler: asm.Handle,
		Pool:    pool,
		Limiter: limiter,
	})
	if err := udpSrv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error starting UDP listener: %v\n", err)
		os.Exit(1)
	}
	defer udpSrv.Stop()

	tcpCfg := transport.DefaultTCPServerConfig()
	tcpCfg.Addr = *tcpAddr
	tcpCfg.Handler = asm.Handle
	tcpCfg.Pool = pool
	tcpSrv := transport.NewTCPServer(tcpCfg)
	if err := tcpSrv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error starting TCP listener: %v\n", err)
		os.Exit(1)
	}
	defer tcpSrv.Stop()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("metrics listening on %s", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	fmt.Println("authdnsd started successfully!")
	fmt.Println()

	if *stats {
		go printStats(udpSrv, tcpSrv, pool)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println()
	fmt.Println("shutting down...")
}

func buildAssemblerConfig(m *metrics.Metrics) (resolver.Config, error) {
	switch *mode {
	case "kv":
		return resolver.Config{Mode: resolver.ModeKV, KV: kv.NewResolver(kv.NewStore()), Metrics: m}, nil

	case "zone":
		var z *zone.Zone
		if *zoneFile == "" {
			z = zone.DefaultRecords()
		} else {
			var err error
			switch *zoneFormat {
			case "dnszone":
				z, err = zone.LoadYAMLFile(*zoneFile, dnsmsg.DefaultTTL)
			default:
				z, err = zone.LoadFile(*zoneFile, dnsmsg.DefaultTTL)
			}
			if err != nil {
				return resolver.Config{}, err
			}
		}

		cfg := resolver.Config{Mode: resolver.ModeZone, Zone: z, Metrics: m}
		if *routerZone != "" {
			rcfg := router.DefaultConfig()
			rcfg.Zone = dnsmsg.NameFromString(*routerZone)
			cfg.Router = router.New(rcfg)
		}
		return cfg, nil

	default:
		return resolver.Config{}, fmt.Errorf("unknown mode %q (want zone or kv)", *mode)
	}
}

func ratelimitConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	if *qps > 0 {
		cfg.QueriesPerSecond = *qps
	}
	if *burst > 0 {
		cfg.BurstSize = *burst
	}
	return cfg
}

func applyConfigFile(fc *ConfigFile) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fc.UDPAddr != "" && !set["udp"] {
		*udpAddr = fc.UDPAddr
	}
	if fc.TCPAddr != "" && !set["tcp"] {
		*tcpAddr = fc.TCPAddr
	}
	if fc.Mode != "" && !set["mode"] {
		*mode = fc.Mode
	}
	if fc.ZoneFile != "" && !set["zone"] {
		*zoneFile = fc.ZoneFile
	}
	if fc.ZoneFormat != "" && !set["format"] {
		*zoneFormat = fc.ZoneFormat
	}
	if fc.RouterZone != "" && !set["router-zone"] {
		*routerZone = fc.RouterZone
	}
	if fc.Workers != 0 && !set["workers"] {
		*workers = fc.Workers
	}
	if fc.QueriesPerSecond != 0 && !set["qps"] {
		*qps = fc.QueriesPerSecond
	}
	if fc.BurstSize != 0 && !set["burst"] {
		*burst = fc.BurstSize
	}
	if len(fc.ExemptCIDRs) > 0 && !set["exempt"] {
		*exemptCIDRs = strings.Join(fc.ExemptCIDRs, ",")
	}
	if fc.MetricsAddr != "" && !set["metrics"] {
		*metricsAddr = fc.MetricsAddr
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func printStats(udpSrv *transport.UDPServer, tcpSrv *transport.TCPServer, pool *worker.Pool) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		u := udpSrv.Stats()
		t := tcpSrv.Stats()
		p := pool.GetStats()

		fmt.Printf("═══════════════════════════════════════════════════════════\n")
		fmt.Printf("UDP  packets recv=%d sent=%d rate-blocked=%d\n", u.PacketsRecv, u.PacketsSent, u.RateBlocked)
		fmt.Printf("TCP  conns accepted=%d failed=%d\n", t.ConnsAccepted, t.ConnsFailed)
		fmt.Printf("Pool submitted=%d completed=%d dropped=%d rejected=%d failed=%d utilization=%.1f%%\n",
			p.Submitted, p.Completed, p.Dropped, p.Rejected, p.Failed, p.Utilization)
		fmt.Printf("═══════════════════════════════════════════════════════════\n\n")
	}
}
