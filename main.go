package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	// CLI-specific flags
	configFile := flag.String("c", "", "pipeline.Config JSON file (default: DefaultConfig scenario)")
	outputFile := flag.String("o", "", "output parquet file (CLI mode only; empty skips persistence)")

	// Server-specific flags
	isServer := flag.Bool("server", false, "run in HTTP/WebSocket server mode")
	serverConfigFile := flag.String("server-config", "", "server YAML config file (listen_addr, dfe_addr, default_run)")
	port := flag.Int("p", 8080, "port to listen on (server mode only; overrides server-config's listen_addr)")

	// DFE/CDR collaborator.
	dfeAddr := flag.String("dfe", "", "address of an external dfe.RemoteClient service (empty uses dfe.Null)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "  One-shot mode: linksim [options]")
		fmt.Fprintln(os.Stderr, "  Server mode:   linksim --server [options]")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *isServer {
		cfg := defaultServerConfig()
		if *serverConfigFile != "" {
			loaded, err := loadServerConfig(*serverConfigFile)
			if err != nil {
				log.Fatalf("server config: %v", err)
			}
			cfg = loaded
		}
		if *dfeAddr != "" {
			cfg.DFEAddr = *dfeAddr
		}

		addr := cfg.ListenAddr
		flag.Visit(func(f *flag.Flag) {
			if f.Name == "p" {
				addr = fmt.Sprintf(":%d", *port)
			}
		})

		serverState.mu.Lock()
		serverState.Config = cfg.Default
		serverState.DeviceAddr = cfg.DFEAddr
		serverState.mu.Unlock()

		runServerAddr(addr)
		return
	}

	runCLI(*configFile, *outputFile, *dfeAddr)
}
