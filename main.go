package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-authgate/mailbridge/internal/bootstrap"
	"github.com/go-authgate/mailbridge/internal/config"
	"github.com/go-authgate/mailbridge/internal/version"
)

var commands = map[string]func(){
	"server":  runServer,
	"version": version.PrintVersion,
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.PrintVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	run, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
	run()
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Links Gmail mailboxes to user accounts and mirrors their messages")
	fmt.Println("\nCommands:")
	fmt.Println("  server     Start the MailBridge HTTP server")
	fmt.Println("  version    Show version information")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
	fmt.Println("\nConfiguration is read from the environment and an optional .env file.")
}

func runServer() {
	cfg := config.Load()

	// Cancels startup work (database, Redis) if interrupted before the server is up
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx, cfg); err != nil {
		log.Fatalf("Failed to start %s: %v", version.App, err)
	}
}
