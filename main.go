package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/net/proxy"
	_ "modernc.org/sqlite"

	"github.com/shineliang/reddit-intent-leads-cli/config"
)

//go:embed data/migrations/*.sql
var embedMigrations embed.FS

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &opts))
	slog.SetDefault(logger)

	args := os.Args[1:]
	cmd := "scan"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "scan":
		err = runScanCmd(ctx, logger, args)
	case "drafts":
		err = runDraftsCmd(ctx, logger, args)
	case "keywords":
		err = runKeywordsCmd(args)
	case "key":
		err = runKeyCmd(args)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `rilf - Reddit Intent Lead Finder

Usage:
  rilf [scan] --query <q[,q...]> [--subs a,b] [--days N] [--limit N] [--out dir]
  rilf drafts --in leads.csv --out drafts.md [--model m] [--concurrency N]
  rilf keywords --product <name> --category <name> [--out path]
  rilf key set <api-key> | rilf key delete

Run 'rilf <command> -h' for command flags.
`)
}

// httpClient builds the client used for Reddit requests, optionally routed
// through a SOCKS5 proxy from PROXY_URL.
func httpClient(proxyURL string) (*http.Client, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	if proxyURL == "" {
		return client, nil
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme != "socks5" {
		return client, nil
	}

	var auth *proxy.Auth
	if parsedURL.User != nil {
		password, _ := parsedURL.User.Password()
		auth = &proxy.Auth{
			User:     parsedURL.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
	if err != nil {
		return nil, err
	}

	client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}
	slog.Info("using SOCKS5 proxy", "proxy", parsedURL.Host)

	return client, nil
}
