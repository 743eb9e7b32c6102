// register-webhooks subscribes the app's webhook endpoints with the
// platform admin API. Run it once per store install, and again whenever the
// app base URL changes.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/ignite/storemailer/internal/config"
)

// subscription pairs a platform event topic with the path it should POST to.
type subscription struct {
	Topic string `json:"topic"`
	Path  string `json:"-"`
}

var subscriptions = []subscription{
	{Topic: "customers/create", Path: "/webhooks/customers/create"},
	{Topic: "orders/create", Path: "/webhooks/orders/create"},
	{Topic: "orders/create", Path: "/webhooks/orders/create/gift-cards"},
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dryRun := flag.Bool("dry-run", false, "print the registrations without posting them")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.App.BaseURL == "" {
		log.Fatal("app base URL is required (APP_BASE_URL)")
	}
	if cfg.Platform.StoreDomain == "" {
		log.Fatal("platform store domain is required (PLATFORM_STORE_DOMAIN)")
	}

	baseURL := strings.TrimRight(cfg.App.BaseURL, "/")

	if *dryRun {
		for _, sub := range subscriptions {
			fmt.Printf("would register %-20s -> %s%s\n", sub.Topic, baseURL, sub.Path)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	oauth := clientcredentials.Config{
		ClientID:     cfg.Platform.ClientID,
		ClientSecret: cfg.Platform.ClientSecret,
		TokenURL:     cfg.Platform.TokenURL,
	}
	client := oauth.Client(ctx)

	endpoint := fmt.Sprintf("%s/stores/%s/webhooks",
		strings.TrimRight(cfg.Platform.BaseURL, "/"), cfg.Platform.StoreDomain)

	for _, sub := range subscriptions {
		if err := register(ctx, client, endpoint, sub.Topic, baseURL+sub.Path); err != nil {
			log.Fatalf("registering %s: %v", sub.Topic, err)
		}
		fmt.Printf("registered %-20s -> %s%s\n", sub.Topic, baseURL, sub.Path)
	}
}

func register(ctx context.Context, client *http.Client, endpoint, topic, address string) error {
	payload, err := json.Marshal(map[string]string{
		"topic":   topic,
		"address": address,
		"format":  "json",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
