// Command seed posts the starter catalog to the backend. It refuses to run
// against a backend that already has products, so it is safe to invoke from
// provisioning scripts.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/pkg/config"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
)

var starterCatalog = []backend.ProductInput{
	{
		Name:        "Netflix Premium (1 Year)",
		Price:       8500,
		Stock:       50,
		Category:    "Streaming",
		Description: "Netflix premium plan voucher valid for one year. 4K streaming on four screens.",
		Features:    []string{"Region: Global (Worldwide)", "Platform: Netflix", "4K Ultra HD", "4 Screens"},
	},
	{
		Name:        "Spotify Family (6 Months)",
		Price:       4500,
		Stock:       80,
		Category:    "Streaming",
		Description: "Spotify family plan voucher for six months. Up to six members.",
		Features:    []string{"Region: Global (Worldwide)", "Platform: Spotify", "6 Members", "Ad Free"},
	},
	{
		Name:        "Disney+ Annual Voucher",
		Price:       7000,
		Stock:       40,
		Category:    "Streaming",
		Description: "Disney+ annual subscription voucher. Works on all supported devices.",
		Features:    []string{"Region: United States", "Platform: Disney+", "1 Year Validity"},
	},
	{
		Name:        "NordVPN Premium (1 Year)",
		Price:       3500,
		Stock:       100,
		Category:    "VPN",
		Description: "NordVPN premium subscription valid for one year. High speed and secure connection.",
		Features:    []string{"Region: Global (Worldwide)", "1 Year Validity", "Multiple Devices", "No Logs"},
	},
	{
		Name:        "ExpressVPN Mobile Key",
		Price:       4500,
		Stock:       50,
		Category:    "VPN",
		Description: "Activation key for the ExpressVPN mobile application. Fast and reliable.",
		Features:    []string{"Region: Global (Worldwide)", "Mobile Only", "30 Days", "Auto-connect"},
	},
	{
		Name:        "Steam Wallet Code (50)",
		Price:       5500,
		Stock:       200,
		Category:    "Gaming",
		Description: "Steam wallet top-up code worth 50 in store credit. Delivered instantly.",
		Features:    []string{"Region: European Union", "Platform: Steam", "Instant Delivery"},
	},
	{
		Name:        "Xbox Game Pass Ultimate (3 Months)",
		Price:       6500,
		Stock:       60,
		Category:    "Gaming",
		Description: "Game Pass Ultimate membership code for three months of console and PC access.",
		Features:    []string{"Region: United States", "3 Months", "Console + PC"},
	},
	{
		Name:        "Office 365 Personal (1 Year)",
		Price:       9000,
		Stock:       30,
		Category:    "Software",
		Description: "Office 365 personal license key valid for one year on one device.",
		Features:    []string{"Region: Global (Worldwide)", "1 Year Validity", "1 Device"},
	},
	{
		Name:        "Windows 11 Pro License Key",
		Price:       12000,
		Stock:       25,
		Category:    "Software",
		Description: "Retail Windows 11 Pro activation key. One-time activation on a single machine.",
		Features:    []string{"Region: Global (Worldwide)", "Retail Key", "Lifetime"},
	},
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "base_url", cfg.API.BaseURL)

	client, err := backend.NewClient(cfg.API, logg)
	if err != nil {
		logg.Error(ctx, "failed to create backend client", err)
		os.Exit(1)
	}

	existing, err := client.ListProducts(ctx, backend.ListProductsParams{Limit: 1})
	if err != nil {
		logg.Error(ctx, "failed to check existing catalog", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		logg.Info(ctx, "catalog already seeded, nothing to do")
		return
	}

	for _, input := range starterCatalog {
		created, err := client.CreateProduct(ctx, input)
		if err != nil {
			logg.Error(logg.WithField(ctx, "product", input.Name), "failed to seed product", err)
			os.Exit(1)
		}
		logg.Info(logg.WithFields(ctx, map[string]any{"product": created.Name, "id": created.ID}), "seeded product")
	}
	logg.Info(logg.WithField(ctx, "count", len(starterCatalog)), "catalog seeded")
}
