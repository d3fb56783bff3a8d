package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/internal/features"
	"github.com/doubleteemedia40-oss/doublet/internal/inventory"
)

func (a *app) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		adminUsage()
		return nil
	}

	switch args[0] {
	case "product":
		return a.adminProduct(ctx, args[1:])
	case "users":
		return a.adminUsers(ctx, args[1:])
	case "order":
		return a.adminOrder(ctx, args[1:])
	case "stock":
		return a.adminStock(args[1:])
	case "csv":
		return a.adminCSV(ctx, args[1:])
	case "maintenance":
		return a.adminMaintenance(ctx, args[1:])
	case "health":
		return a.adminHealth(ctx)
	default:
		adminUsage()
		return fmt.Errorf("unknown admin subcommand %q", args[0])
	}
}

func adminUsage() {
	fmt.Println(`usage: doublet admin <subcommand>

  product add|update|delete         manage the catalog
  users list|role|active            manage accounts
  order status|deliver              move orders and release credentials
  stock -file                       dry-run an inventory blob
  csv export|import                 bulk catalog transfer
  maintenance on|off                toggle the storefront maintenance flag
  health                            backend health and gateway status`)
}

func (a *app) adminProduct(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("product subcommand required")
	}
	switch args[0] {
	case "add", "update":
		fs := flag.NewFlagSet("admin product "+args[0], flag.ExitOnError)
		id := fs.String("id", "", "product id (update only)")
		name := fs.String("name", "", "product name")
		price := fs.Int64("price", 0, "unit price in integer currency units")
		stock := fs.Int("stock", 0, "units in stock")
		category := fs.String("category", "", "category")
		description := fs.String("description", "", "description")
		image := fs.String("image", "", "image URL")
		region := fs.String("region", "", "region tag")
		platform := fs.String("platform", "", "platform tag")
		age := fs.String("age", "", "account age tag")
		followers := fs.String("followers", "", "followers tag")
		extra := fs.String("features", "", "comma-separated free-text features")
		fs.Parse(args[1:])

		set := features.Set{}
		set = set.WithTag(features.KindRegion, *region)
		set = set.WithTag(features.KindPlatform, *platform)
		set = set.WithTag(features.KindAge, *age)
		set = set.WithTag(features.KindFollowers, *followers)
		for _, item := range strings.Split(*extra, ",") {
			if item = strings.TrimSpace(item); item != "" {
				set.FreeText = append(set.FreeText, item)
			}
		}

		input := backend.ProductInput{
			Name:        *name,
			Price:       *price,
			Stock:       *stock,
			Category:    *category,
			Description: *description,
			Features:    set.Encode(),
			Image:       *image,
		}
		if args[0] == "add" {
			created, err := a.store.AddProduct(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("created product %s\n", created.ID)
			return nil
		}
		if *id == "" {
			return fmt.Errorf("-id is required for update")
		}
		updated, err := a.store.UpdateProduct(ctx, *id, input)
		if err != nil {
			return err
		}
		fmt.Printf("updated product %s\n", updated.ID)
		return nil
	case "delete":
		fs := flag.NewFlagSet("admin product delete", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		fs.Parse(args[1:])
		if err := a.store.DeleteProduct(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted product %s\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown product subcommand %q", args[0])
	}
}

func (a *app) adminUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		if err := a.store.FetchAllUsers(ctx); err != nil {
			return err
		}
		for _, u := range a.store.AllUsers() {
			role := "customer"
			if u.IsAdmin {
				role = "admin"
			}
			status := "active"
			if u.Active != nil && !*u.Active {
				status = "disabled"
			}
			fmt.Printf("%-12s %-30s %-8s %s\n", u.ID, u.Email, role, status)
		}
		return nil
	case "role":
		fs := flag.NewFlagSet("admin users role", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		admin := fs.Bool("admin", false, "grant admin")
		fs.Parse(args[1:])
		return a.store.UpdateUserRole(ctx, *id, *admin)
	case "active":
		fs := flag.NewFlagSet("admin users active", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		enabled := fs.Bool("enabled", true, "account enabled")
		fs.Parse(args[1:])
		return a.store.SetUserActive(ctx, *id, *enabled)
	default:
		return fmt.Errorf("unknown users subcommand %q", args[0])
	}
}

func (a *app) adminOrder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("order subcommand required")
	}
	switch args[0] {
	case "status":
		fs := flag.NewFlagSet("admin order status", flag.ExitOnError)
		id := fs.String("id", "", "order id")
		status := fs.String("status", "", "Pending|Processing|Delivered|Cancelled|Completed")
		fs.Parse(args[1:])

		next := backend.OrderStatus(*status)
		if !next.Known() {
			return fmt.Errorf("unknown order status %q", *status)
		}
		if err := a.store.FetchOrders(ctx, 0, ""); err != nil {
			return err
		}
		if err := a.store.UpdateOrderStatus(ctx, *id, next); err != nil {
			return err
		}
		fmt.Printf("order %s -> %s\n", *id, next)
		return nil
	case "deliver":
		fs := flag.NewFlagSet("admin order deliver", flag.ExitOnError)
		id := fs.String("id", "", "order id")
		file := fs.String("file", "", "file holding the credential payload")
		fs.Parse(args[1:])

		raw, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("read delivery payload: %w", err)
		}

		result := inventory.ParseEntries(string(raw))
		if len(result.Invalid) > 0 {
			return fmt.Errorf("%d invalid credential lines, fix the payload first", len(result.Invalid))
		}

		if err := a.store.FetchOrders(ctx, 0, ""); err != nil {
			return err
		}
		if err := a.store.UpdateOrderDelivery(ctx, *id, strings.Join(result.Valid, "\n")); err != nil {
			return err
		}
		if err := a.store.UpdateOrderStatus(ctx, *id, backend.OrderDelivered); err != nil {
			return err
		}
		fmt.Printf("order %s delivered (%d credentials)\n", *id, len(result.Valid))
		return nil
	default:
		return fmt.Errorf("unknown order subcommand %q", args[0])
	}
}

// adminStock parses an inventory blob and reports valid, invalid and
// duplicate credential lines. With -apply and a product id, the valid count
// is added to that product's stock; the default is a dry run.
func (a *app) adminStock(args []string) error {
	fs := flag.NewFlagSet("admin stock", flag.ExitOnError)
	file := fs.String("file", "", "inventory text file")
	productID := fs.String("id", "", "product to stock")
	apply := fs.Bool("apply", false, "add the valid count to the product's stock")
	fs.Parse(args)

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read inventory file: %w", err)
	}

	result := inventory.ParseEntries(string(raw))
	fmt.Printf("valid:   %d\n", len(result.Valid))
	fmt.Printf("invalid: %d\n", len(result.Invalid))
	fmt.Printf("duplicate: %d\n", len(result.Deduped))
	for _, line := range result.Invalid {
		fmt.Printf("  bad line: %s\n", line)
	}

	if !*apply {
		return nil
	}
	if *productID == "" {
		return fmt.Errorf("-id is required with -apply")
	}
	if len(result.Valid) == 0 {
		return fmt.Errorf("no valid entries to apply")
	}

	ctx := context.Background()
	if err := a.store.FetchProducts(ctx, 0); err != nil {
		return err
	}
	for _, p := range a.store.Products() {
		if p.ID != *productID {
			continue
		}
		input := backend.ProductInput{
			Name:        p.Name,
			Price:       p.Price,
			Stock:       p.Stock + len(result.Valid),
			Category:    p.Category,
			Description: p.Description,
			Features:    p.Features,
			Image:       p.Image,
		}
		updated, err := a.store.UpdateProduct(ctx, p.ID, input)
		if err != nil {
			return err
		}
		fmt.Printf("stocked %s: %d -> %d units\n", updated.Name, p.Stock, updated.Stock)
		return nil
	}
	return fmt.Errorf("product %s not found", *productID)
}

func (a *app) adminCSV(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("csv subcommand required")
	}
	switch args[0] {
	case "export":
		if err := a.store.FetchProducts(ctx, 0); err != nil {
			return err
		}
		return inventory.ExportProducts(os.Stdout, a.store.Products())
	case "import":
		fs := flag.NewFlagSet("admin csv import", flag.ExitOnError)
		file := fs.String("file", "", "catalog CSV file")
		fs.Parse(args[1:])

		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open catalog csv: %w", err)
		}
		defer f.Close()

		inputs, err := inventory.ImportProducts(f)
		if err != nil {
			return err
		}
		for _, input := range inputs {
			created, err := a.store.AddProduct(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("imported %s (%s)\n", created.Name, created.ID)
		}
		return nil
	default:
		return fmt.Errorf("unknown csv subcommand %q", args[0])
	}
}

func (a *app) adminMaintenance(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("maintenance expects on or off")
	}
	var enabled bool
	switch args[0] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("maintenance expects on or off, got %q", args[0])
	}

	applied, err := a.client.SetMaintenance(ctx, enabled)
	if err != nil {
		return err
	}
	fmt.Printf("maintenance mode: %t\n", applied)
	return nil
}

func (a *app) adminHealth(ctx context.Context) error {
	health, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("flutterwave configured: %t\n", health.FlutterwaveConfigured)
	fmt.Printf("maintenance: %t\n", health.Maintenance)
	if !a.cfg.Payments.GatewayEnabled() {
		fmt.Printf("warning: gateway %s has no public key configured\n", a.cfg.Payments.Gateway)
	}
	return nil
}
