// Command doublet is the storefront and admin front end: it drives the state
// store, the backend client and the checkout saga from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/internal/checkout"
	"github.com/doubleteemedia40-oss/doublet/internal/email"
	"github.com/doubleteemedia40-oss/doublet/internal/state"
	"github.com/doubleteemedia40-oss/doublet/pkg/config"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "doublet"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "doublet",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	client, err := backend.NewClient(cfg.API, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}

	mailer, err := email.NewClient(cfg.Email, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email client", err)
		os.Exit(1)
	}

	store, err := state.New(state.Params{
		Client:      client,
		Logger:      logg,
		StoragePath: cfg.Storage.Path,
		Notifier:    mailer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to open state store", err)
		os.Exit(1)
	}

	app := &app{cfg: cfg, logg: logg, client: client, mailer: mailer, store: store}
	if err := app.run(context.Background(), os.Args[1:]); err != nil {
		logg.Error(context.Background(), "command failed", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logg   *logger.Logger
	client *backend.Client
	mailer *email.Client
	store  *state.Store
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	switch args[0] {
	case "signup":
		return a.signup(ctx, args[1:])
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		a.store.Logout()
		fmt.Println("logged out")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "reset-request":
		return a.resetRequest(ctx, args[1:])
	case "reset":
		return a.resetPassword(ctx, args[1:])
	case "products":
		return a.products(ctx, args[1:])
	case "cart":
		return a.cart(ctx, args[1:])
	case "checkout":
		return a.checkout(ctx, args[1:])
	case "verify":
		return a.verify(ctx, args[1:])
	case "orders":
		return a.orders(ctx, args[1:])
	case "admin":
		return a.admin(ctx, args[1:])
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Println(`usage: doublet <command>

  signup -email -password -name     create an account and sign in
  login -email -password            sign in
  logout                            sign out and clear local state
  whoami                            show the active session
  reset-request -email              request a password reset token
  reset -token -password            redeem a reset token

  products list [-limit] [-q]       browse the catalog
  products more                     grow the catalog window by one page

  cart show|add|remove|update|clear manage the cart
  checkout -customer -email         create the order and print the payment link
  verify -ref                       poll a payment reference once

  orders list [-mine]               list orders (first page)
  orders more                       load the next order page

  admin ...                         product/user/order/maintenance management`)
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	emailAddr := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	fs.Parse(args)

	input := state.SignupInput{Email: *emailAddr, Password: *password, Name: *name}
	if err := a.store.Signup(ctx, input); err != nil {
		return err
	}
	if err := a.mailer.SendWelcome(ctx, email.WelcomeParams{ToEmail: *emailAddr, ToName: *name}); err != nil {
		a.logg.Error(ctx, "welcome email failed", err)
	}
	fmt.Printf("signed up as %s\n", *emailAddr)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	emailAddr := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if err := a.store.Login(ctx, state.LoginInput{Email: *emailAddr, Password: *password}); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", *emailAddr)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	if err := a.store.Initialize(ctx); err != nil {
		return err
	}
	user := a.store.User()
	if user == nil {
		fmt.Println("not logged in")
		return nil
	}
	role := "customer"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, role)
	return nil
}

func (a *app) resetRequest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-request", flag.ExitOnError)
	emailAddr := fs.String("email", "", "account email")
	fs.Parse(args)

	token, err := a.store.RequestPasswordReset(ctx, *emailAddr)
	if err != nil {
		return err
	}
	err = a.mailer.SendReset(ctx, email.ResetParams{
		ToEmail: *emailAddr,
		Email:   *emailAddr,
		Token:   token,
	})
	if err != nil {
		a.logg.Error(ctx, "reset email failed", err)
		fmt.Printf("reset token: %s\n", token)
		return nil
	}
	fmt.Println("reset email sent")
	return nil
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	token := fs.String("token", "", "reset token")
	password := fs.String("password", "", "new password")
	fs.Parse(args)

	if err := a.store.ResetPassword(ctx, state.ResetInput{Token: *token, NewPassword: *password}); err != nil {
		return err
	}
	fmt.Println("password updated")
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("products list", flag.ExitOnError)
		limit := fs.Int("limit", 0, "catalog window size")
		query := fs.String("q", "", "filter by name, category or description")
		source := fs.String("source", "", "backend catalog source (db or file)")
		fs.Parse(args[1:])

		if *source != "" {
			items, err := a.client.ListProducts(ctx, backend.ListProductsParams{Limit: *limit, Source: *source})
			if err != nil {
				return err
			}
			printProducts(items)
			return nil
		}
		if err := a.store.FetchProducts(ctx, *limit); err != nil {
			return err
		}
		printProducts(a.store.SearchProducts(*query))
		return nil
	case "more":
		if err := a.store.FetchProducts(ctx, 0); err != nil {
			return err
		}
		if err := a.store.LoadMoreProducts(ctx); err != nil {
			return err
		}
		printProducts(a.store.Products())
		return nil
	default:
		return fmt.Errorf("unknown products subcommand %q", args[0])
	}
}

func printProducts(products []backend.Product) {
	if len(products) == 0 {
		fmt.Println("no products")
		return
	}
	for _, p := range products {
		fmt.Printf("%-12s %-40s %8d  stock %3d  %s\n", p.ID, p.Name, p.Price, p.Stock, p.Category)
	}
}

func (a *app) cart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	switch args[0] {
	case "show":
		items := a.store.CartItems()
		if len(items) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		var total int64
		for _, item := range items {
			fmt.Printf("%-12s %-40s x%d  %8d\n", item.ID, item.Name, item.Quantity, item.Price*int64(item.Quantity))
			total += item.Price * int64(item.Quantity)
		}
		fmt.Printf("subtotal: %d\n", total)
		return nil
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		fs.Parse(args[1:])

		if err := a.store.FetchProducts(ctx, 0); err != nil {
			return err
		}
		for _, p := range a.store.Products() {
			if p.ID == *id {
				if p.Stock <= 0 {
					return fmt.Errorf("product %s is out of stock", *id)
				}
				a.store.AddToCart(p, *qty)
				fmt.Printf("added %s x%d\n", p.Name, state.ClampQuantity(*qty))
				return nil
			}
		}
		return fmt.Errorf("product %s not found", *id)
	case "remove":
		fs := flag.NewFlagSet("cart remove", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		fs.Parse(args[1:])
		a.store.RemoveFromCart(*id)
		fmt.Println("removed")
		return nil
	case "update":
		fs := flag.NewFlagSet("cart update", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		fs.Parse(args[1:])
		a.store.UpdateCartQuantity(*id, state.ClampQuantity(*qty))
		fmt.Println("updated")
		return nil
	case "clear":
		a.store.ClearCart()
		fmt.Println("cart cleared")
		return nil
	default:
		return fmt.Errorf("unknown cart subcommand %q", args[0])
	}
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	customer := fs.String("customer", "", "buyer name for the order")
	emailAddr := fs.String("email", "", "buyer email")
	gateway := fs.String("gateway", a.cfg.Payments.Gateway, "payment gateway")
	fs.Parse(args)

	svc, err := checkout.NewService(checkout.Params{
		Store:   a.store,
		Client:  a.client,
		Logger:  a.logg,
		Gateway: backend.Gateway(strings.ToLower(*gateway)),
	})
	if err != nil {
		return err
	}

	saga, err := svc.Begin(ctx, checkout.BeginInput{Customer: *customer, Email: *emailAddr})
	if err != nil {
		return err
	}
	totals := saga.Totals()
	fmt.Printf("order %s created (reference %s)\n", saga.Order().ID, saga.Reference())
	fmt.Printf("subtotal %s  tax %s  total %s\n", totals.Subtotal, totals.Tax, totals.Total)

	link, err := saga.Initiate(ctx)
	if err != nil {
		fmt.Println("payment initiation failed; the order stays pending, retry with:")
		fmt.Printf("  doublet verify -ref %s\n", saga.Reference())
		return err
	}
	fmt.Printf("complete payment at: %s\n", link)
	fmt.Printf("then run: doublet verify -ref %s\n", saga.Reference())
	return nil
}

func (a *app) verify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	ref := fs.String("ref", "", "payment reference")
	fs.Parse(args)
	if *ref == "" {
		return fmt.Errorf("-ref is required")
	}

	verification, err := a.client.VerifyPayment(ctx, *ref)
	if err != nil {
		return err
	}
	if verification.Confirmed() {
		a.store.ClearCart()
		fmt.Printf("payment confirmed, order status %s\n", verification.Status)
		return nil
	}
	fmt.Printf("payment not confirmed yet (paid=%t, status=%s)\n", verification.Paid, verification.Status)
	return nil
}

func (a *app) orders(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("orders list", flag.ExitOnError)
		mine := fs.Bool("mine", false, "only the signed-in user's orders")
		fs.Parse(args[1:])

		if *mine {
			if err := a.store.Initialize(ctx); err != nil {
				return err
			}
			user := a.store.User()
			if user == nil {
				return fmt.Errorf("not logged in")
			}
			if err := a.store.FetchUserOrders(ctx, user.ID, 0, ""); err != nil {
				return err
			}
		} else if err := a.store.FetchOrders(ctx, 0, ""); err != nil {
			return err
		}
		printOrders(a.store)
		return nil
	case "more":
		if err := a.store.FetchOrders(ctx, 0, ""); err != nil {
			return err
		}
		if err := a.store.LoadMoreOrders(ctx); err != nil {
			return err
		}
		printOrders(a.store)
		return nil
	default:
		return fmt.Errorf("unknown orders subcommand %q", args[0])
	}
}

func printOrders(store *state.Store) {
	orders := store.Orders()
	if len(orders) == 0 {
		fmt.Println("no orders")
		return
	}
	for _, o := range orders {
		fmt.Printf("%-12s %-24s %-10s %10.2f  %s\n", o.ID, o.Customer, o.Status, o.Total, o.Date)
	}
	if cursor := store.OrdersCursor(); cursor != "" {
		fmt.Println("more available: doublet orders more")
	}
}
