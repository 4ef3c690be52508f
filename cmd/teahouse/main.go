package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/minhvu-dev/teahouse/internal/api"
	"github.com/minhvu-dev/teahouse/internal/auth"
	"github.com/minhvu-dev/teahouse/internal/cart"
	"github.com/minhvu-dev/teahouse/internal/checkout"
	"github.com/minhvu-dev/teahouse/internal/menu"
	"github.com/minhvu-dev/teahouse/internal/orders"
	"github.com/minhvu-dev/teahouse/internal/reviews"
	"github.com/minhvu-dev/teahouse/internal/session"
	"github.com/minhvu-dev/teahouse/internal/vouchers"
	"github.com/minhvu-dev/teahouse/pkg/config"
	"github.com/minhvu-dev/teahouse/pkg/enums"
	"github.com/minhvu-dev/teahouse/pkg/logger"
)

const usage = `teahouse - terminal ordering client

Usage:
  teahouse <command> [flags]

Commands:
  login        sign in with email and password
  logout       sign out and wipe local state
  status       check whether the stored session is still usable
  profile      show the account profile
  menu         list products (use -category to filter client-side)
  toppings     list available toppings
  vouchers     list publicly available vouchers
  my-vouchers  list vouchers already in the account
  redeem       redeem a voucher by id
  order        compose items or reorder a past order, then check out
  orders       list past orders
  history      show the status history of one order
  review       submit a product review
`

type app struct {
	cfg      *config.Config
	log      *logger.Logger
	slots    *session.Store
	guard    *session.Guard
	auth     *auth.Service
	menu     *menu.Service
	vouchers *vouchers.Service
	orders   *orders.Service
	checkout *checkout.Service
	reviews  *reviews.Service
	cart     *cart.Store
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "teahouse"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "teahouse",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	slots, err := session.Open(cfg.State.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to open session store", err)
		os.Exit(1)
	}
	defer func() {
		if err := slots.Close(); err != nil {
			logg.Error(context.Background(), "error closing session store", err)
		}
	}()

	client, err := api.NewClient(cfg.API, slots, logg,
		api.WithAuthFailureHook(func() {
			fmt.Fprintf(os.Stderr, "session expired, sign in again at %s\n", cfg.API.LoginURL)
		}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build api client", err)
		os.Exit(1)
	}

	a, err := buildApp(cfg, logg, slots, client)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildApp(cfg *config.Config, logg *logger.Logger, slots *session.Store, client *api.Client) (*app, error) {
	guard, err := session.NewGuard(client, slots, cfg.API.LoginURL, logg)
	if err != nil {
		return nil, err
	}
	authSvc, err := auth.NewService(client, slots, logg)
	if err != nil {
		return nil, err
	}
	menuSvc, err := menu.NewService(client)
	if err != nil {
		return nil, err
	}
	voucherSvc, err := vouchers.NewService(client, logg)
	if err != nil {
		return nil, err
	}
	orderSvc, err := orders.NewService(client)
	if err != nil {
		return nil, err
	}
	cartStore := cart.NewStore()
	checkoutSvc, err := checkout.NewService(cartStore, orderSvc, logg)
	if err != nil {
		return nil, err
	}
	reviewSvc, err := reviews.NewService(client)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      logg,
		slots:    slots,
		guard:    guard,
		auth:     authSvc,
		menu:     menuSvc,
		vouchers: voucherSvc,
		orders:   orderSvc,
		checkout: checkoutSvc,
		reviews:  reviewSvc,
		cart:     cartStore,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("a command is required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "logout":
		return a.auth.Logout(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "profile":
		return a.cmdProfile(ctx)
	case "menu":
		return a.cmdMenu(ctx, rest)
	case "toppings":
		return a.cmdToppings(ctx)
	case "vouchers":
		return a.cmdVouchers(ctx)
	case "my-vouchers":
		return a.cmdMyVouchers(ctx)
	case "redeem":
		return a.cmdRedeem(ctx, rest)
	case "order":
		return a.cmdOrder(ctx, rest)
	case "orders":
		return a.cmdOrders(ctx)
	case "history":
		return a.cmdHistory(ctx, rest)
	case "review":
		return a.cmdReview(ctx, rest)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// requireSession runs the guard before any authenticated command so a
// stale bearer is refreshed once up front instead of mid-command.
func (a *app) requireSession(ctx context.Context) error {
	result, err := a.guard.Check(ctx)
	if err != nil {
		return err
	}
	if !result.Authorized() {
		return fmt.Errorf("not signed in, run: teahouse login (then retry, or visit %s)", result.RedirectTo)
	}
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	fmt.Fprint(os.Stderr, "password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	profile, err := a.auth.Login(ctx, auth.Credentials{Email: *email, Password: string(raw)})
	if err != nil {
		return err
	}
	name := profile.FullName
	if name == "" {
		name = profile.Email
	}
	fmt.Printf("signed in as %s\n", name)
	return nil
}

func (a *app) cmdStatus(ctx context.Context) error {
	result, err := a.guard.Check(ctx)
	if err != nil {
		return err
	}
	if result.Authorized() {
		fmt.Println("session is valid")
		return nil
	}
	fmt.Printf("not signed in (login at %s)\n", result.RedirectTo)
	return nil
}

func (a *app) cmdProfile(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	profile, err := a.auth.Fetch(ctx)
	if err != nil {
		return err
	}
	return printJSON(profile)
}

func (a *app) cmdMenu(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	category := fs.Int64("category", 0, "only show products in this category id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := a.menu.Products(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if *category != 0 && p.CategoryID != *category {
			continue
		}
		fmt.Printf("%4d  %-32s %10s VND\n", p.ID, p.Name, p.Price.StringFixed(0))
	}
	return nil
}

func (a *app) cmdToppings(ctx context.Context) error {
	toppings, err := a.menu.Toppings(ctx)
	if err != nil {
		return err
	}
	for _, t := range toppings {
		fmt.Printf("%4d  %-32s %10s VND\n", t.ID, t.Name, t.Price.StringFixed(0))
	}
	return nil
}

func (a *app) cmdVouchers(ctx context.Context) error {
	for _, v := range a.vouchers.Available(ctx) {
		fmt.Printf("%-12s %3d%% off  (needs %d points, expires %s)\n",
			v.Code, v.DiscountPercent, v.RequiredPoints, v.ExpiryDate.Format("2006-01-02"))
	}
	return nil
}

func (a *app) cmdMyVouchers(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	mine, err := a.vouchers.Mine(ctx)
	if err != nil {
		return err
	}
	if len(mine) == 0 {
		fmt.Println("no vouchers in the account")
		return nil
	}
	for _, v := range mine {
		fmt.Printf("%-12s %3d%% off  (expires %s)\n", v.Code, v.DiscountPercent, v.ExpiryDate.Format("2006-01-02"))
	}
	return nil
}

func (a *app) cmdRedeem(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("redeem", flag.ContinueOnError)
	id := fs.Int64("id", 0, "voucher id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	voucher, err := a.vouchers.Redeem(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("redeemed %s (%d%% off)\n", voucher.Code, voucher.DiscountPercent)
	return nil
}

// itemFlags collects repeated -item specs of the form
// product=ID,size=M,qty=2,toppings=1+4,sugar=50,ice=less,note=....
type itemFlags []string

func (i *itemFlags) String() string { return strings.Join(*i, "; ") }

func (i *itemFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func (a *app) cmdOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	var items itemFlags
	fs.Var(&items, "item", "drink spec, repeatable: product=ID,size=M,qty=1,toppings=1+2,sugar=50,ice=less")
	reorder := fs.Int64("reorder", 0, "add every item of this past order before any -item specs")
	storeID := fs.Int64("store", 0, "store id")
	payment := fs.String("payment", string(enums.PaymentMethodCash), "payment method (cash, momo, vnpay, zalopay)")
	address := fs.String("address", "", "delivery address")
	lat := fs.Float64("lat", 0, "delivery latitude")
	lng := fs.Float64("lng", 0, "delivery longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(items) == 0 && *reorder == 0 {
		return fmt.Errorf("at least one -item or a -reorder id is required")
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	if *reorder != 0 {
		lines, err := a.orders.Reorder(ctx, *reorder)
		if err != nil {
			return err
		}
		a.cart.AddAll(lines)
	}

	toppings, err := a.menu.Toppings(ctx)
	if err != nil {
		return err
	}
	for _, spec := range items {
		input, err := a.parseItem(ctx, spec)
		if err != nil {
			return err
		}
		line, err := menu.ComposeLine(input, toppings)
		if err != nil {
			return err
		}
		a.cart.Add(line)
	}

	for _, line := range a.cart.Lines() {
		total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		fmt.Printf("%dx %-28s %10s VND\n", line.Quantity, line.Name, total.StringFixed(0))
	}
	fmt.Printf("subtotal: %s VND\n", a.cart.Subtotal().StringFixed(0))

	method, err := enums.ParsePaymentMethod(*payment)
	if err != nil {
		return err
	}
	created, err := a.checkout.PlaceOrder(ctx, checkout.DeliveryDetails{
		StoreID:       *storeID,
		PaymentMethod: method,
		Address:       *address,
		Lat:           *lat,
		Lng:           *lng,
	})
	if err != nil {
		return err
	}
	fmt.Printf("order placed: %s (id %d)\n", created.OrderNumber, created.ID)
	return nil
}

func (a *app) parseItem(ctx context.Context, spec string) (menu.ComposeInput, error) {
	input := menu.ComposeInput{Quantity: 1, Size: enums.SizeL}

	for _, field := range strings.Split(spec, ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return menu.ComposeInput{}, fmt.Errorf("malformed item field %q", field)
		}
		switch key {
		case "product":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return menu.ComposeInput{}, fmt.Errorf("bad product id %q", value)
			}
			product, err := a.menu.Product(ctx, id)
			if err != nil {
				return menu.ComposeInput{}, err
			}
			input.Product = *product
		case "size":
			size, err := enums.ParseSize(value)
			if err != nil {
				return menu.ComposeInput{}, err
			}
			input.Size = size
		case "qty":
			qty, err := strconv.Atoi(value)
			if err != nil {
				return menu.ComposeInput{}, fmt.Errorf("bad quantity %q", value)
			}
			input.Quantity = qty
		case "toppings":
			for _, raw := range strings.Split(value, "+") {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return menu.ComposeInput{}, fmt.Errorf("bad topping id %q", raw)
				}
				input.ToppingIDs = append(input.ToppingIDs, id)
			}
		case "sugar":
			sugar, err := enums.ParseSweetness(value)
			if err != nil {
				return menu.ComposeInput{}, err
			}
			input.Sugar = sugar
		case "ice":
			ice, err := enums.ParseIceLevel(value)
			if err != nil {
				return menu.ComposeInput{}, err
			}
			input.Ice = ice
		case "note":
			input.Note = value
		default:
			return menu.ComposeInput{}, fmt.Errorf("unknown item field %q", key)
		}
	}
	return input, nil
}

func (a *app) cmdOrders(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	list, err := a.orders.List(ctx)
	if err != nil {
		return err
	}
	for _, o := range list {
		fmt.Printf("%-16s %-12s %10s VND\n", o.OrderNumber, o.Status, o.Total.StringFixed(0))
	}
	return nil
}

func (a *app) cmdHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	id := fs.Int64("id", 0, "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	changes, err := a.orders.History(ctx, *id)
	if err != nil {
		return err
	}
	for _, c := range changes {
		fmt.Printf("%s  %s\n", c.ChangedAt.Format("2006-01-02 15:04"), c.Status)
	}
	return nil
}

func (a *app) cmdReview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	productID := fs.Int64("product", 0, "product id")
	orderID := fs.Int64("order", 0, "order id (optional)")
	rating := fs.Int("rating", 0, "rating from 1 to 5")
	comment := fs.String("comment", "", "review text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	submission := reviews.Submission{
		ProductID: *productID,
		Rating:    *rating,
		Comment:   *comment,
	}
	if *orderID != 0 {
		submission.OrderID = orderID
	}
	if err := a.reviews.Submit(ctx, submission); err != nil {
		return err
	}
	fmt.Println("review submitted")
	return nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
