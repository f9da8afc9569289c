package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"onlineshop/internal/backend"
	"onlineshop/internal/cart"
	"onlineshop/internal/checkout"
	"onlineshop/internal/config"
	"onlineshop/internal/domain"
	"onlineshop/internal/session"
	"onlineshop/internal/statestore"
)

const usage = `usage: shop <command> [arguments]

Account:
  register <username> <email> <password>
  login <username> <password>
  logout
  me

Catalog:
  products [-page N] [-size N]
  product <id>

Cart:
  add <product-id> [quantity]
  decrease <product-id>
  remove <product-id>
  cart
  clear

Orders:
  checkout [-yes]
  orders
  cancel <order-id>

Suppliers:
  suppliers
  add-supplier <name> [-email E] [-phone P]

Admin:
  users
  add-product -name N -price CENTS [-category C] [-description D] [-stock N] [-supplier ID]
  update-stock <product-id> <stock>
  delete-product <product-id>
`

// app bundles the wired client stack for command handlers.
type app struct {
	cfg    config.Config
	logger *log.Logger
	api    *backend.Client
	gate   *session.Gate
	cart   *cart.Store
	state  *statestore.Store
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[shop] ", 0)

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = statestore.DefaultPath()
	}
	state := statestore.New(statePath, logger)
	state.Load()

	gate := session.NewGate(state, logger)
	if token, identity, ok := state.Auth(); ok {
		gate.Restore(token, identity)
	}

	api := backend.New(cfg.APIBaseURL, backend.WithLogger(logger), backend.WithTokenSource(gate))
	gate.Bind(api)

	cartStore := cart.NewStore()
	cartStore.Restore(state.CartLines())
	cartStore.Subscribe(func(s cart.Snapshot) {
		if err := state.SaveCart(s.Lines); err != nil {
			logger.Printf("persist cart: %v", err)
		}
	})

	a := &app{cfg: cfg, logger: logger, api: api, gate: gate, cart: cartStore, state: state}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "shop: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.gate.Logout()
		fmt.Println("logged out")
		return nil
	case "me":
		return a.me(ctx)
	case "users":
		return a.listUsers(ctx)
	case "products":
		return a.listProducts(ctx, args)
	case "product":
		return a.showProduct(ctx, args)
	case "add":
		return a.addToCart(ctx, args)
	case "decrease":
		return a.decrease(args)
	case "remove":
		return a.remove(args)
	case "cart":
		a.printCart()
		return nil
	case "clear":
		a.cart.Clear()
		fmt.Println("cart cleared")
		return nil
	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		return a.listOrders(ctx)
	case "cancel":
		return a.cancelOrder(ctx, args)
	case "suppliers":
		return a.listSuppliers(ctx)
	case "add-supplier":
		return a.addSupplier(ctx, args)
	case "add-product":
		return a.addProduct(ctx, args)
	case "update-stock":
		return a.updateStock(ctx, args)
	case "delete-product":
		return a.deleteProduct(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q (run `shop help`)", command)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: shop register <username> <email> <password>")
	}
	identity, err := a.gate.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("registered and logged in as %s (%s)\n", identity.Username, identity.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: shop login <username> <password>")
	}
	identity, err := a.gate.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", identity.Username, identity.Role)
	return nil
}

func (a *app) me(ctx context.Context) error {
	identity, err := a.gate.RefreshIdentity(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return errors.New("not logged in")
		}
		return err
	}
	fmt.Printf("%s <%s> role=%s\n", identity.Username, identity.Email, identity.Role)
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.api.Users(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
	}
	return w.Flush()
}

func (a *app) listProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.api.Products(ctx, *page, *size)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range result.Products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, domain.FormatCents(p.PriceCents), p.Stock)
	}
	w.Flush()
	if result.TotalPages > 1 {
		fmt.Printf("page %d of %d (%d products)\n", result.Page+1, result.TotalPages, result.TotalResults)
	}
	return nil
}

func (a *app) showProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shop product <id>")
	}
	p, err := a.api.ProductByID(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n  price: %s\n  category: %s\n  stock: %d\n", p.Name, domain.FormatCents(p.PriceCents), p.Category, p.Stock)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	return nil
}

func (a *app) addToCart(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: shop add <product-id> [quantity]")
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return errors.New("quantity must be a positive number")
		}
		qty = n
	}

	p, err := a.api.ProductByID(ctx, args[0])
	if err != nil {
		return err
	}
	item := cart.Item{ProductID: p.ID, Name: p.Name, UnitPriceCents: p.PriceCents}
	var snap cart.Snapshot
	for i := 0; i < qty; i++ {
		snap = a.cart.AddItem(item)
	}
	fmt.Printf("added %dx %s (cart total %s)\n", qty, p.Name, domain.FormatCents(snap.TotalPriceCents))
	return nil
}

func (a *app) decrease(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shop decrease <product-id>")
	}
	a.cart.DecreaseItem(args[0])
	a.printCart()
	return nil
}

func (a *app) remove(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shop remove <product-id>")
	}
	a.cart.RemoveItem(args[0])
	a.printCart()
	return nil
}

func (a *app) printCart() {
	snap := a.cart.Snapshot()
	if len(snap.Lines) == 0 {
		fmt.Println("cart is empty")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tUNIT\tTOTAL")
	for _, line := range snap.Lines {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			line.ProductID, line.Name, line.Quantity,
			domain.FormatCents(line.UnitPriceCents), domain.FormatCents(line.LineTotalCents))
	}
	w.Flush()
	fmt.Printf("%d items, total %s\n", snap.TotalQuantity, domain.FormatCents(snap.TotalPriceCents))
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "place the order without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctrl := checkout.New(a.api, a.gate, a.cart,
		checkout.WithLogger(a.logger),
		checkout.WithResetDelay(a.cfg.ResetDelay),
	)
	defer ctrl.Close()

	if err := ctrl.RefreshPreview(ctx); err != nil {
		return err
	}
	state := ctrl.State()
	if state.Phase == checkout.PhaseIdle {
		return errors.New("cart is empty")
	}
	if state.Phase != checkout.PhasePreviewReady {
		return fmt.Errorf("preview failed: %s", state.Error)
	}

	printPreview(state.Preview)

	if !*yes {
		fmt.Print("place order? [y/N] ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("aborted")
			return nil
		}
	}

	if err := ctrl.Confirm(ctx); err != nil {
		if errors.Is(err, checkout.ErrAuthRequired) {
			return errors.New("please log in to place an order (shop login)")
		}
		return err
	}
	state = ctrl.State()
	if state.Phase != checkout.PhaseCompleted {
		return fmt.Errorf("order failed: %s", state.Error)
	}
	fmt.Printf("%s (order %s)\n", state.SuccessMessage, state.Order.ID)
	return nil
}

func printPreview(preview *domain.OrderPreview) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tQTY\tUNIT\tSUBTOTAL")
	for _, item := range preview.Items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			item.ProductName, item.Quantity,
			domain.FormatCents(item.PerItemPriceCents), domain.FormatCents(item.SubTotalCents))
	}
	w.Flush()
	fmt.Printf("items: %s  shipping: %s  total: %s\n",
		domain.FormatCents(preview.TotalPriceCents),
		domain.FormatCents(preview.ShippingCostCents),
		domain.FormatCents(preview.TotalPriceCents+preview.ShippingCostCents))
}

func (a *app) listOrders(ctx context.Context) error {
	orders, err := a.api.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no orders")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			o.ID, o.OrderDate.Format("2006-01-02 15:04"), o.Status, len(o.Items),
			domain.FormatCents(o.TotalPriceCents+o.ShippingCostCents))
	}
	return w.Flush()
}

func (a *app) cancelOrder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shop cancel <order-id>")
	}
	message, err := a.api.DeleteOrder(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func (a *app) listSuppliers(ctx context.Context) error {
	suppliers, err := a.api.Suppliers(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE")
	for _, s := range suppliers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Email, s.Phone)
	}
	return w.Flush()
}

func (a *app) addSupplier(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: shop add-supplier <name> [-email E] [-phone P]")
	}
	fs := flag.NewFlagSet("add-supplier", flag.ContinueOnError)
	email := fs.String("email", "", "contact email")
	phone := fs.String("phone", "", "contact phone")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	s, err := a.api.AddSupplier(ctx, backend.SupplierInput{Name: args[0], Email: *email, Phone: *phone})
	if err != nil {
		return err
	}
	fmt.Printf("supplier %s created (%s)\n", s.Name, s.ID)
	return nil
}

func (a *app) addProduct(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-product", flag.ContinueOnError)
	name := fs.String("name", "", "product name")
	price := fs.Int64("price", 0, "price in cents")
	category := fs.String("category", "", "category")
	description := fs.String("description", "", "description")
	stock := fs.Int("stock", 0, "stock on hand")
	supplier := fs.String("supplier", "", "supplier id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.api.CreateProduct(ctx, backend.ProductInput{
		Name:        *name,
		Description: *description,
		PriceCents:  *price,
		Category:    *category,
		Stock:       *stock,
		SupplierID:  *supplier,
	})
	if err != nil {
		return err
	}
	fmt.Printf("product %s created (%s)\n", p.Name, p.ID)
	return nil
}

func (a *app) updateStock(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: shop update-stock <product-id> <stock>")
	}
	stock, err := strconv.Atoi(args[1])
	if err != nil || stock < 0 {
		return errors.New("stock must be a non-negative number")
	}
	p, err := a.api.ProductByID(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := a.api.UpdateProduct(ctx, p.ID, backend.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Stock:       stock,
		SupplierID:  p.SupplierID,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s stock is now %d\n", updated.Name, updated.Stock)
	return nil
}

func (a *app) deleteProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: shop delete-product <product-id>")
	}
	if err := a.api.DeleteProduct(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("product deleted")
	return nil
}
