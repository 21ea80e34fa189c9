package storefront

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rl1809/aura-kitchen/internal/adapter/client"
	"github.com/rl1809/aura-kitchen/internal/core/cart"
	"github.com/rl1809/aura-kitchen/internal/core/checkout"
	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

// NewRootCommand builds the storefront CLI around app. Flags override the
// values app was created with.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the Aura Kitchen menu, fill a cart and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.APIURL, "api", app.APIURL, "API base URL")
	root.PersistentFlags().StringVar(&app.Session, "session", app.Session, "browsing session id")
	root.PersistentFlags().StringVar(&app.SessionDir, "session-dir", app.SessionDir, "directory holding session carts")

	root.AddCommand(
		menuCmd(app),
		itemCmd(app),
		addCmd(app),
		removeCmd(app),
		updateCmd(app),
		cartCmd(app),
		clearCmd(app),
		checkoutCmd(app),
		reviewsCmd(app),
		reviewCmd(app),
		contactCmd(app),
		registerCmd(app),
		loginCmd(app),
		logoutCmd(app),
		whoamiCmd(app),
		endSessionCmd(app),
	)
	return root
}

func menuCmd(app *App) *cobra.Command {
	var q client.MenuQuery
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List menu items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			items, err := api.ListMenu(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				app.printf("No items found.\n")
				return nil
			}
			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\t")
			for _, it := range items {
				name := it.Name
				if it.Popular {
					name += " *"
				}
				if !it.Available {
					name += " (sold out)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", it.ID, name, it.Category, formatPrice(it.Price))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", "", "Breakfast, Meals, Snacks or Drinks")
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "case-insensitive name search")
	cmd.Flags().BoolVar(&q.PopularOnly, "popular", false, "popular items only")
	return cmd
}

func itemCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "item <id>",
		Short: "Show one menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := app.client()
			if err != nil {
				return err
			}
			it, err := api.GetMenuItem(cmd.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("menu item %d not found", id)
			}
			if err != nil {
				return err
			}
			app.printf("%s (%s) %s\n%s\n", it.Name, it.Category, formatPrice(it.Price), it.Description)
			if !it.Available {
				app.printf("Sold out.\n")
				return nil
			}
			app.printf("Add-ons: %s\n", strings.Join(domain.AddOns, ", "))
			app.printf("Add with: storefront add %d -c %q\n", it.ID, domain.AddOns[0])
			return nil
		},
	}
}

func addCmd(app *App) *cobra.Command {
	var (
		qty            int
		customizations []string
	)
	cmd := &cobra.Command{
		Use:     "add <id>",
		Short:   "Add a menu item to the cart",
		Example: `  storefront add 1 -q 2 -c "Extra Cheese" -c "Crispy Bacon"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := app.client()
			if err != nil {
				return err
			}
			item, err := api.GetMenuItem(cmd.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("menu item %d not found", id)
			}
			if err != nil {
				return err
			}

			c, err := app.openCart(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Add(cmd.Context(), *item, qty, customizations...); err != nil {
				return err
			}
			app.printf("Added %d x %s. Cart: %d items, %s\n", qty, item.Name, c.ItemCount(), formatPrice(c.Total()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&qty, "quantity", "q", 1, "quantity to add")
	cmd.Flags().StringArrayVarP(&customizations, "custom", "c", nil, "customization label, repeatable and ordered")
	return cmd
}

func removeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove every line of a menu item from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := app.openCart(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Remove(cmd.Context(), id); err != nil {
				return err
			}
			return printCart(app, c)
		},
	}
}

func updateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "update <id> <delta>",
		Short:   "Change the quantity of a menu item in the cart",
		Example: "  storefront update 3 1\n  storefront update 3 -- -1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			c, err := app.openCart(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.UpdateQuantity(cmd.Context(), id, delta); err != nil {
				return err
			}
			return printCart(app, c)
		},
	}
}

func cartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openCart(cmd.Context())
			if err != nil {
				return err
			}
			return printCart(app, c)
		},
	}
}

func clearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openCart(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Clear(cmd.Context()); err != nil {
				return err
			}
			app.printf("Cart cleared.\n")
			return nil
		},
	}
}

func checkoutCmd(app *App) *cobra.Command {
	var form checkout.Form
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openCart(cmd.Context())
			if err != nil {
				return err
			}
			api, err := app.client()
			if err != nil {
				return err
			}

			co, err := checkout.New(c, api, checkout.WithLogger(app.Log))
			if errors.Is(err, checkout.ErrEmptyCart) {
				app.printf("Your cart is empty. Add something from the menu first.\n")
				return err
			}
			if err != nil {
				return err
			}

			q := co.Quote()
			app.printf("Subtotal %s, delivery %s, total %s\n",
				formatPrice(q.Subtotal), formatPrice(q.DeliveryFee), formatPrice(q.Total))

			order, err := co.Submit(cmd.Context(), form)
			if err != nil {
				printSubmitError(app, err)
				return err
			}
			app.printf("Order #%d placed. Total %s. Status: %s\n", order.ID, formatPrice(order.Total), order.Status)
			if err := co.ClearErr(); err != nil {
				app.printf("Warning: the cart could not be cleared (%v).\n", err)
				app.printf("Run `storefront clear` before ordering again, or the same items will be ordered twice.\n")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&form.CustomerName, "name", "", "full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&form.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&form.Payment, "payment", "card", "card, upi or cash")
	return cmd
}

func reviewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews",
		Short: "List customer reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			reviews, err := api.ListReviews(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range reviews {
				app.printf("%s %s\n  %s\n", strings.Repeat("*", r.Rating), r.Name, r.Comment)
			}
			return nil
		},
	}
}

func reviewCmd(app *App) *cobra.Command {
	var sub domain.ReviewSubmission
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Leave a review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			if _, err := api.CreateReview(cmd.Context(), sub); err != nil {
				printSubmitError(app, err)
				return err
			}
			app.printf("Thanks for your review!\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&sub.Name, "name", "", "your name")
	cmd.Flags().IntVar(&sub.Rating, "rating", 5, "rating from 1 to 5")
	cmd.Flags().StringVar(&sub.Comment, "comment", "", "your review")
	return cmd
}

func contactCmd(app *App) *cobra.Command {
	var sub domain.MessageSubmission
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the restaurant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			if _, err := api.SendMessage(cmd.Context(), sub); err != nil {
				printSubmitError(app, err)
				return err
			}
			app.printf("Message sent. We'll get back to you soon.\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&sub.Name, "name", "", "your name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "your email")
	cmd.Flags().StringVar(&sub.Message, "message", "", "your message")
	return cmd
}

func registerCmd(app *App) *cobra.Command {
	return credentialsCmd(app, "register", "Create an account", func(cmd *cobra.Command, api API, creds domain.Credentials) (*domain.User, error) {
		return api.Register(cmd.Context(), creds)
	})
}

func loginCmd(app *App) *cobra.Command {
	return credentialsCmd(app, "login", "Log in", func(cmd *cobra.Command, api API, creds domain.Credentials) (*domain.User, error) {
		return api.Login(cmd.Context(), creds)
	})
}

func credentialsCmd(app *App, use, short string, call func(*cobra.Command, API, domain.Credentials) (*domain.User, error)) *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			user, err := call(cmd, api, creds)
			if err != nil {
				printSubmitError(app, err)
				return err
			}
			if err := app.saveAuth(api.SessionID()); err != nil {
				return fmt.Errorf("save login: %w", err)
			}
			app.printf("Logged in as %s.\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password")
	return cmd
}

func logoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			if err := api.Logout(cmd.Context()); err != nil {
				app.Log.WithError(err).Warn("server logout failed")
			}
			if err := app.clearAuth(); err != nil {
				return err
			}
			app.printf("Logged out.\n")
			return nil
		},
	}
}

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			user, err := api.CurrentUser(cmd.Context())
			if errors.Is(err, domain.ErrUnauthenticated) {
				app.printf("Not logged in.\n")
				return nil
			}
			if err != nil {
				return err
			}
			app.printf("%s\n", user.Username)
			return nil
		},
	}
}

func endSessionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "end-session",
		Short: "Discard the cart and login of this browsing session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.openCart(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.End(cmd.Context()); err != nil {
				return err
			}
			if err := app.clearAuth(); err != nil {
				return err
			}
			app.printf("Session %s ended.\n", app.Session)
			return nil
		},
	}
}

func printCart(app *App, c *cart.Cart) error {
	lines := c.Lines()
	if len(lines) == 0 {
		app.printf("Your cart is empty.\n")
		return nil
	}
	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tQTY\tPRICE\tSUBTOTAL\t")
	for _, l := range lines {
		name := l.Name
		if len(l.Customizations) > 0 {
			name += " (" + strings.Join(l.Customizations, ", ") + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t\n", l.MenuItemID, name, l.Quantity, formatPrice(l.Price), formatPrice(l.Subtotal()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	q := checkout.QuoteFor(c)
	app.printf("Subtotal %s\nDelivery %s\nTotal    %s\n",
		formatPrice(q.Subtotal), formatPrice(q.DeliveryFee), formatPrice(q.Total))
	return nil
}

func printSubmitError(app *App, err error) {
	var (
		verr *domain.ValidationError
		serr *domain.SubmissionError
		nerr *domain.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			app.printf("  %s: %s\n", f.Field, f.Message)
		}
	case errors.As(err, &serr):
		app.printf("Request rejected: %s\n", serr.Message)
		for _, f := range serr.Details {
			app.printf("  %s: %s\n", f.Field, f.Message)
		}
	case errors.As(err, &nerr):
		app.printf("Could not reach the restaurant. Your cart is kept, please try again.\n")
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid menu item id %q", s)
	}
	return id, nil
}
