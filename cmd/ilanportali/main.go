package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"ilanportali/internal/app"
	"ilanportali/internal/auth"
	"ilanportali/internal/catalog"
	"ilanportali/internal/config"
	"ilanportali/internal/listings"
	"ilanportali/internal/util"
	"ilanportali/pkg/domain"
	"ilanportali/pkg/store"
)

const usage = `usage: ilanportali [-config path] <command> [flags]

commands:
  list        list listings (-q query, -sort newest|price_asc|price_desc)
  login       sign in (-email, -password)
  signup      create an account (-email, -password)
  logout      end the session
  whoami      show the signed-in user
  post        create a listing (-title, -price, -location, -category, -image)
  categories  list listing categories
`

func main() {
	global := flag.NewFlagSet("ilanportali", flag.ExitOnError)
	cfgPath := global.String("config", "", "config file (default config.yaml)")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])
	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	timeout, err := config.ParseRequestTimeout(cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("failed to parse request timeout: %v", err)
	}
	util.InitLogger(cfg.LogLevel)

	tokens, err := openTokenStore(cfg)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}

	client, err := app.New(app.Config{
		APIBaseURL:     cfg.APIBaseURL,
		AssetOrigin:    cfg.AssetOrigin,
		RequestTimeout: timeout,
		DefaultSort:    catalog.SortKey(cfg.DefaultSort),
		Tokens:         tokens,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	cmd, args := global.Arg(0), global.Args()[1:]
	ctx := context.Background()
	err = run(ctx, client, cmd, args, os.Stdout)
	closeTokenStore(tokens)
	if err != nil {
		var userErr *app.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, userErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func openTokenStore(cfg config.FileConfig) (store.TokenStore, error) {
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		return store.NewRedisTokenStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisKeyPrefix), nil
	case config.TokenStoreMemory:
		return store.NewMemoryTokenStore(""), nil
	default:
		return store.NewFileTokenStore(cfg.TokenFile)
	}
}

// closeTokenStore releases stores holding connections, such as Redis.
func closeTokenStore(tokens store.TokenStore) {
	closer, ok := tokens.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("failed to close session store", "err", err)
	}
}

func run(ctx context.Context, a *app.App, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "list":
		return runList(ctx, a, args, out)
	case "login", "signup":
		return runAuth(ctx, a, cmd, args, out)
	case "logout":
		a.Logout()
		fmt.Fprintln(out, app.MsgLoggedOut)
		return nil
	case "whoami":
		return runWhoami(ctx, a, out)
	case "post":
		return runPost(ctx, a, args, out)
	case "categories":
		for _, c := range domain.Categories {
			fmt.Fprintln(out, c)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

func runList(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("q", "", "search title, category or location")
	sortKey := fs.String("sort", "", "newest, price_asc or price_desc")
	_ = fs.Parse(args)

	if err := a.Start(ctx); err != nil {
		return err
	}
	<-a.SessionReady()

	if *query != "" {
		a.Search(*query)
	}
	if *sortKey != "" {
		a.SetSort(catalog.SortKey(*sortKey))
	}

	if user, ok := a.CurrentUser(); ok {
		fmt.Fprintf(out, "[%s]\n", user.Email)
	}
	fmt.Fprintln(out, a.Heading())
	items := a.Listings()
	if len(items) == 0 {
		fmt.Fprintln(out, "İlan bulunamadı.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBAŞLIK\tFİYAT\tKONUM\tKATEGORİ\tRESİM")
	for _, l := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Title, catalog.FormatPrice(l.Price, l.Currency), l.Location, l.Category, a.ImageLink(l))
	}
	return tw.Flush()
}

func runAuth(ctx context.Context, a *app.App, cmd string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	email := fs.String("email", "", "account e-mail")
	password := fs.String("password", os.Getenv("ILANPORTALI_PASSWORD"), "account password (prompted when empty)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("-email is required")
	}
	if *password == "" {
		pw, err := promptPassword()
		if err != nil {
			return err
		}
		*password = pw
	}

	if cmd == "signup" {
		if _, err := a.Signup(ctx, *email, *password); err != nil {
			return err
		}
		fmt.Fprintln(out, app.MsgSignedUp)
		return nil
	}
	if _, err := a.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintln(out, app.MsgLoggedIn)
	return nil
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("-password is required when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Şifre: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func runWhoami(ctx context.Context, a *app.App, out io.Writer) error {
	if a.VerifySession(ctx) != auth.StateAuthenticated {
		fmt.Fprintln(out, "Giriş yapılmamış.")
		return nil
	}
	user, _ := a.CurrentUser()
	fmt.Fprintf(out, "%s (id %d)\n", user.Email, user.ID)
	if exp, ok := auth.TokenExpiry(a.SessionToken()); ok {
		fmt.Fprintf(out, "oturum bitişi: %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runPost(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "listing title")
	price := fs.Float64("price", 0, "price in TRY")
	location := fs.String("location", "", "city, district")
	category := fs.String("category", string(domain.DefaultCategory), "one of the categories command")
	imagePath := fs.String("image", "", "image file")
	_ = fs.Parse(args)

	a.VerifySession(ctx)

	var image *listings.Image
	if *imagePath != "" {
		f, err := os.Open(*imagePath)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		image = &listings.Image{
			Filename:    filepath.Base(*imagePath),
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(*imagePath))),
			Body:        f,
		}
	}

	listing, err := a.AddListing(ctx, listings.NewListing{
		Title:    *title,
		Price:    *price,
		Location: *location,
		Category: domain.Category(*category),
	}, image)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (id %d)\n", app.MsgListingAdded, listing.ID)
	return nil
}
