package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	config "github.com/maheshrc27/postflow-cli/configs"
	"github.com/maheshrc27/postflow-cli/internal/apiclient"
	"github.com/maheshrc27/postflow-cli/internal/controller"
	"github.com/maheshrc27/postflow-cli/internal/localstore"
	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/internal/session"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
)

const usage = `Usage: postflow <command> [flags]

Commands:
  register         Create an account
  login            Log in and store the session token
  logout           Log out and clear the session token
  profile          Show or update the user profile
  change-password  Change the account password
  dashboard        Show post and account counters
  posts            List posts, show publish results, delete a post
  create           Create, schedule or publish a post
  accounts         List, add or remove social accounts
  generate         Generate an image from a prompt
  theme            Show or set the display theme
`

type app struct {
	cfg      *config.Config
	store    session.Store
	local    *localstore.Store
	auth     *apiclient.AuthClient
	posts    *apiclient.PostsClient
	accounts *apiclient.AccountsClient
}

func main() {
	// .env is optional for the CLI.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	store, err := session.NewFileStore(cfg.StateDir, cfg.SecretKey)
	if err != nil {
		fail(err)
	}
	local, err := localstore.New(cfg.StateDir)
	if err != nil {
		fail(err)
	}

	client := apiclient.New(cfg.APIBaseURL, store)
	a := &app{
		cfg:      cfg,
		store:    store,
		local:    local,
		auth:     apiclient.NewAuthClient(client),
		posts:    apiclient.NewPostsClient(client),
		accounts: apiclient.NewAccountsClient(client),
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "register":
		err = a.register(ctx, os.Args[2:])
	case "login":
		err = a.login(ctx, os.Args[2:])
	case "logout":
		err = a.logout(ctx)
	case "profile":
		err = a.profile(ctx, os.Args[2:])
	case "change-password":
		err = a.changePassword(ctx, os.Args[2:])
	case "dashboard":
		err = a.dashboard(ctx)
	case "posts":
		err = a.postsCmd(ctx, os.Args[2:])
	case "create":
		err = a.create(ctx, os.Args[2:])
	case "accounts":
		err = a.accountsCmd(ctx, os.Args[2:])
	case "generate":
		err = a.generate(ctx, os.Args[2:])
	case "theme":
		err = a.theme(os.Args[2:])
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	fs.Parse(args)

	err := a.auth.Register(ctx, transfer.Registration{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Println("Account created, you can now login.")
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	fs.Parse(args)

	resp, err := a.auth.Login(ctx, transfer.Credentials{Username: *username, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (user %d)\n", resp.Username, resp.UserID)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	email := fs.String("email", "", "Update the email address")
	fs.Parse(args)

	var user *models.User
	var err error
	if *email != "" {
		user, err = a.auth.UpdateProfile(ctx, transfer.ProfileUpdate{Email: *email})
	} else {
		user, err = a.auth.GetProfile(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> (user %d)\n", user.Username, user.Email, user.ID)
	return nil
}

func (a *app) changePassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	oldPassword := fs.String("old", "", "Current password")
	newPassword := fs.String("new", "", "New password")
	fs.Parse(args)

	err := a.auth.ChangePassword(ctx, transfer.PasswordChange{
		OldPassword: *oldPassword,
		NewPassword: *newPassword,
	})
	if err != nil {
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	dash := controller.NewDashboardController(a.posts, a.accounts)
	snapshot, err := dash.Load(ctx)
	if err != nil {
		return err
	}

	s := snapshot.Stats
	fmt.Printf("Posts: %d total, %d scheduled, %d published, %d failed\n",
		s.TotalPosts, s.ScheduledPosts, s.PublishedPosts, s.FailedPosts)
	fmt.Printf("Accounts: %d connected, %d active\n", s.ConnectedAccounts, s.ActiveAccounts)
	return nil
}

func (a *app) postsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	posts := controller.NewPostsController(a.posts)
	switch args[0] {
	case "list":
		if err := posts.Refresh(ctx); err != nil {
			return err
		}
		for _, p := range posts.Items() {
			line := fmt.Sprintf("#%d [%s] %s", p.ID, p.Status, p.Title)
			if p.ScheduledTime != nil {
				line += " @ " + p.ScheduledTime.Format(time.RFC3339)
			}
			fmt.Println(line)
		}
		return nil

	case "results":
		fs := flag.NewFlagSet("posts results", flag.ExitOnError)
		id := fs.Int64("id", 0, "Post id")
		fs.Parse(args[1:])
		results, err := posts.Results(ctx, *id)
		if err != nil {
			return err
		}
		for _, r := range results {
			mark := "FAIL"
			if r.Success {
				mark = "OK"
			}
			fmt.Printf("%-4s %-10s %s\n", mark, r.Platform, r.Message)
		}
		return nil

	case "delete":
		fs := flag.NewFlagSet("posts delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "Post id")
		yes := fs.Bool("yes", false, "Skip the confirmation prompt")
		fs.Parse(args[1:])

		if !*yes && !confirm(fmt.Sprintf("Delete post %d?", *id)) {
			fmt.Println("Aborted.")
			return nil
		}
		if err := posts.Delete(ctx, *id, true); err != nil {
			return err
		}
		fmt.Println("Post deleted.")
		return nil
	}

	return fmt.Errorf("unknown posts subcommand: %s", args[0])
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "Post title")
	content := fs.String("content", "", "Post content")
	imagePath := fs.String("image", "", "Path to an image file")
	platforms := fs.String("platforms", "", "Comma-separated social account ids")
	schedule := fs.String("schedule", "", "Scheduled time (RFC3339), e.g. 2026-09-01T09:00:00Z")
	publish := fs.Bool("publish", false, "Publish immediately after creating")
	igUsername := fs.String("ig-username", "", "Instagram username (publish only, never stored)")
	igPassword := fs.String("ig-password", "", "Instagram password (publish only, never stored)")
	fs.Parse(args)

	composer := controller.NewComposerController(a.posts)
	accountsCtl := controller.NewAccountsController(a.accounts)
	accountsCtl.Subscribe(composer.SetAccounts)
	if err := accountsCtl.Refresh(ctx); err != nil {
		return err
	}

	composer.SetTitle(*title)
	composer.SetContent(*content)

	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return err
		}
		composer.AttachImage(filepath.Base(*imagePath), data)
	}

	for _, raw := range strings.Split(*platforms, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid platform id: %s", raw)
		}
		composer.TogglePlatform(id)
	}

	if *schedule != "" {
		t, err := time.Parse(time.RFC3339, *schedule)
		if err != nil {
			return fmt.Errorf("invalid schedule time: %w", err)
		}
		if err := composer.Schedule(t); err != nil {
			return err
		}
		post, err := composer.SchedulePost(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Post %d scheduled for %s\n", post.ID, t.Format(time.RFC3339))
		return nil
	}

	if *publish {
		creds := transfer.PlatformCredentials{}
		if *igUsername != "" || *igPassword != "" {
			creds[models.PlatformInstagram] = map[string]string{
				"username": *igUsername,
				"password": *igPassword,
			}
		}
		summary, err := composer.PublishNow(ctx, creds)
		if err != nil {
			return err
		}
		fmt.Println(summary.Message())
		return nil
	}

	post, err := composer.SaveDraft(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Draft %d saved.\n", post.ID)
	return nil
}

func (a *app) accountsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	accounts := controller.NewAccountsController(a.accounts)
	switch args[0] {
	case "list":
		if err := accounts.Refresh(ctx); err != nil {
			return err
		}
		for _, acc := range accounts.Items() {
			active := "inactive"
			if acc.IsActive {
				active = "active"
			}
			fmt.Printf("#%d %-10s @%s (%s)\n", acc.ID, acc.Platform, acc.Username, active)
		}
		return nil

	case "add":
		fs := flag.NewFlagSet("accounts add", flag.ExitOnError)
		platform := fs.String("platform", "", "telegram, instagram, facebook or whatsapp")
		username := fs.String("username", "", "Account username")
		token := fs.String("token", "", "Bot or API token (telegram)")
		chatID := fs.String("chat-id", "", "Chat id (telegram)")
		fs.Parse(args[1:])

		account, err := accounts.Create(ctx, transfer.AccountCreation{
			Platform: *platform,
			Username: *username,
			Token:    *token,
			ChatID:   *chatID,
			IsActive: true,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Account %d connected.\n", account.ID)
		return nil

	case "remove":
		fs := flag.NewFlagSet("accounts remove", flag.ExitOnError)
		id := fs.Int64("id", 0, "Account id")
		yes := fs.Bool("yes", false, "Skip the confirmation prompt")
		fs.Parse(args[1:])

		if !*yes && !confirm(fmt.Sprintf("Remove account %d?", *id)) {
			fmt.Println("Aborted.")
			return nil
		}
		if err := accounts.Delete(ctx, *id, true); err != nil {
			return err
		}
		fmt.Println("Account removed.")
		return nil
	}

	return fmt.Errorf("unknown accounts subcommand: %s", args[0])
}

func (a *app) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	prompt := fs.String("prompt", "", "Image prompt")
	fs.Parse(args)

	gallery := controller.NewGalleryController(a.posts, a.local)
	fmt.Println("Generating image, this can take a while...")
	img, err := gallery.Generate(ctx, *prompt)
	if err != nil {
		return err
	}
	fmt.Printf("Image generated (%d bytes of base64), saved to the local gallery.\n", len(img.Base64))
	return nil
}

func (a *app) theme(args []string) error {
	fs := flag.NewFlagSet("theme", flag.ExitOnError)
	set := fs.String("set", "", "Set the theme (light or dark)")
	fs.Parse(args)

	if *set != "" {
		if err := a.local.SetTheme(*set); err != nil {
			return err
		}
		fmt.Printf("Theme set to %s.\n", *set)
		return nil
	}

	theme := a.local.Theme()
	if theme == "" {
		theme = "light"
	}
	fmt.Println(theme)
	return nil
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var answer string
	fmt.Scanln(&answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
