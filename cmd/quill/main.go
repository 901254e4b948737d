package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	apiclient "github.com/splax/quill/pkg/api/client"
)

const defaultAPIBase = "http://localhost:8000"

type cliConfig struct {
	APIBaseURL  string `json:"api_base_url"`
	AccessToken string `json:"access_token"`
}

var buildVersion = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "signup":
		err = commandSignup(args)
	case "login":
		err = commandLogin(args)
	case "logout":
		err = commandLogout()
	case "whoami":
		err = commandWhoami()
	case "post":
		err = commandPost(args)
	case "comment":
		err = commandComment(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commandSignup(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	name := fs.String("name", "", "Display name")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+defaultAPIBase+")")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" || strings.TrimSpace(*name) == "" {
		return errors.New("--email and --name are required")
	}
	secret := strings.TrimSpace(*password)
	confirm := secret
	if secret == "" {
		var err error
		if secret, err = promptPassword("Password: "); err != nil {
			return err
		}
		if confirm, err = promptPassword("Confirm password: "); err != nil {
			return err
		}
	}

	cfg, client, err := setup(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := client.Signup(ctx, apiclient.SignupInput{Email: *email, UserName: *name, Password: secret, PasswordCheck: confirm}); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("account created, run 'quill login' to sign in")
	return nil
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default "+defaultAPIBase+")")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret := strings.TrimSpace(*password)
	if secret == "" {
		var err error
		if secret, err = promptPassword("Password: "); err != nil {
			return err
		}
	}

	cfg, client, err := setup(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	resp, err := client.Login(ctx, *email, secret)
	if err != nil {
		return err
	}
	cfg.AccessToken = resp.AccessToken
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", resp.UserName)
	return nil
}

func commandLogout() error {
	cfg, client, err := setup("")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := client.Signout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg.AccessToken = ""
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func commandWhoami() error {
	cfg, client, err := setup("")
	if err != nil {
		return err
	}
	token, err := requireToken(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	profile, err := client.Me(ctx, token)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", profile.UserName, profile.Email)
	return nil
}

func commandPost(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: quill post [list|show|create|edit|delete]")
	}
	fs := flag.NewFlagSet("post "+args[0], flag.ExitOnError)
	id := fs.Int64("id", 0, "Post identifier")
	title := fs.String("title", "", "Post title")
	content := fs.String("content", "", "Post content")
	skip := fs.Int("skip", 0, "Number of posts to skip")
	limit := fs.Int("limit", 0, "Maximum number of posts to display")
	fs.Parse(args[1:])

	cfg, client, err := setup("")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args[0] {
	case "list":
		posts, err := client.ListPosts(ctx, *skip, *limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCREATED")
		for _, p := range posts {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Title, p.UserName, p.CreatedAt.Local().Format(time.RFC822))
		}
		return w.Flush()
	case "show":
		if *id <= 0 {
			return errors.New("--id is required")
		}
		p, err := client.GetPost(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("%s\nby %s, %s\n\n%s\n", p.Title, p.UserName, p.CreatedAt.Local().Format(time.RFC822), p.Content)
		return nil
	}

	token, err := requireToken(cfg)
	if err != nil {
		return err
	}
	switch args[0] {
	case "create":
		if strings.TrimSpace(*title) == "" || strings.TrimSpace(*content) == "" {
			return errors.New("--title and --content are required")
		}
		p, err := client.CreatePost(ctx, token, *title, *content)
		if err != nil {
			return err
		}
		fmt.Printf("post %d created\n", p.ID)
		return nil
	case "edit":
		if *id <= 0 {
			return errors.New("--id is required")
		}
		var patch apiclient.PostPatch
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "title":
				patch.Title = title
			case "content":
				patch.Content = content
			}
		})
		if patch.Title == nil && patch.Content == nil {
			return errors.New("nothing to change, pass --title and/or --content")
		}
		if _, err := client.UpdatePost(ctx, token, *id, patch); err != nil {
			return err
		}
		fmt.Println("post updated")
		return nil
	case "delete":
		if *id <= 0 {
			return errors.New("--id is required")
		}
		if err := client.DeletePost(ctx, token, *id); err != nil {
			return err
		}
		fmt.Println("post deleted")
		return nil
	default:
		return fmt.Errorf("unknown post command: %s", args[0])
	}
}

func commandComment(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: quill comment [list|add|edit|delete]")
	}
	fs := flag.NewFlagSet("comment "+args[0], flag.ExitOnError)
	postID := fs.Int64("post", 0, "Post identifier")
	id := fs.Int64("id", 0, "Comment identifier")
	content := fs.String("content", "", "Comment content")
	skip := fs.Int("skip", 0, "Number of comments to skip")
	limit := fs.Int("limit", 0, "Maximum number of comments to display")
	fs.Parse(args[1:])

	if *postID <= 0 {
		return errors.New("--post is required")
	}
	cfg, client, err := setup("")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if args[0] == "list" {
		comments, err := client.ListComments(ctx, *postID, *skip, *limit)
		if err != nil {
			return err
		}
		for _, c := range comments {
			fmt.Printf("#%d %s: %s\n", c.ID, c.UserName, c.Content)
		}
		return nil
	}

	token, err := requireToken(cfg)
	if err != nil {
		return err
	}
	switch args[0] {
	case "add":
		if strings.TrimSpace(*content) == "" {
			return errors.New("--content is required")
		}
		c, err := client.CreateComment(ctx, token, *postID, *content)
		if err != nil {
			return err
		}
		fmt.Printf("comment %d added\n", c.ID)
		return nil
	case "edit":
		if *id <= 0 || strings.TrimSpace(*content) == "" {
			return errors.New("--id and --content are required")
		}
		if _, err := client.UpdateComment(ctx, token, *postID, *id, *content); err != nil {
			return err
		}
		fmt.Println("comment updated")
		return nil
	case "delete":
		if *id <= 0 {
			return errors.New("--id is required")
		}
		if err := client.DeleteComment(ctx, token, *postID, *id); err != nil {
			return err
		}
		fmt.Println("comment deleted")
		return nil
	default:
		return fmt.Errorf("unknown comment command: %s", args[0])
	}
}

func setup(apiBase string) (cliConfig, *apiclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cliConfig{}, nil, err
	}
	if strings.TrimSpace(apiBase) != "" {
		cfg.APIBaseURL = apiBase
	}
	client, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return cliConfig{}, nil, err
	}
	return cfg, client, nil
}

func requireToken(cfg cliConfig) (string, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return "", errors.New("please login first using 'quill login'")
	}
	return token, nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(bytes), nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{APIBaseURL: defaultAPIBase}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBase
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "quill", "config.json"), nil
}

func printUsage() {
	fmt.Printf("quill CLI %s\n\n", buildVersion)
	fmt.Print(`Usage:
	quill signup --email user@example.com --name alice [--password secret] [--api http://localhost:8000]
	quill login --email user@example.com [--password secret] [--api http://localhost:8000]
	quill logout
	quill whoami
	quill post list [--skip N] [--limit N]
	quill post show --id <post-id>
	quill post create --title <title> --content <text>
	quill post edit --id <post-id> [--title <title>] [--content <text>]
	quill post delete --id <post-id>
	quill comment list --post <post-id> [--skip N] [--limit N]
	quill comment add --post <post-id> --content <text>
	quill comment edit --post <post-id> --id <comment-id> --content <text>
	quill comment delete --post <post-id> --id <comment-id>
	quill version
`)
}

func printVersion() {
	fmt.Println(strings.TrimSpace(buildVersion))
}
