// blogctl logs in to the blog API and runs one command, e.g.
//
//	blogctl -email a@b.c -password pw posts
//	blogctl -email a@b.c -password pw create -title Hi -category go -desc "..."
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/iamasit07/blog/backend/pkg/client"
)

const usage = `usage: blogctl [flags] <command> [args]

commands:
  register <username>       create an account for -email/-password
  me                        show the logged-in profile
  posts                     list all posts
  search <title>            search posts by title
  get <id>                  show one post
  related <id>              list posts in the same category
  create [create flags]     publish a post
  delete <id>               delete one of your posts
  logout                    end the session
`

func main() {
	addr := flag.String("addr", envOr("BLOG_API", "http://localhost:3000"), "API base URL")
	email := flag.String("email", os.Getenv("BLOG_EMAIL"), "login email")
	password := flag.String("password", os.Getenv("BLOG_PASSWORD"), "login password")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := client.New(*addr)
	if err != nil {
		fail(err)
	}

	result, err := run(ctx, c, *email, *password, flag.Args())
	if err != nil {
		fail(err)
	}
	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	}
}

func run(ctx context.Context, c *client.Client, email, password string, args []string) (interface{}, error) {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		if len(rest) != 1 {
			return nil, fmt.Errorf("register needs a username")
		}
		if err := c.Register(ctx, email, rest[0], password); err != nil {
			return nil, err
		}
		return map[string]string{"message": "registered " + email}, nil
	case "posts":
		return c.ListPosts(ctx)
	case "search":
		title := ""
		if len(rest) > 0 {
			title = rest[0]
		}
		return c.SearchPosts(ctx, title)
	case "get", "related":
		id, err := idArg(rest)
		if err != nil {
			return nil, err
		}
		if cmd == "get" {
			return c.GetPost(ctx, id)
		}
		return c.RelatedPosts(ctx, id)
	}

	// everything below needs a session
	if email == "" || password == "" {
		return nil, fmt.Errorf("%s requires -email and -password", cmd)
	}
	if _, err := c.Login(ctx, email, password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	switch cmd {
	case "me":
		return c.Me(ctx)
	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		title := fs.String("title", "", "post title")
		category := fs.String("category", "", "post category")
		thumbnail := fs.String("thumbnail", "", "thumbnail URL")
		desc := fs.String("desc", "", "post body")
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		return c.CreatePost(ctx, client.NewPost{Title: *title, Category: *category, Thumbnail: *thumbnail, Desc: *desc})
	case "delete":
		id, err := idArg(rest)
		if err != nil {
			return nil, err
		}
		if err := c.DeletePost(ctx, id); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": id}, nil
	case "logout":
		return nil, c.Logout(ctx)
	}
	return nil, fmt.Errorf("unknown command %q", cmd)
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a post id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q", args[0])
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "blogctl:", err)
	os.Exit(1)
}
