package main

import (
	"fmt"
	"os"

	"github.com/crucial707/microblog/cmd/cli/admin"
	"github.com/crucial707/microblog/cmd/cli/auth"
	"github.com/crucial707/microblog/cmd/cli/posts"
	"github.com/crucial707/microblog/cmd/cli/root"
	"github.com/crucial707/microblog/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	users.InitUsers(rootCmd)
	posts.InitPosts(rootCmd)
	admin.InitAdmin(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
