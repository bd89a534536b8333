package users

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/microblog/cmd/cli/client"
	"github.com/crucial707/microblog/cmd/cli/output"
	"github.com/crucial707/microblog/internal/models"
)

type userPage struct {
	Items   []models.User `json:"items"`
	Page    int           `json:"page"`
	Total   int           `json:"total"`
	HasNext bool          `json:"has_next"`
}

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Browse users and the follow graph",
	}
	usersCmd.AddCommand(
		listUsersCmd(),
		showUserCmd(),
		followersCmd("followers", "List users following <username>"),
		followersCmd("following", "List users <username> follows"),
	)

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var me models.User
			if err := client.Call("GET", "/me", nil, &me, true); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.PrintJSON(me)
			}
			printUser(me)
			return nil
		},
	}
	output.AddJSONFlag(meCmd)
	meCmd.AddCommand(editProfileCmd(), activityCmd())

	rootCmd.AddCommand(usersCmd, meCmd, followCmd(true), followCmd(false))
}

// ==========================
// LIST
// ==========================
func listUsersCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out userPage
			if err := client.Call("GET", "/users?page="+strconv.Itoa(page), nil, &out, true); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.PrintJSON(out.Items)
			}
			renderUsers(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	output.AddJSONFlag(cmd)
	return cmd
}

// ==========================
// SHOW
// ==========================
func showUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [username]",
		Short: "Show a user's profile and recent posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := url.PathEscape(args[0])
			var profile models.Profile
			if err := client.Call("GET", "/users/"+name, nil, &profile, true); err != nil {
				return err
			}
			var posts struct {
				Items []models.Post `json:"items"`
			}
			if err := client.Call("GET", "/users/"+name+"/posts", nil, &posts, true); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.PrintJSON(map[string]any{"profile": profile, "posts": posts.Items})
			}

			printUser(profile.User)
			fmt.Printf("%d followers, %d following, %d posts\n", profile.Followers, profile.Following, profile.Posts)
			if profile.IsFollowing {
				fmt.Println("You follow this user.")
			}
			rows := make([][]interface{}, 0, len(posts.Items))
			for _, p := range posts.Items {
				rows = append(rows, []interface{}{p.ID, p.Timestamp.Local().Format(time.DateTime), p.Body})
			}
			output.RenderTable([]string{"ID", "Posted", "Body"}, rows)
			return nil
		},
	}
	output.AddJSONFlag(cmd)
	return cmd
}

func followersCmd(which, short string) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   which + " [username]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out userPage
			path := "/users/" + url.PathEscape(args[0]) + "/" + which + "?page=" + strconv.Itoa(page)
			if err := client.Call("GET", path, nil, &out, true); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.PrintJSON(out.Items)
			}
			renderUsers(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	output.AddJSONFlag(cmd)
	return cmd
}

// ==========================
// FOLLOW / UNFOLLOW
// ==========================
func followCmd(follow bool) *cobra.Command {
	use, action := "unfollow", "Stop following"
	if follow {
		use, action = "follow", "Follow"
	}
	return &cobra.Command{
		Use:   use + " [username]",
		Short: action + " a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Username  string `json:"username"`
				Following bool   `json:"following"`
				Changed   bool   `json:"changed"`
			}
			if err := client.Call("POST", "/users/"+url.PathEscape(args[0])+"/"+use, nil, &out, true); err != nil {
				return err
			}
			switch {
			case follow && out.Changed:
				fmt.Printf("You are following %s!\n", out.Username)
			case follow:
				fmt.Printf("You are already following %s.\n", out.Username)
			case out.Changed:
				fmt.Printf("You are not following %s.\n", out.Username)
			default:
				fmt.Printf("You were not following %s.\n", out.Username)
			}
			return nil
		},
	}
}

// ==========================
// PROFILE
// ==========================
func editProfileCmd() *cobra.Command {
	var username, about string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change your username or about text",
		RunE: func(cmd *cobra.Command, args []string) error {
			var me models.User
			if err := client.Call("GET", "/me", nil, &me, true); err != nil {
				return err
			}
			if cmd.Flags().Changed("username") {
				me.Username = username
			}
			if cmd.Flags().Changed("about") {
				me.AboutMe = about
			}
			payload := map[string]string{"username": me.Username, "about_me": me.AboutMe}
			if err := client.Call("PUT", "/me", payload, &me, true); err != nil {
				return err
			}
			fmt.Println("Your changes have been saved.")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&about, "about", "", "new about text")
	return cmd
}

func activityCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show your recent account activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []models.AuditEntry
			if err := client.Call("GET", "/me/activity?limit="+strconv.Itoa(limit), nil, &entries, true); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.PrintJSON(entries)
			}
			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []interface{}{e.CreatedAt.Local().Format(time.DateTime), e.Action, e.Details})
			}
			output.RenderTable([]string{"When", "Action", "Details"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	output.AddJSONFlag(cmd)
	return cmd
}

func renderUsers(p userPage) {
	rows := make([][]interface{}, 0, len(p.Items))
	for _, u := range p.Items {
		rows = append(rows, []interface{}{u.ID, u.Username, u.AboutMe, u.LastSeen.Local().Format(time.DateTime)})
	}
	output.RenderTable([]string{"ID", "Username", "About", "Last seen"}, rows)
	if p.HasNext {
		fmt.Printf("page %d of %d users, more with --page %d\n", p.Page, p.Total, p.Page+1)
	}
}

func printUser(u models.User) {
	fmt.Printf("%s (id %d)\n", u.Username, u.ID)
	if u.Email != "" {
		fmt.Println("Email:", u.Email)
	}
	if u.AboutMe != "" {
		fmt.Println(u.AboutMe)
	}
	if !u.LastSeen.IsZero() {
		fmt.Println("Last seen on:", u.LastSeen.Local().Format(time.DateTime))
	}
}
