package posts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/microblog/cmd/cli/client"
	"github.com/crucial707/microblog/cmd/cli/output"
	"github.com/crucial707/microblog/internal/models"
)

type postPage struct {
	Items   []models.Post `json:"items"`
	Page    int           `json:"page"`
	Total   int           `json:"total"`
	HasNext bool          `json:"has_next"`
	HasPrev bool          `json:"has_prev"`
}

// InitPosts registers feed, explore, post and translate.
func InitPosts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		timelineCmd("feed", "/feed", "Show posts from you and the users you follow"),
		timelineCmd("explore", "/explore", "Show posts from all users"),
		postCmd(),
		translateCmd(),
	)
}

func timelineCmd(use, path, short string) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out postPage
			if err := client.Call("GET", path+"?page="+strconv.Itoa(page), nil, &out, true); err != nil {
				return err
			}
			if output.WantJSON(cmd) {
				return output.PrintJSON(out)
			}
			renderPosts(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	output.AddJSONFlag(cmd)
	return cmd
}

func postCmd() *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "post [text]",
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"body": strings.Join(args, " ")}
			if language != "" {
				payload["language"] = language
			}
			var post models.Post
			if err := client.Call("POST", "/posts", payload, &post, true); err != nil {
				return err
			}
			fmt.Printf("Your post is now live! (id %d)\n", post.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "language tag of the post, detected when omitted")
	return cmd
}

func translateCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text with the configured translation service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"text":            strings.Join(args, " "),
				"source_language": from,
				"dest_language":   to,
			}
			var out struct {
				Text string `json:"text"`
			}
			if err := client.Call("POST", "/translate", payload, &out, true); err != nil {
				return err
			}
			fmt.Println(out.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source language, detected when omitted")
	cmd.Flags().StringVar(&to, "to", "en", "destination language")
	return cmd
}

func renderPosts(p postPage) {
	if len(p.Items) == 0 {
		fmt.Println("No posts.")
		return
	}
	rows := make([][]interface{}, 0, len(p.Items))
	for _, post := range p.Items {
		rows = append(rows, []interface{}{post.ID, post.Author, post.Timestamp.Local().Format(time.DateTime), post.Body})
	}
	output.RenderTable([]string{"ID", "Author", "Posted", "Body"}, rows)

	var nav []string
	if p.HasPrev {
		nav = append(nav, "newer: --page "+strconv.Itoa(p.Page-1))
	}
	if p.HasNext {
		nav = append(nav, "older: --page "+strconv.Itoa(p.Page+1))
	}
	if len(nav) > 0 {
		fmt.Println(strings.Join(nav, "  "))
	}
}
