package admin

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/crucial707/microblog/internal/auth"
)

var sampleBodies = []struct{ body, lang string }{
	{"Beautiful day in Portland!", "en"},
	{"The Avengers movie was so cool!", "en"},
	{"Hola, ¿qué tal va todo?", "es"},
	{"Je lis un bon livre ce soir.", "fr"},
	{"Heute gehe ich wandern.", "de"},
	{"Just shipped a new release.", "en"},
	{"Coffee first, then code.", "en"},
}

type seedUser struct {
	Username string
	Email    string
}

type seedPost struct {
	Author    int
	Body      string
	Language  string
	CreatedAt time.Time
}

type seedPlan struct {
	Users   []seedUser
	Posts   []seedPost
	Follows [][2]int // follower, followed as indexes into Users
}

// plan builds a deterministic data set. Each user follows up to follows
// distinct other users and never themselves.
func plan(users, postsPerUser, follows int, seed uint64, now time.Time) seedPlan {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := seedPlan{}
	for i := 0; i < users; i++ {
		name := fmt.Sprintf("user%03d", i+1)
		p.Users = append(p.Users, seedUser{Username: name, Email: name + "@example.com"})
	}
	for i := 0; i < users; i++ {
		for j := 0; j < postsPerUser; j++ {
			s := sampleBodies[r.IntN(len(sampleBodies))]
			p.Posts = append(p.Posts, seedPost{
				Author:    i,
				Body:      s.body,
				Language:  s.lang,
				CreatedAt: now.Add(-time.Duration(r.IntN(30*24*60)) * time.Minute),
			})
		}
	}
	if users < 2 || follows < 1 {
		return p
	}
	if follows > users-1 {
		follows = users - 1
	}
	for i := 0; i < users; i++ {
		for _, k := range r.Perm(users - 1)[:follows] {
			// shift past i so nobody follows themselves
			if k >= i {
				k++
			}
			p.Follows = append(p.Follows, [2]int{i, k})
		}
	}
	return p
}

func seedCmd() *cobra.Command {
	var users, posts, follows int
	var password string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample users, posts and follows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			p := plan(users, posts, follows, seed, time.Now().UTC())

			conn, err := pgx.Connect(ctx, databaseURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer conn.Close(ctx)

			if err := load(ctx, conn, p, hash); err != nil {
				return err
			}
			fmt.Printf("Seeded %d users, %d posts, %d follows. Password for every user: %s\n",
				len(p.Users), len(p.Posts), len(p.Follows), password)
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 20, "number of users")
	cmd.Flags().IntVar(&posts, "posts", 10, "posts per user")
	cmd.Flags().IntVar(&follows, "follows", 5, "users followed by each user")
	cmd.Flags().StringVar(&password, "password", "password123", "password for every seeded user")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

// load writes p in one transaction: users by batch (their ids are needed),
// posts by COPY, follows by batch so existing edges are skipped.
func load(ctx context.Context, conn *pgx.Conn, p seedPlan, hash string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, u := range p.Users {
		batch.Queue(`
			INSERT INTO users (username, email, password_hash, about_me)
			VALUES ($1, $2, $3, '')
			ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
			RETURNING id`, u.Username, u.Email, hash)
	}
	ids := make([]int, len(p.Users))
	br := tx.SendBatch(ctx, batch)
	for i := range p.Users {
		if err := br.QueryRow().Scan(&ids[i]); err != nil {
			br.Close()
			return fmt.Errorf("insert user %s: %w", p.Users[i].Username, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	rows := make([][]any, 0, len(p.Posts))
	for _, post := range p.Posts {
		rows = append(rows, []any{post.Body, post.CreatedAt, post.Language, ids[post.Author]})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"posts"},
		[]string{"body", "created_at", "language", "user_id"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy posts: %w", err)
	}

	batch = &pgx.Batch{}
	for _, f := range p.Follows {
		batch.Queue(`INSERT INTO followers (follower_id, followed_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			ids[f[0]], ids[f[1]])
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert follows: %w", err)
	}

	return tx.Commit(ctx)
}
