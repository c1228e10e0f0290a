// Command bootstrap-user creates or updates an account directly in the
// database. Run it once after applying scripts/schema.sql to get a
// login for a fresh deployment:
//
//	go run scripts/bootstrap-user.go -username admin -password '...' -role Admin
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/devnexus/devnexus/internal/auth"
	"github.com/devnexus/devnexus/internal/model"
)

type output struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "", "Login name (required)")
		password    = flag.String("password", "", "Password (required)")
		role        = flag.String("role", model.RoleDeveloper, "Role: Admin, Developer or User")
		displayName = flag.String("display-name", "", "Display name (defaults to the username)")
		email       = flag.String("email", "", "Email address")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-username and -password are required")
		os.Exit(1)
	}
	if !isValidRole(*role) {
		fmt.Fprintf(os.Stderr, "invalid role: %s\n", *role)
		os.Exit(1)
	}
	if *displayName == "" {
		*displayName = *username
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer pool.Close()

	id := "user-" + ulid.Make().String()
	row := pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, display_name, role, password_hash, permissions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role          = EXCLUDED.role,
			display_name  = EXCLUDED.display_name,
			is_active     = TRUE
		RETURNING id`,
		id, *username, *email, *displayName, *role, hash, permissionsFor(*role),
	)
	if err := row.Scan(&id); err != nil {
		fmt.Fprintln(os.Stderr, "upsert user:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      id,
		Username:    *username,
		Role:        *role,
		DisplayName: *displayName,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func isValidRole(role string) bool {
	switch role {
	case model.RoleAdmin, model.RoleDeveloper, model.RoleUser:
		return true
	}
	return false
}

func permissionsFor(role string) []string {
	switch role {
	case model.RoleAdmin:
		return []string{"view_dashboard", "manage_pipelines", "manage_workitems", "manage_users"}
	case model.RoleDeveloper:
		return []string{"view_dashboard", "manage_pipelines", "manage_workitems"}
	default:
		return []string{"view_dashboard"}
	}
}
