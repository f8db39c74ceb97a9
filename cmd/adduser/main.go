// cmd/adduser/main.go
// Creates or updates an admin user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username director -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/padraicbc/juniortour/config"
	bundb "github.com/padraicbc/juniortour/db"
	"github.com/padraicbc/juniortour/handlers"
	"github.com/padraicbc/juniortour/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	hash, err := handlers.HashPasswordForUser(*username, *password)
	if err != nil {
		log.Fatal("adduser: ", err)
	}

	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables: ", err)
	}

	user := &models.User{
		Username: *username,
		Password: hash,
	}

	_, err = db.NewInsert().Model(user).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password").
		Exec(ctx)
	if err != nil {
		log.Fatal("insert user: ", err)
	}

	fmt.Printf("user %q saved\n", *username)
}
