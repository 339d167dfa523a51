package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/auth"
	"github.com/umt-lostfound/lostfound-api/config"
	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

// Resets the password of a profile, or just prints the bcrypt hash when no email is given.
// Usage: go run ./scripts/resetpassword <password> [email]
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/resetpassword <password> [email]")
		os.Exit(1)
	}
	password := os.Args[1]

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) < 3 {
		fmt.Printf("Bcrypt Hash: %s\n", hash)
		return
	}
	email := models.NormalizeEmail(os.Args[2])

	conf := config.New()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := databases.NewClient(ctx, conf)
	if err != nil {
		zap.S().With(err).Fatal("failed to create database client")
	}
	defer client.Disconnect(context.Background())

	profiles := databases.NewProfileDatabase(databases.NewDatabase(conf, client))
	res, err := profiles.UpdateOne(ctx, bson.M{"email": email},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}})
	if err != nil {
		zap.S().With(err).Fatal("failed to update password")
	}
	if res.MatchedCount == 0 {
		zap.S().Fatalw("no profile with that email", "email", email)
	}
	zap.S().Infow("password reset", "email", email)
}
