// Command devtoken prints a bearer token for exercising paydesk locally
// against a payments API that trusts the same secret.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mdflamingo/paydesk/internal/middleware"
	"github.com/mdflamingo/paydesk/internal/models"
)

func main() {
	userID := flag.String("user", "", "user id")
	email := flag.String("email", "", "user email")
	name := flag.String("name", "", "user display name")
	role := flag.String("role", "user", "user or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" || *userID == "" {
		log.Fatal("JWT_SECRET and -user are required")
	}

	token, err := middleware.GenerateToken(models.Identity{
		UserID: *userID,
		Email:  *email,
		Name:   *name,
		Role:   *role,
	}, secret, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
