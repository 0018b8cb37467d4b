package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MouctarBahLk/soorocampus-sub001/app/config"
	"github.com/MouctarBahLk/soorocampus-sub001/app/database"
	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/auth"
)

func main() {
	email := flag.String("email", "", "email address of the account")
	password := flag.String("password", "", "initial password (or set ADMIN_PASSWORD)")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "Sooro", "last name")
	country := flag.String("country", "FR", "ISO country code")
	role := flag.String("role", auth.RoleAdmin, "role to assign (admin or student)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *email == "" || *password == "" {
		log.Fatal("both -email and -password (or ADMIN_PASSWORD) are required")
	}

	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	config.InitDB()
	db := config.GetDB()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}
	defer db.Close()

	user := &models.User{
		FirstName:   *firstName,
		LastName:    *lastName,
		Email:       *email,
		Password:    *password,
		CountryCode: *country,
	}

	if err := database.CreateUser(db, user, *role); err != nil {
		log.Fatal("Error creating user: ", err)
	}

	fmt.Printf("User created successfully: %s %s (%s) with role %s\n", user.FirstName, user.LastName, user.Email, *role)
}
