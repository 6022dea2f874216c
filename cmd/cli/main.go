package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/alextreichler/storefront/internal/models"
	"github.com/alextreichler/storefront/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const usage = "expected 'add-account' or 'set-status' subcommand"

func main() {
	addAccountCmd := flag.NewFlagSet("add-account", flag.ExitOnError)
	email := addAccountCmd.String("email", "", "Email for the new account")
	password := addAccountCmd.String("password", "", "Password for the new account")
	name := addAccountCmd.String("name", "", "Display name")
	admin := addAccountCmd.Bool("admin", false, "Grant back office access")

	setStatusCmd := flag.NewFlagSet("set-status", flag.ExitOnError)
	orderID := setStatusCmd.String("order", "", "Order ID")
	status := setStatusCmd.String("status", "", "Processing, Shipped, Delivered or Cancelled")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-account":
		addAccountCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			addAccountCmd.PrintDefaults()
			os.Exit(1)
		}
		createAccount(*email, *password, *name, *admin)
	case "set-status":
		setStatusCmd.Parse(os.Args[2:])
		if *orderID == "" || *status == "" {
			fmt.Println("order and status are required")
			setStatusCmd.PrintDefaults()
			os.Exit(1)
		}
		setStatus(*orderID, models.OrderStatus(*status))
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openStore() *store.Store {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./storefront.db"
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure tables exist if running cli before server
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createAccount(email, password, name string, admin bool) {
	db := openStore()
	defer db.Close()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	account := &models.Account{Email: email, Password: string(hashedPassword), DisplayName: name, IsAdmin: admin}
	if err := db.CreateAccount(context.Background(), account); err != nil {
		log.Fatalf("Failed to create account: %v", err)
	}

	fmt.Printf("Account '%s' created successfully (id %s, admin %t).\n", account.Email, account.ID, admin)
}

func setStatus(orderID string, status models.OrderStatus) {
	db := openStore()
	defer db.Close()

	if err := db.UpdateOrderStatus(context.Background(), orderID, status); err != nil {
		log.Fatalf("Failed to update order %s: %v", orderID, err)
	}
	fmt.Printf("Order %s is now %s.\n", orderID, status)
}
