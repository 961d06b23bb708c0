package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/repository"
)

func main() {
	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, nil)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Printf("ERROR: closing store: %v", cerr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		log.Fatalf("store health: FAIL (%v)", err)
	}
	log.Println("store health: OK")

	persons := repository.NewPersonRepository(db, nil)
	plist, err := persons.List(ctx)
	if err != nil {
		log.Fatalf("listing persons: %v", err)
	}
	log.Printf("persons count: %d", len(plist))
}
