package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/hivemindhq/hivemind/internal/models"
)

// TestStoreIntegration exercises the account, observation, and message stores
// against a live database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	suffix := time.Now().UnixNano()
	observer, err := store.CreateAccount(ctx, models.Account{
		Username: fmt.Sprintf("itest_observer_%d@example.com", suffix),
		Forename: "Integration",
		Surname:  "Observer",
		Address:  "1 Test Lane",
		Role:     models.RoleObserver,
		Status:   models.StatusActive,
		Observer: &models.ObserverProfile{
			CardName:               "I OBSERVER",
			CardType:               models.CardVisa,
			NotificationPreference: models.NotifyEmail,
		},
	})
	if err != nil {
		t.Fatalf("create observer: %v", err)
	}
	if observer.ID == "" {
		t.Fatal("create observer returned empty id")
	}
	if observer.Observer == nil {
		t.Fatal("observer payload missing after create")
	}

	support, err := store.CreateAccount(ctx, models.Account{
		Username: fmt.Sprintf("itest_support_%d@example.com", suffix),
		Forename: "Integration",
		Surname:  "Support",
		Address:  "2 Test Lane",
		Role:     models.RoleSupport,
		Status:   models.StatusActive,
	})
	if err != nil {
		t.Fatalf("create support: %v", err)
	}
	if support.Observer != nil {
		t.Fatal("support account must carry no observer payload")
	}

	found, err := store.FindAccountByUsername(ctx, observer.Username)
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if found.ID != observer.ID {
		t.Fatalf("find by username: want id %s got %s", observer.ID, found.ID)
	}

	obs, err := store.CreateObservation(ctx, models.Observation{
		ObserverID:     observer.ID,
		Date:           "20240115",
		Time:           "10:30:00",
		TimeZoneOffset: "+00:00",
		Temperature:    4.5,
	})
	if err != nil {
		t.Fatalf("create observation: %v", err)
	}
	history, err := store.ListHistoryByObserver(ctx, observer.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 || history[0].ID != obs.ID {
		t.Fatalf("history: want exactly the created observation, got %d rows", len(history))
	}

	msg, err := store.CreateMessage(ctx, models.Message{
		SenderID:    observer.ID,
		RecipientID: support.ID,
		Subject:     "integration",
		Content:     "round trip",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.Sender == nil || msg.Sender.ID != observer.ID {
		t.Fatal("message sender not populated")
	}
	if err := store.MarkMessageRead(ctx, msg.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	stored, err := store.FindMessageByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("find message: %v", err)
	}
	if !stored.Read {
		t.Fatal("message not marked read")
	}

	t.Logf("created accounts %s / %s and round-tripped observation and message", observer.ID, support.ID)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
