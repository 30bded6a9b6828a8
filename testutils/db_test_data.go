package testutils

import (
	"context"
	"log"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/cameza/transfer_manager/containers"
	"github.com/cameza/transfer_manager/db"
	"github.com/cameza/transfer_manager/model"
)

var (
	WirtzTransfer = &model.Transfer{
		APITransferID: "TM-1001",
		PlayerName:    "Florian Wirtz",
		FromClub:      "Bayer Leverkusen",
		ToClub:        "Liverpool",
		League:        "Premier League",
		Type:          model.TYPE_PERMANENT,
		FeeCents:      12_500_000_000,
		TransferDate:  time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
		Window:        model.WINDOW_SUMMER,
		Season:        "2025",
	}
	GyokeresTransfer = &model.Transfer{
		APITransferID: "TM-1002",
		PlayerName:    "Viktor Gyokeres",
		FromClub:      "Sporting CP",
		ToClub:        "Arsenal",
		League:        "Premier League",
		Type:          model.TYPE_PERMANENT,
		FeeCents:      6_350_000_000,
		TransferDate:  time.Date(2025, time.July, 26, 0, 0, 0, 0, time.UTC),
		Window:        model.WINDOW_SUMMER,
		Season:        "2025",
	}
	HuijsenTransfer = &model.Transfer{
		APITransferID: "TM-2001",
		PlayerName:    "Dean Huijsen",
		FromClub:      "Bournemouth",
		ToClub:        "Real Madrid",
		League:        "La Liga",
		Type:          model.TYPE_PERMANENT,
		FeeCents:      5_900_000_000,
		TransferDate:  time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC),
		Window:        model.WINDOW_SUMMER,
		Season:        "2025",
	}
	TelLoan = &model.Transfer{
		APITransferID: "TM-1003",
		PlayerName:    "Mathys Tel",
		FromClub:      "Bayern Munich",
		ToClub:        "Tottenham",
		League:        "Premier League",
		Type:          model.TYPE_LOAN,
		FeeCents:      0,
		TransferDate:  time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		Window:        model.WINDOW_WINTER,
		Season:        "2024",
	}
)

type TestDB struct {
	container *containers.DBContainer
	DB        db.DB
	Clock     clock.Clock
}

func NewTestDB() *TestDB {
	container := containers.NewDBContainer()
	clock := clock.New()

	db, err := db.New(context.Background(), container.ConnectionString(), clock)
	if err != nil {
		log.Fatalf("error connecting to db in test container: %v", err)
	}

	return &TestDB{
		container: container,
		DB:        db,
		Clock:     clock,
	}
}

func (db *TestDB) Shutdown() {
	db.container.Shutdown()
}

func InsertTestTransfers(db db.DB) error {
	transfers := []*model.Transfer{
		WirtzTransfer,
		GyokeresTransfer,
		HuijsenTransfer,
		TelLoan,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, t := range transfers {
		err := db.SaveTransfer(ctx, t)
		if err != nil {
			return err
		}
	}

	return nil
}
