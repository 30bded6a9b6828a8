package statsapi

import (
	"context"
	"reflect"
	"testing"

	"github.com/cameza/transfer_manager/model"
	"github.com/cameza/transfer_manager/testutils"
)

func TestGetPlayerStats(t *testing.T) {
	fakeStats := testutils.NewFakeStatsServer()
	defer fakeStats.Close()

	c := NewForTest(fakeStats.URL())

	stats, err := c.GetPlayerStats(context.Background(), "TM-1001")
	if err != nil {
		t.Fatalf("unexpected error getting player stats: %v", err)
	}

	expected := &model.PlayerStats{
		PositionLabels: []string{"Attacking Midfield", "Attacking Midfield", "Second Striker"},
		Age:            22,
		Nationality:    "Germany",
		PhotoURL:       "https://img.example.com/wirtz.jpg",
	}
	if !reflect.DeepEqual(expected, stats) {
		t.Errorf("wanted %+v but got %+v", expected, stats)
	}

	// The labels reduce to the player's actual position.
	if pos := model.MostFrequentPosition(stats.PositionLabels); pos != model.POS_MF {
		t.Errorf("expected MF from the profile labels, got %s", pos)
	}
}

func TestGetPlayerStats_unknownPlayer(t *testing.T) {
	fakeStats := testutils.NewFakeStatsServer()
	defer fakeStats.Close()

	c := NewForTest(fakeStats.URL())

	_, err := c.GetPlayerStats(context.Background(), "TM-9999")
	if err == nil {
		t.Fatal("expected an error, but got none")
	}
}

func TestNew_tokenEndpoint(t *testing.T) {
	fakeCtrl := testutils.NewTestController()
	defer fakeCtrl.Close()

	c, err := New(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     fakeCtrl.OAuthTokenURL(),
	})
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	if c == nil {
		t.Fatal("expected a client")
	}
}
