package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"
	"github.com/cameza/transfer_manager/controller"
	"github.com/cameza/transfer_manager/db"
	"github.com/cameza/transfer_manager/platforms/statsapi"
	"github.com/cameza/transfer_manager/platforms/transfermarket"
	"github.com/cameza/transfer_manager/ratelimit"
	"github.com/cameza/transfer_manager/web"
)

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}
	connString := os.Getenv("POSTGRES_CONN_STR")

	portNum := 3000 // 3000 is the default
	port := os.Getenv("PORT")
	if port != "" {
		portNum, err = strconv.Atoi(port)
		if err != nil {
			log.Fatalf("error parsing port number: %v", err)
		}
	}

	dailyQuota := intEnv("API_DAILY_QUOTA", ratelimit.DefaultDailyLimit)
	emergencyThreshold := floatEnv("API_EMERGENCY_THRESHOLD", ratelimit.DefaultEmergencyThreshold)

	secrets := web.Secrets{
		ManualSyncSecret: os.Getenv("MANUAL_SYNC_SECRET"),
		CronSecret:       os.Getenv("CRON_SECRET"),
		AdminUser:        os.Getenv("ADMIN_USER"),
		AdminPass:        os.Getenv("ADMIN_PASS"),
	}
	if secrets.ManualSyncSecret == "" {
		log.Fatalf("MANUAL_SYNC_SECRET must be set")
	}

	clock := clock.New()
	db, err := db.New(context.Background(), connString, clock)
	if err != nil {
		log.Fatalf("cannot connect to DB: %v", err)
	}

	limiter := ratelimit.New(clock, dailyQuota, emergencyThreshold)
	manual := ratelimit.NewManualLimiter(db, clock)

	marketClient, err := transfermarket.New(os.Getenv("TRANSFER_MARKET_API_KEY"), limiter)
	if err != nil {
		log.Fatalf("error creating transfer market client: %v", err)
	}

	statsClient, err := statsapi.New(statsapi.Config{
		ClientID:     os.Getenv("STATSAPI_CLIENT_ID"),
		ClientSecret: os.Getenv("STATSAPI_CLIENT_SECRET"),
		TokenURL:     os.Getenv("STATSAPI_TOKEN_URL"),
	})
	if err != nil {
		log.Fatalf("error creating stats api client: %v", err)
	}

	cfg := controller.DefaultConfig()
	cfg.EmergencyOverride = os.Getenv("DEADLINE_DAY_OVERRIDE") == "true"

	ctrl, err := controller.New(clock, db, marketClient, statsClient, limiter, manual, cfg)
	if err != nil {
		log.Fatalf("error creating a new controller: %v", err)
	}

	server, err := web.NewServer(portNum, ctrl, secrets)
	if err != nil {
		log.Fatalf("error creating new web server: %v", err)
	}

	shutdown := make(chan bool)
	wg := &sync.WaitGroup{}

	// Setup a handler to catch ctrl-c signals and properly shutdown everything.
	intChannel := make(chan os.Signal, 2)
	signal.Notify(intChannel, os.Interrupt)
	go func() {
		<-intChannel
		close(shutdown)

		if err := waitTimeout(wg, 10*time.Second); err != nil {
			log.Printf("timed out waiting for proper shutdown")
			os.Exit(255)
		}
	}()

	// Setup a job that syncs transfers on the cadence the current strategy
	// calls for.
	wg.Add(1)
	go ctrl.RunPeriodicSyncs(shutdown, wg)

	// Start the web server
	wg.Add(1)
	go server.ListenAndServe(shutdown, wg)

	// Wait for everything to stop.
	wg.Wait()
	log.Printf("server shutdown")
}

func intEnv(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("error parsing %s: %v", name, err)
	}
	return n
}

func floatEnv(name string, fallback float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("error parsing %s: %v", name, err)
	}
	return f
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) error {
	c := make(chan any)
	go func() {
		defer close(c)
		wg.Wait()
	}()

	select {
	case <-c:
		return nil // completed normally
	case <-time.After(timeout):
		return errors.New("timed out waiting")
	}
}
