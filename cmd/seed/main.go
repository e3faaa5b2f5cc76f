// Command seed inserts synthetic daily logs for a demo user so the
// pipeline can be exercised without real data. Episode timing, weekend
// lift and the mood/sleep/steps/stress couplings mirror a plausible
// personal log; output is deterministic for a given seed.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"wellpulse/internal/domain/models"
	internalrepo "wellpulse/internal/repository"
	pkgch "wellpulse/pkg/clickhouse"
	"wellpulse/pkg/config"
	"wellpulse/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	userID := flag.String("user", "demo-user", "user id to seed")
	days := flag.Int("days", 100, "number of days to generate")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		log.Fatalf("clickhouse connect failed: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
		log.Fatalf("schema init failed: %v", err)
	}

	records := generate(*userID, *days, *seed)
	store := internalrepo.NewCHLogStore(client)
	if err := store.SaveRecords(ctx, records); err != nil {
		log.Fatalf("insert failed: %v", err)
	}
	log.Printf("seeded %d days for user %s (%s .. %s)",
		len(records), *userID, records[0].DateKey, records[len(records)-1].DateKey)
}

// generate produces nDays of logs ending today. Sick episodes of 2-3 days
// start at fixed offsets from the oldest day; weekends lift mood and add
// half an hour of sleep.
func generate(userID string, nDays int, seed int64) []models.DailyRecord {
	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC()

	sickDays := map[int]bool{}
	for _, start := range []int{8, 25, 48, 67, 85} {
		duration := 2 + rng.Intn(2)
		for d := 0; d < duration; d++ {
			sickDays[start+d] = true
		}
	}

	records := make([]models.DailyRecord, 0, nDays)
	for i := 0; i < nDays; i++ {
		day := now.AddDate(0, 0, -(nDays - 1 - i))
		weekend := util.IsWeekend(day)

		var mood float64
		switch {
		case sickDays[i]:
			mood = float64(1 + rng.Intn(2))
		case weekend:
			mood = pick(rng, 3, 4, 4, 5)
		default:
			mood = pick(rng, 2, 3, 3, 4, 4, 5)
		}

		sleep := 6.5 + rng.Float64()*2.0
		if mood <= 2 {
			sleep -= 1.0 + rng.Float64()
		}
		if weekend {
			sleep += 0.5
		}
		sleep = float64(int(sleep*10+0.5)) / 10

		var steps float64
		if mood <= 2 {
			steps = float64(2000 + rng.Intn(3001))
		} else {
			steps = float64(5000 + rng.Intn(8001))
		}

		var stress *float64
		if rng.Float64() > 0.2 {
			var lvl float64
			if mood <= 2 {
				lvl = float64(3 + rng.Intn(3))
			} else {
				lvl = float64(1 + rng.Intn(3))
			}
			stress = &lvl
		}

		m, s, st := mood, sleep, steps
		records = append(records, models.DailyRecord{
			UserID:     userID,
			DateKey:    util.FormatDateKey(day),
			MoodScore:  &m,
			SleepHours: &s,
			Steps:      &st,
			Stress:     stress,
			UpdatedAt:  day,
		})
	}
	return records
}

func pick(rng *rand.Rand, vals ...float64) float64 {
	return vals[rng.Intn(len(vals))]
}
