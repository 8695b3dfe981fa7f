package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/doctor-directory/config"
	"github.com/oksasatya/doctor-directory/internal/application"
	"github.com/oksasatya/doctor-directory/internal/domain/entity"
	"github.com/oksasatya/doctor-directory/internal/infrastructure/backend"
	"github.com/oksasatya/doctor-directory/pkg/helpers"
)

// seed submits sample doctors to the backend through the same validated flow as the form.
func main() {
	n := flag.Int("n", 5, "number of doctors to add")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	svc := application.NewDoctorService(backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger), nil, nil, logger)

	ctx := context.Background()
	added := 0
	for i := 0; i < *n; i++ {
		in := sampleDoctor()
		c, cancel := context.WithTimeout(ctx, cfg.BackendTimeout+5*time.Second)
		_, err := svc.Submit(c, in, uuid.NewString())
		cancel()

		var verr *application.ValidationError
		switch {
		case errors.As(err, &verr):
			log.Fatalf("sample doctor is invalid: %v", verr)
		case err != nil:
			logger.WithError(err).Warnf("failed to add %s", in.Name)
			continue
		}
		added++
		fmt.Printf("added %s (%s, %s)\n", in.Name, in.Specialty, in.City)
	}
	fmt.Printf("seeded %d/%d doctors into %s\n", added, *n, cfg.BackendBaseURL)
}

func sampleDoctor() application.AddDoctorInput {
	gender := entity.GenderMale
	rdGender := randomdata.Male
	if randomdata.Boolean() {
		gender, rdGender = entity.GenderFemale, randomdata.Female
	}
	city := entity.Cities[rand.Intn(len(entity.Cities))]
	return application.AddDoctorInput{
		Name:        "Dr. " + randomdata.FullName(rdGender),
		Specialty:   entity.Specialties[rand.Intn(len(entity.Specialties))],
		Gender:      gender,
		City:        city,
		Experience:  randomdata.Number(1, 35),
		Rating:      float64(randomdata.Number(30, 51)) / 10,
		Image:       "https://i.pravatar.cc/300?u=" + uuid.NewString(),
		Hospital:    strings.TrimSpace(randomdata.LastName() + " Hospital " + city),
		Fee:         randomdata.Number(2, 21) * 100,
		ReviewCount: randomdata.Number(0, 500),
	}
}
