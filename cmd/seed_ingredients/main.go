package main

import (
	"encoding/json"
	"flag"
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/models"
)

// seedIngredient mirrors one entry of the ingredient catalog file.
type seedIngredient struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func main() {
	path := flag.String("file", "data/ingredients.json", "path to the ingredient catalog JSON")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		logger.Fatal("failed to read catalog file", zap.Error(err))
	}

	var entries []seedIngredient
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Fatal("failed to parse catalog file", zap.Error(err))
	}

	created := 0
	for _, entry := range entries {
		if entry.Name == "" || entry.MeasurementUnit == "" {
			continue
		}

		var count int64
		if err := db.Model(&models.Ingredient{}).
			Where("name = ? AND measurement_unit = ?", entry.Name, entry.MeasurementUnit).
			Count(&count).Error; err != nil {
			logger.Fatal("failed to check ingredient", zap.Error(err))
		}
		if count > 0 {
			continue
		}

		ingredient := models.Ingredient{
			Name:            entry.Name,
			MeasurementUnit: entry.MeasurementUnit,
		}
		if err := db.Create(&ingredient).Error; err != nil {
			logger.Fatal("failed to create ingredient", zap.String("name", entry.Name), zap.Error(err))
		}
		created++
	}

	logger.Info("ingredient catalog seeded",
		zap.Int("total", len(entries)),
		zap.Int("created", created))
}
