package main

import (
	"log"

	"deepflow/backend/internal/clock"
	"deepflow/backend/internal/config"
	"deepflow/backend/internal/db"
	"deepflow/backend/internal/handler"
	"deepflow/backend/internal/repository"
	"deepflow/backend/internal/router"
	"deepflow/backend/internal/service"
)

func main() {
	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	clk := clock.System()

	userRepo := repository.NewUserRepository(database)
	timerRepo := repository.NewTimerRepository(database)
	energyRepo := repository.NewEnergyRepository(database)
	shelfRepo := repository.NewShelfRepository(database)
	prefsRepo := repository.NewPreferencesRepository(database)

	prefsService := service.NewPreferencesService(prefsRepo, clk)
	authService := service.NewAuthService(userRepo, prefsService, cfg.JWTSecret, cfg.TokenTTL, clk)
	timerService := service.NewTimerService(timerRepo, clk)
	energyService := service.NewEnergyService(energyRepo, prefsRepo, timerService, clk, cfg.CheckinStages)
	insightService := service.NewInsightService(energyRepo, prefsRepo, clk, service.UTCOffset)
	shelfService := service.NewShelfService(shelfRepo, clk)
	accountService := service.NewAccountService(userRepo, timerRepo, energyRepo, shelfRepo, prefsRepo)

	engine := router.New(authService, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Timer:       handler.NewTimerHandler(timerService),
		Energy:      handler.NewEnergyHandler(energyService),
		Insight:     handler.NewInsightHandler(insightService),
		Shelf:       handler.NewShelfHandler(shelfService),
		Preferences: handler.NewPreferencesHandler(prefsService),
		Account:     handler.NewAccountHandler(accountService),
	}, cfg.CORSOrigins)

	log.Printf("backend listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
