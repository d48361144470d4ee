package main

import (
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"pdfvault/backend/auth"
	"pdfvault/backend/config"
	"pdfvault/backend/cron"
	"pdfvault/backend/crypto"
	"pdfvault/backend/db"
	"pdfvault/backend/server"
	"pdfvault/backend/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v\n", err)
	}

	engine := crypto.NewEngine(crypto.Options{
		LegacyFixedSalt: cfg.LegacyFixedSalt,
		Workers:         cfg.KDFWorkers,
	})

	files := db.NewVaultStore()
	acl := db.NewACL(service.SharedFiles(files))
	gate := auth.NewGate(db.NewTwoFactorStore(), cfg.TOTPIssuer)
	vault := service.NewVault(engine, files, acl, gate, service.Limits{
		MaxFileSize:        cfg.MaxUploadSize,
		RandomPasswordSize: cfg.RandomPasswordBytes,
	})

	log.Printf("Key derivation limited to %d concurrent workers\n", engine.Workers())

	scheduler := cron.New(cfg.Debug)
	err = scheduler.Add(
		cron.CronTask{
			Name:     cron.StatsTask,
			Interval: cfg.StatsInterval,
			Enabled:  cfg.StatsInterval > 0,
			TaskFn:   func() { logStats(vault) },
		},
		cron.CronTask{
			Name:     cron.MonitorTask,
			Interval: time.Minute,
			Enabled:  cfg.Debug && cfg.StatsInterval > 0,
			TaskFn: func() {
				log.Println("~~ CRON MONITOR ~~")
				if next, ok := scheduler.Next(cron.StatsTask); ok {
					log.Println("Vault stats | next run: " +
						next.Format(time.RFC1123))
				}
			},
		})
	if err != nil {
		log.Fatalf("Error adding cron tasks: %v\n", err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(vault, server.Options{
		Debug:      cfg.Debug,
		TOTPIssuer: cfg.TOTPIssuer,
	})

	if err = srv.Run(cfg.Addr()); err != nil {
		log.Fatalf("Server error: %v\n", err)
	}
}

func logStats(vault *service.Vault) {
	stats := vault.Stats()
	log.Printf(
		"Vault stats | encrypted: %d, shared: %d, 2fa: %d, acls: %d\n",
		stats.EncryptedFiles,
		stats.SharedFiles,
		stats.ProtectedFiles,
		stats.ACLs)
}
