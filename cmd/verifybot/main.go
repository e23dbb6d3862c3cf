package main

import (
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/verifybot/core/buildinfo"
	"github.com/m3rciful/verifybot/core/cmd"
	coreconfig "github.com/m3rciful/verifybot/core/config"
	"github.com/m3rciful/verifybot/internal/bot"
)

func main() {
	log.Printf("verifybot %s (%s, built %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date)

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		Bootstrap: func(cfg *coreconfig.Config, db *sqlx.DB) (cmd.TelegramApp, error) {
			return bot.NewApp(cfg, db), nil
		},
	})
	if err != nil {
		log.Fatalf("verifybot: %v", err)
	}
}
