package main

import (
	"log"

	corecmd "github.com/m3rciful/espertofit/core/cmd"
	"github.com/m3rciful/espertofit/fit/bot"
	"github.com/m3rciful/espertofit/fit/config"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return bot.New(cfg.(*config.Config))
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
