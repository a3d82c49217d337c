package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/builder"
)

func main() {
	app, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatal("Failed to build telegram bot: ", err)
	}

	if err := app.Run(); err != nil {
		app.Logger().Fatal("telegram bot stopped with error", zap.Error(err))
	}
}
