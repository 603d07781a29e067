package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/caretakerbot/caretaker"
	"github.com/caretakerbot/caretaker/cogs/autopurge"
	"github.com/caretakerbot/caretaker/cogs/channelsort"
	"github.com/caretakerbot/caretaker/cogs/msgformat"
	"github.com/caretakerbot/caretaker/cogs/roleaudit"
	"github.com/caretakerbot/caretaker/cogs/signup"
	"github.com/caretakerbot/caretaker/cogs/sortinghat"
	"github.com/caretakerbot/caretaker/cogs/streaks"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the config file")
	flag.Parse()

	// A .env next to the binary may carry CARETAKER_TOKEN.
	_ = godotenv.Load()

	bot, err := caretaker.New(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	cogs := []caretaker.Cog{
		autopurge.New(),
		channelsort.New(),
		msgformat.New(),
		roleaudit.New(),
		signup.New(),
		sortinghat.New(),
		streaks.New(),
	}
	for _, cog := range cogs {
		if err := bot.AddCog(cog); err != nil {
			log.Fatalf("Error registering cog %s - %v", cog.Name(), err)
		}
	}

	bot.Start()
}
