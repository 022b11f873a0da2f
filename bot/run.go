package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"watchtower-bot/commands"
	"watchtower-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	log.Println("Registering commands...")
	cmds := commands.Generate()
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, b.Config.GuildID, cmds)
	if err != nil {
		log.Fatalf("Cannot register commands: %v", err)
	}
	b.RegisteredCommands = registered

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, b.Config.LogChannelID, "System", "Startup", "Bot has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

// UnregisterCommands removes the commands registered at startup.
func (b *Bot) UnregisterCommands() {
	for _, cmd := range b.RegisteredCommands {
		if err := b.Session.ApplicationCommandDelete(b.Config.AppID, b.Config.GuildID, cmd.ID); err != nil {
			log.Printf("Cannot delete command %q: %v", cmd.Name, err)
		}
	}
	b.RegisteredCommands = []*discordgo.ApplicationCommand{}
}
