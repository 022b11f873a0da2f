package handlers

import (
	"log"
	"watchtower-bot/bot"
	"watchtower-bot/handlers/watchtower"
	"watchtower-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"resolve-log": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireAdmin(s, i, b) {
				return
			}
			watchtower.HandleResolveLog(s, i, b)
		},
		"watchtower-status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !requireAdmin(s, i, b) {
				return
			}
			StatusHandler(s, i, b)
		},
	}
}

// requireAdmin gates a command to admins and developers.
func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) bool {
	if i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used inside a server.")
		return false
	}
	level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, b.Config.AdminRoleIDs, b.Config.DeveloperUserIDs)
	if level == utils.GuestPermission {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return false
	}
	return true
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Feeds the paste-wait registry used by resolve-log.
		b.DispatchMessage(m)
	})
}
