package commands

import (
	"github.com/bwmarrin/discordgo"
)

// Generate returns the application commands registered at startup.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "resolve-log",
			Description: "Resolve a ticket: paste offenders, archive evidence and apply points.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "ticket_channel",
					Description: "The ticket channel whose evidence should be archived.",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
						discordgo.ChannelTypeGuildPublicThread,
						discordgo.ChannelTypeGuildPrivateThread,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "ticket_id",
					Description: "Optional ticket number shown in the embeds.",
					Required:    false,
				},
			},
		},
		{
			Name:        "watchtower-status",
			Description: "Show host and bot runtime statistics.",
		},
	}
}
