package watchtower

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// One offender, one thread: the thread is reused across tickets so an
// offender's full history reads top to bottom.
const threadArchiveMinutes = 10080 // 7 days

// findOrCreateThread returns the watchtower thread named threadName, looking
// through active and archived threads before creating a new one.
func findOrCreateThread(s *discordgo.Session, parent *discordgo.Channel, threadName string) *discordgo.Channel {
	if thread := findThread(s, parent, threadName); thread != nil {
		return thread
	}
	return createThread(s, parent, threadName)
}

// findThread searches the parent channel's active and archived threads by
// name. Lookup failures are treated as "not found" so a fresh thread gets
// created instead.
func findThread(s *discordgo.Session, parent *discordgo.Channel, threadName string) *discordgo.Channel {
	active, err := s.GuildThreadsActive(parent.GuildID)
	if err != nil {
		log.Printf("Error listing active threads: %v", err)
	} else {
		for _, t := range active.Threads {
			if t.ParentID == parent.ID && t.Name == threadName {
				return t
			}
		}
	}

	archived, err := s.ThreadsArchived(parent.ID, nil, 100)
	if err != nil {
		log.Printf("Archived threads lookup failed: %v", err)
		return nil
	}
	for _, t := range archived.Threads {
		if t.Name == threadName {
			return t
		}
	}
	return nil
}

// createThread starts a new watchtower thread under the parent channel,
// following the forum or text channel creation path as appropriate.
func createThread(s *discordgo.Session, parent *discordgo.Channel, threadName string) *discordgo.Channel {
	const starterContent = "Watchtower thread initialized."

	if parent.Type == discordgo.ChannelTypeGuildForum {
		thread, err := s.ForumThreadStart(parent.ID, threadName, threadArchiveMinutes, starterContent)
		if err != nil {
			log.Printf("Failed to create forum thread %q: %v", threadName, err)
			return nil
		}
		return thread
	}

	starter, err := s.ChannelMessageSend(parent.ID, starterContent)
	if err != nil {
		log.Printf("Failed to send thread starter message: %v", err)
		return nil
	}
	thread, err := s.MessageThreadStart(parent.ID, starter.ID, threadName, threadArchiveMinutes)
	if err != nil {
		log.Printf("Failed to create thread %q: %v", threadName, err)
		return nil
	}
	return thread
}
