package bot

import (
	"log"
	"net/http"
	"sync"
	"watchtower-bot/evidence"
	"watchtower-bot/model"
	"watchtower-bot/scoring"
	"watchtower-bot/utils"
	"watchtower-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

// Bot wires the session, the identity store and the remote service clients
// together. One HTTP client is shared by every upload, download and scoring
// call and released on Close.
type Bot struct {
	Session *discordgo.Session
	Config  *model.Config
	Store   *database.WatchtowerStore

	HTTPClient *http.Client
	Uploader   *evidence.CatboxUploader
	Scoring    *scoring.Client

	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	RegisteredCommands []*discordgo.ApplicationCommand

	waitersMutex sync.Mutex
	waiters      map[waiterKey]chan *discordgo.Message
}

func New(cfg *model.Config, store *database.WatchtowerStore) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = true

	httpClient := utils.NewHTTPClient(cfg.HTTPTimeout)

	b := &Bot{
		Session:    dg,
		Config:     cfg,
		Store:      store,
		HTTPClient: httpClient,
		Uploader:   evidence.NewCatboxUploader(httpClient, cfg.CatboxUserhash),
		Scoring:    scoring.New(httpClient, cfg.PointsAPIURL, cfg.PointsAPIToken),
		waiters:    make(map[waiterKey]chan *discordgo.Message),
	}
	return b, nil
}

// Close shuts the bot down and releases its network resources.
func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	utils.ReleaseHTTPClient(b.HTTPClient)
	b.Session.Close()
}
