package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"net/http"
	"os"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/internal/dispatch"
	"github.com/hikari-bot/backend/internal/domain"
	"github.com/hikari-bot/backend/internal/entity"
	"github.com/hikari-bot/backend/internal/repository"
	discordapi "github.com/hikari-bot/backend/pkg/api/discord"
	"github.com/hikari-bot/backend/pkg/api/groq"
	"github.com/hikari-bot/backend/pkg/dateutil"
	"github.com/hikari-bot/backend/pkg/docstore"
	"github.com/hikari-bot/backend/pkg/logger"
	"github.com/hikari-bot/backend/pkg/xcontext"
	"github.com/hikari-bot/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	db          *gorm.DB
	redisClient xredis.Client
	docStore    docstore.Client

	discordEndpoint discordapi.IEndpoint
	groqEndpoint    groq.IEndpoint

	conversationRepo repository.ConversationRepository
	reportRepo       repository.FailureReportRepository

	chatDomain   domain.ChatDomain
	forgetDomain domain.ForgetDomain
	clockDomain  domain.ClockDomain

	registry   *dispatch.Registry
	deferral   *dispatch.Manager
	dispatcher *dispatch.Dispatcher

	mux    *http.ServeMux
	server *http.Server
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.INFO)
}

func (s *srv) loadContext() {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, *s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	s.ctx = ctx
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(s.configs.Database.Path), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	if err := s.db.AutoMigrate(&entity.FailureReport{}); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedis() {
	if s.configs.Redis.Addr == "" {
		s.logger.Warnf("No redis address, the conversation cache is disabled")
		return
	}

	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadEndpoints() {
	s.docStore = docstore.NewFirebaseClient(s.configs.Firebase)
	s.discordEndpoint = discordapi.New(s.configs.Discord)
	s.groqEndpoint = groq.New(s.configs.Groq)
}

func (s *srv) loadRepos() {
	s.conversationRepo = repository.NewConversationRepository(s.docStore, s.redisClient)
	s.reportRepo = repository.NewFailureReportRepository(s.db)
}

func (s *srv) loadDomains() {
	timeContext, err := dateutil.NewTimeContext(s.configs.Chat.Timezone)
	if err != nil {
		panic(err)
	}

	characterDescription, err := os.ReadFile(s.configs.Groq.CharacterFile)
	if err != nil {
		panic(err)
	}

	s.chatDomain = domain.NewChatDomain(s.conversationRepo, s.groqEndpoint, timeContext, string(characterDescription))
	s.forgetDomain = domain.NewForgetDomain(s.conversationRepo)
	s.clockDomain = domain.NewClockDomain(timeContext)
}

func (s *srv) loadDispatcher() {
	publicKey, err := hex.DecodeString(s.configs.Discord.PublicKey)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		panic("invalid discord public key")
	}

	s.registry = dispatch.NewRegistry()
	s.registry.Register("chat", s.chatDomain)
	s.registry.Register("forget", s.forgetDomain)
	s.registry.Register("time", s.clockDomain)
	s.logger.Infof("Registered commands: %v", s.registry.Names())

	s.deferral = dispatch.NewManager(s.discordEndpoint, s.reportRepo)
	s.dispatcher = dispatch.NewDispatcher(s.registry, s.deferral, s.reportRepo, publicKey)
}

func (s *srv) loadMux() {
	s.mux = http.NewServeMux()
	s.mux.Handle("/interactions", s.dispatcher)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
