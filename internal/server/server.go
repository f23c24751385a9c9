package server

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/akrezic/guesswho/internal/config"
	charactercommands "github.com/akrezic/guesswho/internal/modules/character/commands"
	characterdomain "github.com/akrezic/guesswho/internal/modules/character/domain"
	characterqueries "github.com/akrezic/guesswho/internal/modules/character/queries"
	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/leaderboard"
	leaderboardqueries "github.com/akrezic/guesswho/internal/modules/leaderboard/queries"
	roomcommands "github.com/akrezic/guesswho/internal/modules/room/commands"
	roomdomain "github.com/akrezic/guesswho/internal/modules/room/domain"
	roomqueries "github.com/akrezic/guesswho/internal/modules/room/queries"
	"github.com/akrezic/guesswho/internal/modules/room/realtime"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Server interface {
	Start() error
	Stop() error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for the application.
type HTTPServer struct {
	server *http.Server
	bridge *realtime.Bridge
	cancel context.CancelFunc
}

func NewHTTPServer(config config.Config) (Server, error) {
	baseCtx, cancel := context.WithCancel(context.Background())

	zap.ReplaceGlobals(config.Logger)

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		cancel()
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
		cancel()
		return nil, err
	}

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	sink := leaderboard.NewPostgresSink(db)

	// handler registration

	// room lifecycle

	err = mediator.RegisterRequestHandler[roomcommands.CreateRoomCommand, roomcommands.CreateRoomResponse](
		roomcommands.NewCreateRoomCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomcommands.DeleteRoomCommand, core.Unit](
		roomcommands.NewDeleteRoomCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomcommands.CleanupStaleRoomsCommand, core.Unit](
		roomcommands.NewCleanupStaleRoomsCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// membership

	err = mediator.RegisterRequestHandler[roomcommands.JoinRoomCommand, core.Unit](
		roomcommands.NewJoinRoomCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomcommands.LeaveRoomCommand, core.Unit](
		roomcommands.NewLeaveRoomCommandHandler(db, sink, config.Logger),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomcommands.ToggleReadyCommand, core.Unit](
		roomcommands.NewToggleReadyCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// pick/ready and guessing

	err = mediator.RegisterRequestHandler[roomcommands.StartGameCommand, core.Unit](
		roomcommands.NewStartGameCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomcommands.PickCharacterCommand, roomcommands.PickCharacterResponse](
		roomcommands.NewPickCharacterCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomcommands.MakeGuessCommand, roomcommands.MakeGuessResponse](
		roomcommands.NewMakeGuessCommandHandler(db, sink, config.Logger),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// character pool

	err = mediator.RegisterRequestHandler[roomcommands.AddPoolCharacterCommand, core.Unit](
		roomcommands.NewAddPoolCharacterCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomcommands.RemovePoolCharacterCommand, core.Unit](
		roomcommands.NewRemovePoolCharacterCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// room read side

	err = mediator.RegisterRequestHandler[roomqueries.GetRoomQuery, roomdomain.Room](
		roomqueries.NewGetRoomQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomqueries.ListRoomsQuery, []roomqueries.RoomSummary](
		roomqueries.NewListRoomsQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomqueries.RoomExistsQuery, roomqueries.RoomExistsResponse](
		roomqueries.NewRoomExistsQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomqueries.CanJoinQuery, roomqueries.CanJoinResponse](
		roomqueries.NewCanJoinQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomqueries.GetCharacterPoolQuery, []roomdomain.PoolCharacter](
		roomqueries.NewGetCharacterPoolQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomqueries.GetGuessCountQuery, roomqueries.GetGuessCountResponse](
		roomqueries.NewGetGuessCountQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[roomqueries.GetWinnerQuery, roomqueries.GetWinnerResponse](
		roomqueries.NewGetWinnerQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// character catalog

	err = mediator.RegisterRequestHandler[charactercommands.CreateCharacterCommand, charactercommands.CreateCharacterResponse](
		charactercommands.NewCreateCharacterCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[charactercommands.DeleteCharacterCommand, core.Unit](
		charactercommands.NewDeleteCharacterCommandHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	err = mediator.RegisterRequestHandler[characterqueries.ListCharactersQuery, []characterdomain.Character](
		characterqueries.NewListCharactersQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// leaderboard

	err = mediator.RegisterRequestHandler[leaderboardqueries.GetLeaderboardQuery, []leaderboardqueries.Entry](
		leaderboardqueries.NewGetLeaderboardQueryHandler(db),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// realtime change feed

	bridge := realtime.NewBridge(config.DatabaseURL, db, config.Logger)
	if err := bridge.Start(baseCtx); err != nil {
		cancel()
		return nil, err
	}

	go runRoomCleanup(baseCtx, config)

	// http

	r := chi.NewRouter()
	r.Use(core.CorrelationIDHTTPMiddleware)

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", roomqueries.HandleListRooms)
		r.With(core.SessionHTTPMiddleware).Post("/", roomcommands.HandleCreateRoom)

		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", roomqueries.HandleGetRoom)
			r.Get("/exists", roomqueries.HandleRoomExists)
			r.Get("/winner", roomqueries.HandleGetWinner)
			r.Get("/pool", roomqueries.HandleGetCharacterPool)
			r.Get("/events", realtime.HandleRoomEvents(bridge, config.Logger))
			r.Get("/pool/events", realtime.HandlePoolEvents(bridge, config.Logger))
			r.Delete("/", roomcommands.HandleDeleteRoom)

			r.Group(func(r chi.Router) {
				r.Use(core.SessionHTTPMiddleware)

				r.Get("/can-join", roomqueries.HandleCanJoin)
				r.Get("/guesses/count", roomqueries.HandleGetGuessCount)

				r.Put("/actions/join", roomcommands.HandleJoinRoom)
				r.Put("/actions/leave", roomcommands.HandleLeaveRoom)
				r.Put("/actions/ready", roomcommands.HandleToggleReady)
				r.Put("/actions/start", roomcommands.HandleStartGame)
				r.Put("/actions/pick", roomcommands.HandlePickCharacter)

				r.Post("/guesses", roomcommands.HandleMakeGuess)

				r.Post("/pool", roomcommands.HandleAddPoolCharacter)
				r.Delete("/pool/{characterId}", roomcommands.HandleRemovePoolCharacter)
			})
		})
	})

	r.Route("/characters", func(r chi.Router) {
		r.Get("/", characterqueries.HandleListCharacters)
		r.With(core.SessionHTTPMiddleware).Post("/", charactercommands.HandleCreateCharacter)
		r.With(core.SessionHTTPMiddleware).Delete("/{id}", charactercommands.HandleDeleteCharacter)
	})

	r.Get("/leaderboard", leaderboardqueries.HandleGetLeaderboard)

	r.Post("/admin/actions/cleanup-rooms", roomcommands.HandleCleanupStaleRooms(config.RoomRetention))

	server := http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler: r,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}

	return &HTTPServer{server: &server, bridge: bridge, cancel: cancel}, nil
}

// runRoomCleanup periodically sweeps rooms past the retention window. This
// is the only garbage collection for rooms whose players never left.
func runRoomCleanup(ctx context.Context, config config.Config) {
	ticker := time.NewTicker(config.RoomCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			command := roomcommands.CleanupStaleRoomsCommand{MaxAge: config.RoomRetention}
			if _, err := mediator.Send[roomcommands.CleanupStaleRoomsCommand, core.Unit](ctx, command); err != nil {
				config.Logger.Warn("stale room cleanup failed", zap.Error(err))
			}
		}
	}
}

func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop() error {
	s.cancel()

	if err := s.bridge.Close(); err != nil {
		return err
	}

	return s.server.Close()
}
