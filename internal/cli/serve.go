package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/mentor-marketplace/internal/config"
	"github.com/iliyamo/mentor-marketplace/internal/database"
	"github.com/iliyamo/mentor-marketplace/internal/handler"
	"github.com/iliyamo/mentor-marketplace/internal/queue"
	"github.com/iliyamo/mentor-marketplace/internal/repository"
	"github.com/iliyamo/mentor-marketplace/internal/router"
	"github.com/iliyamo/mentor-marketplace/internal/service"
)

const shutdownGrace = 15 * time.Second

func newServeCommand(f *rootFlags) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := database.Open(ctx, dbOptions(cfg))
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info().Str("db", cfg.DSNAddr()).Msg("database connected")

			if migrate {
				applied, err := database.Migrate(ctx, db)
				if err != nil {
					return err
				}
				log.Info().Ints("versions", applied).Msg("migrations applied")
			}

			rdb := config.NewRedisClient(ctx, cfg.Redis)
			if rdb == nil {
				log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable; caching and rate limiting disabled")
			} else {
				defer rdb.Close()
			}

			var events queue.Publisher = queue.NopPublisher{}
			if cfg.EventsEnabled {
				p := queue.NewAMQPPublisher(cfg.AMQPURL, log)
				defer p.Close()
				events = p
			}

			users := repository.NewUserRepo(db)
			tokens := repository.NewTokenRepo(db)
			windows := repository.NewAvailabilityRepo(db)
			bookings := repository.NewBookingRepo(db, database.MySQL)

			avail := service.NewAvailabilityService(windows, bookings, cfg.MaxRangeDays, log)
			booking := service.NewBookingService(bookings, events, log)

			e := router.New(cfg, router.Handlers{
				Health:       handler.Health{DB: db},
				Auth:         handler.NewAuthHandler(cfg, users, tokens),
				Profile:      handler.NewProfileHandler(users),
				Mentors:      handler.NewMentorHandler(users),
				Availability: handler.NewAvailabilityHandler(avail),
				Bookings:     handler.NewBookingHandler(booking),
			}, rdb, log)

			srv := router.Server(":"+cfg.Port, e, cfg.RequestTimeout)
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}
