// Smoke client for the user API: populates the session from any stored
// token, optionally logs in with credentials from the environment, and
// prints what the session coordinator ends up believing.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"runtime/debug"
	"sync"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taskmate/go-auth-client/auth"
	"github.com/taskmate/go-auth-client/guard"
	"github.com/taskmate/go-auth-client/internal/config"
	"github.com/taskmate/go-auth-client/session"
	"github.com/taskmate/go-auth-client/tokenstore"
	"github.com/taskmate/go-auth-client/transport"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("client failed")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogger(c)
	displayAppname(c.GetAppName())

	store := tokenstore.NewMemory()
	state := session.NewState()

	manager, err := auth.New(c.GetBaseAPIURL(), store, state,
		auth.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}

	router := newRouter(c.GetLoginRoute(), c.GetDashboardRoute())
	authenticator, err := transport.New(store, manager, manager, router,
		transport.WithPublicRoutes(c.GetPublicRoutes()),
		transport.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	apiClient := &http.Client{Transport: authenticator, Jar: jar, Timeout: c.GetHTTPTimeout()}

	routeGuard, err := guard.New(state, manager, router, guard.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.GetHTTPTimeout())
	defer cancel()

	manager.Populate(ctx)
	log.Info().Bool("populated", state.Populated()).Msg("initial session population complete")

	if username := os.Getenv("LOGIN_USERNAME"); username != "" {
		user, err := manager.Login(ctx, auth.Credentials{
			Username: username,
			Password: os.Getenv("LOGIN_PASSWORD"),
		})
		if err != nil {
			log.Error().Str("reason", auth.ErrorMessage(err)).Msg("login failed")
			return err
		}
		log.Info().Str("username", user.Username).Str("email", user.Email).Msg("login succeeded")
	}

	allowed, err := routeGuard.Protected(ctx)
	if err != nil {
		return err
	}
	log.Info().Bool("allowed", allowed).Str("route", router.CurrentRoute()).Msg("protected route decision")

	// One authenticated round trip through the full pipeline.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GetBaseAPIURL()+auth.ProfilePath, nil)
	if err != nil {
		return err
	}
	resp, err := apiClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("profile probe failed")
	} else {
		log.Info().Int("status", resp.StatusCode).Msg("profile probe")
		resp.Body.Close()
	}

	if current := state.Current(); current != nil {
		fmt.Printf("session: logged in as %s <%s>\n", current.Username, current.Email)
	} else {
		fmt.Println("session: logged out")
	}
	return nil
}

func setupLogger(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

// router is the process-local stand-in for a UI routing table: it tracks the
// current route and applies the redirects the guards and transport request.
type router struct {
	lock           sync.Mutex
	current        string
	loginRoute     string
	dashboardRoute string
}

func newRouter(loginRoute, dashboardRoute string) *router {
	return &router{current: dashboardRoute, loginRoute: loginRoute, dashboardRoute: dashboardRoute}
}

func (r *router) CurrentRoute() string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.current
}

func (r *router) NavigateToLogin() {
	r.navigate(r.loginRoute)
}

func (r *router) NavigateToDashboard() {
	r.navigate(r.dashboardRoute)
}

func (r *router) navigate(route string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	log.Info().Str("from", r.current).Str("to", route).Msg("navigating")
	r.current = route
}
