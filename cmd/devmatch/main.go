// Command devmatch is the terminal front end for the matching service.
// It wires the HTTP adapter, session store, router, and screen
// controllers into a small interactive shell.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"devmatch/internal/api"
	"devmatch/internal/app"
	"devmatch/internal/config"
	"devmatch/internal/feed"
	"devmatch/internal/models"
	"devmatch/internal/notify"
	"devmatch/internal/observability"
	"devmatch/internal/requests"
	"devmatch/internal/session"
	"devmatch/internal/ui"
)

// shell owns the live controllers behind the current screen. Controllers
// are created on entry and closed on exit, so late responses from an
// abandoned screen never mutate a visible one.
type shell struct {
	client  *api.Client
	session *session.Store
	router  *app.Router
	toasts  *notify.Toaster

	feed     *feed.Controller
	pending  *requests.List
	accepted *requests.Connections
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := observability.GlobalLogger

	client, err := api.New(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	store := session.NewStore(client, client)
	router := app.NewRouter(store)
	router.Handle(app.Route{Path: "/signup"})
	router.Handle(app.Route{Path: "/feed", Guarded: true})
	router.Handle(app.Route{Path: "/requests", Guarded: true})
	router.Handle(app.Route{Path: "/connections", Guarded: true})
	router.Handle(app.Route{Path: "/profile", Guarded: true})

	toasts := notify.NewToaster(cfg.ToastTTL)
	toasts.OnShow(func(t notify.Toast) {
		fmt.Printf("[%s] %s\n", t.Level, t.Message)
	})

	sh := &shell{client: client, session: store, router: router, toasts: toasts}

	// An auth failure anywhere drops the user at the login screen. The
	// redirect replaces history and repeats are no-ops.
	client.SetAuthFailureHook(func() {
		sh.closeScreens()
		if _, err := router.Navigate(app.LoginPath); err == nil {
			fmt.Println("Session expired, please log in.")
		}
	})

	ctx := context.Background()
	if client.HasToken() {
		if user, err := store.LoadSession(ctx); err == nil {
			fmt.Printf("Welcome back, %s!\n", user.FullName())
		}
	}
	sh.goTo(ctx, "/feed")

	sh.run(ctx)

	sh.closeScreens()
	toasts.Close()
	store.Dispose()
}

func (s *shell) run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", s.router.Current())
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		s.dispatch(ctx, fields)
	}
}

func (s *shell) dispatch(ctx context.Context, fields []string) {
	switch cmd := fields[0]; cmd {
	case "help":
		printHelp()
	case "login":
		s.login(ctx, fields[1:])
	case "signup":
		s.signup(ctx, fields[1:])
	case "logout":
		if err := s.session.Logout(ctx); err != nil {
			s.toasts.Error("Logout failed, please try again")
			return
		}
		s.closeScreens()
		s.goTo(ctx, app.LoginPath)
	case "feed", "requests", "connections", "profile":
		s.goTo(ctx, "/"+cmd)
	case "back":
		if path, ok := s.router.Back(); ok {
			s.showScreen(ctx, path)
		}
	case "i", "interested":
		s.swipe(ctx, true)
	case "p", "pass":
		s.swipe(ctx, false)
	case "refresh":
		s.refreshFeed(ctx)
	case "a", "accept":
		s.review(ctx, fields[1:], true)
	case "r", "reject":
		s.review(ctx, fields[1:], false)
	case "about":
		s.editAbout(ctx, strings.Join(fields[1:], " "))
	default:
		fmt.Printf("Unknown command %q, try help\n", cmd)
	}
}

func (s *shell) goTo(ctx context.Context, path string) {
	landed, err := s.router.Navigate(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	s.showScreen(ctx, landed)
}

// showScreen swaps controllers for the landed route and renders it.
func (s *shell) showScreen(ctx context.Context, path string) {
	s.closeScreens()

	switch path {
	case app.LoginPath:
		fmt.Println("Log in with: login <email> <password>  (or signup ...)")
	case "/signup":
		fmt.Println("Sign up with: signup <first> <last> <email> <password> <age> <gender>")
	case "/feed":
		s.feed = feed.New(s.client, s.toasts, observability.GlobalLogger)
		fmt.Print(ui.LoadingState())
		if err := s.feed.Load(ctx); err != nil {
			return
		}
		s.renderFeed()
	case "/requests":
		s.pending = requests.NewList(s.client, s.toasts, observability.GlobalLogger)
		fmt.Print(ui.LoadingState())
		if err := s.pending.Load(ctx); err != nil {
			return
		}
		s.renderRequests()
	case "/connections":
		s.accepted = requests.NewConnections(s.client, observability.GlobalLogger)
		fmt.Print(ui.LoadingState())
		if err := s.accepted.Load(ctx); err != nil {
			fmt.Print(ui.EmptyState("connections"))
			return
		}
		s.renderConnections()
	case "/profile":
		s.renderProfile(ctx)
	}
}

func (s *shell) closeScreens() {
	if s.feed != nil {
		s.feed.Close()
		s.feed = nil
	}
	if s.pending != nil {
		s.pending.Close()
		s.pending = nil
	}
	if s.accepted != nil {
		s.accepted.Close()
		s.accepted = nil
	}
}

func (s *shell) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: login <email> <password>")
		return
	}
	user, err := s.session.Login(ctx, args[0], args[1])
	if err != nil {
		s.toasts.Error(loginErrorMessage(err))
		return
	}
	fmt.Printf("Welcome, %s!\n", user.FullName())
	s.goTo(ctx, "/feed")
}

func (s *shell) signup(ctx context.Context, args []string) {
	if len(args) != 6 {
		fmt.Println("Usage: signup <first> <last> <email> <password> <age> <gender>")
		return
	}
	age, err := strconv.Atoi(args[4])
	if err != nil {
		fmt.Println("Age must be a number")
		return
	}
	user, err := s.session.Signup(ctx, models.SignupRequest{
		FirstName: args[0],
		LastName:  args[1],
		EmailID:   args[2],
		Password:  args[3],
		Age:       age,
		Gender:    models.Gender(args[5]),
	})
	if err != nil {
		s.toasts.Error(loginErrorMessage(err))
		return
	}
	fmt.Printf("Welcome, %s!\n", user.FullName())
	s.goTo(ctx, "/feed")
}

func (s *shell) swipe(ctx context.Context, interested bool) {
	if s.feed == nil {
		fmt.Println("Open the feed first")
		return
	}
	current, ok := s.feed.Current()
	if !ok {
		fmt.Print(ui.EmptyState("more candidates"))
		return
	}
	var err error
	if interested {
		err = s.feed.Interested(ctx, current.ID)
	} else {
		err = s.feed.NotInterested(ctx, current.ID)
	}
	if err != nil {
		return
	}
	s.renderFeed()
}

func (s *shell) refreshFeed(ctx context.Context) {
	if s.feed == nil {
		fmt.Println("Open the feed first")
		return
	}
	if err := s.feed.Reset(ctx); err != nil {
		fmt.Println("Refresh is only available once the feed is drained")
		return
	}
	s.renderFeed()
}

func (s *shell) review(ctx context.Context, args []string, accept bool) {
	if s.pending == nil {
		fmt.Println("Open requests first")
		return
	}
	if len(args) != 1 {
		fmt.Println("Usage: a|r <number>")
		return
	}
	idx, err := strconv.Atoi(args[0])
	items := s.pending.Items()
	if err != nil || idx < 1 || idx > len(items) {
		fmt.Println("No such request")
		return
	}
	id := items[idx-1].ID
	if accept {
		err = s.pending.Accept(ctx, id)
	} else {
		err = s.pending.Reject(ctx, id)
	}
	if err != nil {
		return
	}
	s.renderRequests()
}

func (s *shell) editAbout(ctx context.Context, about string) {
	if about == "" {
		fmt.Println("Usage: about <text>")
		return
	}
	if _, err := s.session.UpdateProfile(ctx, models.ProfilePatch{About: &about}); err != nil {
		s.toasts.Error("Profile update failed")
		return
	}
	s.toasts.Success("Profile updated")
}

func (s *shell) renderFeed() {
	switch s.feed.Phase() {
	case feed.PhaseReady:
		if current, ok := s.feed.Current(); ok {
			fmt.Print(ui.UserCard(current))
			fmt.Println("  [i]nterested  [p]ass")
		}
	case feed.PhaseEmpty:
		fmt.Print(ui.EmptyState("candidates"))
	case feed.PhaseExhausted:
		fmt.Println("That's everyone for now. Type refresh to look again.")
	}
}

func (s *shell) renderRequests() {
	items := s.pending.Items()
	if len(items) == 0 {
		fmt.Print(ui.EmptyState("requests"))
		return
	}
	for i, r := range items {
		fmt.Printf("%d. %s", i+1, ui.RequestCard(r))
	}
}

func (s *shell) renderConnections() {
	items := s.accepted.Items()
	if len(items) == 0 {
		fmt.Print(ui.EmptyState("connections"))
		return
	}
	for _, u := range items {
		fmt.Println(ui.ConnectionRow(u))
	}
}

func (s *shell) renderProfile(ctx context.Context) {
	user := s.session.CurrentUser()
	if user == nil {
		loaded, err := s.session.LoadSession(ctx)
		if err != nil {
			return
		}
		user = loaded
	}
	fmt.Print(ui.UserCard(*user))
	fmt.Printf("Profile completion: %d%%\n", ui.ProfileCompletion(user))
}

// loginErrorMessage maps adapter errors onto the message shown above the
// login form.
func loginErrorMessage(err error) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return "Something went wrong, please try again"
}

func printHelp() {
	fmt.Println(`Commands:
  login <email> <password>
  signup <first> <last> <email> <password> <age> <gender>
  feed | requests | connections | profile    switch screens
  i / p                                      interested / pass on the current candidate
  refresh                                    re-fetch a drained feed
  a <n> / r <n>                              accept / reject request n
  about <text>                               update your profile blurb
  logout | back | quit`)
}
