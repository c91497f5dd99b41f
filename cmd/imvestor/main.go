package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/imvestor-client/api"
	"github.com/jrsteele09/imvestor-client/apiclient"
	"github.com/jrsteele09/imvestor-client/forms"
	"github.com/jrsteele09/imvestor-client/internal/config"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/internal/telemetry"
	"github.com/jrsteele09/imvestor-client/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// app is shared by every subcommand. The session lives as long as the process.
type app struct {
	service *api.Service
	out     io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":               {"Sign in and print the session", loginCmd},
	"signup-entrepreneur": {"Register an entrepreneur account", signupEntrepreneurCmd},
	"signup-investor":     {"Register an investor account", signupInvestorCmd},
	"profile":             {"Show the signed-in user's profile", profileCmd},
	"update-profile":      {"Edit the signed-in user's profile", updateProfileCmd},
	"upload-banner":       {"Upload a profile banner image", uploadBannerCmd},
	"skills":              {"List entrepreneur skills", skillsCmd},
	"areas":               {"List investment areas", areasCmd},
	"countries":           {"List countries", countriesCmd},
	"states":              {"List the states of a country", statesCmd},
	"referrals":           {"Show your referral code and who used it", referralsCmd},
	"create-company":      {"Create a company, optionally attaching a file", createCompanyCmd},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	setupLogging(cfg.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.GetAppName(), cfg.GetOtelEndpoint())
	if err != nil {
		log.Warn().Err(err).Msg("Tracing disabled")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	client := apiclient.New(cfg, session.NewInMemoryStore(),
		apiclient.WithSessionExpiredHandler(func(loginURL string) {
			fmt.Fprintf(os.Stderr, "Your session has expired. Sign in again (%s).\n", loginURL)
		}),
	)
	a := &app{service: api.New(client), out: os.Stdout}

	if err := cmd.run(ctx, a, os.Args[2:]); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	displayAppname("Imvestor")
	fmt.Fprintln(os.Stderr, "Usage: imvestor <command> [flags]")
	fmt.Fprintln(os.Stderr)

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-20s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Authenticated commands read IMVESTOR_EMAIL and IMVESTOR_PASSWORD unless -email/-password are given.")
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

// report turns an error into the message a user should see
func report(w io.Writer, err error) {
	var fe forms.FieldErrors
	var partial *api.PartialError
	switch {
	case errors.As(err, &fe):
		fmt.Fprintln(w, "Please fix the following fields:")
		fields := make([]string, 0, len(fe))
		for field := range fe {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(w, "  %s: %s\n", field, fe[field])
		}
	case errors.As(err, &partial):
		fmt.Fprintf(w, "Company %q was created but its file could not be uploaded.\n", partial.Project.Name)
	case errors.Is(err, errors.ErrSessionExpired):
		// The session-expired hook has already told the user to sign in
	case errors.Is(err, errors.ErrTransport):
		fmt.Fprintln(w, "Could not reach Imvestor. Check your connection and try again.")
	case errors.Is(err, errors.ErrInvalidCredentials):
		fmt.Fprintln(w, "Invalid email or password.")
	default:
		fmt.Fprintln(w, "Error:", err)
	}
	log.Debug().Err(err).Msg("Command failed")
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
