package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/vv-events/dashboard/internal/domain/model"
)

// passwordEnv lets scripts pass the password without a flag.
const passwordEnv = "VV_ADMIN_PASSWORD"

type clientOptions struct {
	Server    string
	TokenFile string
}

func (cmdCtx *commandContext) clientFlags(fs *flag.FlagSet, opts *clientOptions) {
	fs.StringVar(&opts.Server, "server", cmdCtx.Config.HTTP.BaseURL, "Dashboard base URL")
	fs.StringVar(&opts.TokenFile, "token-file", defaultTokenFile(), "Where the session token is stored")
}

func (cmdCtx *commandContext) newClient(opts clientOptions) (*dashboardClient, error) {
	return newDashboardClient(opts.Server, cmdCtx.Config.Session.CookieName)
}

// signedInClient returns a client carrying the stored token.
func (cmdCtx *commandContext) signedInClient(opts clientOptions) (*dashboardClient, error) {
	token, err := loadToken(opts.TokenFile)
	if err != nil {
		return nil, err
	}
	c, err := cmdCtx.newClient(opts)
	if err != nil {
		return nil, err
	}
	c.setToken(token)
	return c, nil
}

type loginOptions struct {
	clientOptions
	Email    string
	Password string
}

func (cmdCtx *commandContext) parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	cmdCtx.clientFlags(fs, &opts.clientOptions)
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", "", "Account password (or "+passwordEnv+", or read from stdin)")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return loginOptions{}, errors.New("--email is required")
	}
	if opts.Password == "" {
		opts.Password = os.Getenv(passwordEnv)
	}
	return opts, nil
}

func (cmdCtx *commandContext) readPassword() (string, error) {
	if err := write(cmdCtx.Out, "Password: "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type loginResponse struct {
	RedirectTo string      `json:"redirect_to"`
	Welcome    string      `json:"welcome"`
	User       *model.User `json:"user"`
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := cmdCtx.parseLoginFlags(args)
	if err != nil {
		return err
	}
	if opts.Password == "" {
		if opts.Password, err = cmdCtx.readPassword(); err != nil {
			return err
		}
	}
	c, err := cmdCtx.newClient(opts.clientOptions)
	if err != nil {
		return err
	}

	var res loginResponse
	if err := c.do(cmdCtx.Ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    opts.Email,
		"password": opts.Password,
	}, &res); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	token := c.token()
	if token == "" {
		return errors.New("login: the dashboard did not set a session cookie")
	}
	if err := saveToken(opts.TokenFile, token); err != nil {
		return err
	}
	return writeln(cmdCtx.Out, res.Welcome)
}

func runLogout(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts clientOptions
	cmdCtx.clientFlags(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := cmdCtx.signedInClient(opts)
	if errors.Is(err, errNotSignedIn) {
		return writeln(cmdCtx.Out, "Already signed out.")
	}
	if err != nil {
		return err
	}
	if err := c.do(cmdCtx.Ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := removeToken(opts.TokenFile); err != nil {
		return err
	}
	return writeln(cmdCtx.Out, "Signed out.")
}

type statusResponse struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	Degraded        bool        `json:"degraded"`
	Reason          string      `json:"reason"`
	User            *model.User `json:"user"`
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts clientOptions
	cmdCtx.clientFlags(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := cmdCtx.signedInClient(opts)
	if err != nil {
		return err
	}
	var st statusResponse
	if err := c.do(cmdCtx.Ctx, http.MethodGet, "/auth/status", nil, &st); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if !st.IsAuthenticated || st.User == nil {
		// The dashboard rejected the token for good; drop it.
		if c.token() == "" {
			if rmErr := removeToken(opts.TokenFile); rmErr != nil {
				cmdCtx.Logger.Warn("remove stale token failed", "error", rmErr)
			}
		}
		return fmt.Errorf("not signed in (%s)", st.Reason)
	}

	u := st.User
	if err := writef(cmdCtx.Out, "%s <%s>\nrole: %s\n", u.DisplayName(), u.Email, strings.ToLower(u.Role)); err != nil {
		return err
	}
	if st.Degraded {
		return writeln(cmdCtx.Out, "warning: platform unreachable, identity served from cache")
	}
	return nil
}

var errTicketRejected = errors.New("ticket rejected")

func runVerifyTicket(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("verify-ticket", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts clientOptions
	cmdCtx.clientFlags(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: dashboard-admin verify-ticket [flags] VV-{event}-{order}-{ticket}")
	}

	c, err := cmdCtx.signedInClient(opts)
	if err != nil {
		return err
	}
	var res model.TicketVerificationResult
	if err := c.do(cmdCtx.Ctx, http.MethodPost, "/api/tickets/verify", map[string]string{"key": fs.Arg(0)}, &res); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return printVerification(cmdCtx, res)
}

func printVerification(cmdCtx *commandContext, res model.TicketVerificationResult) error {
	if !res.IsValid {
		if err := writef(cmdCtx.Out, "INVALID: %s\n", res.Error); err != nil {
			return err
		}
		return errTicketRejected
	}
	if err := writeln(cmdCtx.Out, "VALID"); err != nil {
		return err
	}
	if res.Event != nil {
		if err := writef(cmdCtx.Out, "event:  #%d %s %s\n", res.Event.ID, res.Event.Name, res.Event.Date); err != nil {
			return err
		}
	}
	if res.Order != nil {
		if err := writef(cmdCtx.Out, "order:  #%d %s\n", res.Order.ID, res.Order.Status); err != nil {
			return err
		}
	}
	if res.Ticket != nil {
		if err := writef(cmdCtx.Out, "ticket: #%d\n", res.Ticket.ID); err != nil {
			return err
		}
	}
	if res.User != nil {
		if err := writef(cmdCtx.Out, "holder: %s <%s>\n", res.User.DisplayName, res.User.Email); err != nil {
			return err
		}
	}
	return nil
}
