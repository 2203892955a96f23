package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/authclient"
	"premier-open-group/pkg/config"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/session"

	"github.com/spf13/cobra"
)

const requestTimeout = 10 * time.Second

type options struct {
	authURL   string
	portalURL string
	clientKey string
	tokenPath string
	timeout   time.Duration
}

// env bundles what every subcommand works with.
type env struct {
	identity *identityService
	store    *session.Store
	out      io.Writer
}

func (o *options) open(out io.Writer) *env {
	log := logger.New()
	identity := newIdentityService(
		authclient.New(o.authURL, o.clientKey, o.timeout),
		tokenFile{path: o.tokenPath},
		log,
	)
	profiles := newPortalProfiles(o.portalURL, o.clientKey, o.timeout, identity.AccessToken)
	return &env{
		identity: identity,
		store:    session.NewStore(identity, profiles, log),
		out:      out,
	}
}

func newRootCmd() *cobra.Command {
	cfg, _ := config.Load()
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Premier Open Group portal client",
		Long:          "Sign in to the portal and check which pages the signed-in session may open.",
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&opts.authURL, "auth-url", cfg.AuthServiceURL, "auth service base URL (AUTH_SERVICE_URL)")
	cmd.PersistentFlags().StringVar(&opts.portalURL, "portal-url", cfg.PortalServiceURL, "portal base URL (PORTAL_SERVICE_URL)")
	cmd.PersistentFlags().StringVar(&opts.clientKey, "client-key", cfg.PortalAPIKey, "public client key (PORTAL_API_KEY)")
	cmd.PersistentFlags().StringVar(&opts.tokenPath, "token-file", defaultTokenPath(), "where the session tokens are kept")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", requestTimeout, "timeout for each backend call")

	cmd.AddCommand(
		loginCmd(opts),
		signupCmd(opts),
		logoutCmd(opts),
		whoamiCmd(opts),
		visitCmd(opts),
		routesCmd(opts),
	)
	return cmd
}

func loginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("PORTALCTL_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or PORTALCTL_PASSWORD) are required")
			}
			e := opts.open(cmd.OutOrStdout())
			return e.afterChange(cmd.Context(), func(ctx context.Context) error {
				_, err := e.identity.SignIn(ctx, email, password)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func signupCmd(opts *options) *cobra.Command {
	var email, password, fullName string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account; it stays pending until an administrator approves it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("PORTALCTL_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or PORTALCTL_PASSWORD) are required")
			}
			e := opts.open(cmd.OutOrStdout())
			return e.afterChange(cmd.Context(), func(ctx context.Context) error {
				_, err := e.identity.SignUp(ctx, email, password, fullName)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := opts.open(cmd.OutOrStdout())
			if err := e.identity.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "Signed out.")
			return nil
		},
	}
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := opts.open(cmd.OutOrStdout())
			sess, err := e.load(cmd.Context())
			if err != nil {
				return err
			}
			return e.printSession(sess)
		},
	}
}

func visitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "visit <path>",
		Short: "Show what the access gate decides for a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := opts.open(cmd.OutOrStdout())
			sess, err := e.load(cmd.Context())
			if err != nil {
				return err
			}
			requirement := access.RequirementFor(args[0])
			decision := access.Decide(sess, requirement)
			fmt.Fprintf(e.out, "%s %s\n", args[0], decision)
			return nil
		},
	}
}

func routesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List every page with its requirement and the decision for the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := opts.open(cmd.OutOrStdout())
			sess, err := e.load(cmd.Context())
			if err != nil {
				return err
			}
			for _, route := range access.Routes {
				fmt.Fprintf(e.out, "%-18s %-14s %s\n", route.Path, describe(route.Requirement), access.Decide(sess, route.Requirement))
			}
			return nil
		},
	}
}

func describe(r access.Requirement) string {
	r = r.Normalize()
	switch {
	case r.RequiresAdmin:
		return "admin"
	case r.RequiresAuth:
		return "signed-in"
	}
	return "public"
}

func (e *env) load(ctx context.Context) (access.Session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer e.store.Dispose()
	if err := e.store.Initialize(ctx); err != nil {
		return access.Session{}, err
	}
	return e.store.WaitLoaded(ctx)
}

// afterChange runs change against an initialized store and prints the
// session the store settles on once the resulting event has been applied.
func (e *env) afterChange(ctx context.Context, change func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer e.store.Dispose()
	if err := e.store.Initialize(ctx); err != nil {
		return err
	}

	settled := make(chan access.Session, 1)
	unsubscribe := e.store.Subscribe(func(s access.Session) {
		if s.Authenticated() {
			select {
			case settled <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	if err := change(ctx); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	select {
	case s := <-settled:
		return e.printSession(s)
	case <-waitCtx.Done():
		return fmt.Errorf("signed in, but the session did not resolve: %w", waitCtx.Err())
	}
}

type sessionView struct {
	SignedIn bool             `json:"signed_in"`
	Identity *access.Identity `json:"identity,omitempty"`
	Role     access.Role      `json:"role,omitempty"`
	Status   access.Status    `json:"status,omitempty"`
	Landing  string           `json:"landing,omitempty"`
}

func (e *env) printSession(s access.Session) error {
	view := sessionView{SignedIn: s.Authenticated()}
	if s.Authenticated() {
		view.Identity = s.Identity
		view.Role = s.Role
		view.Status = s.Status
		view.Landing = access.PathMemberHome
		if d := access.Decide(s, access.Authenticated); !d.Allowed() {
			view.Landing = d.Target
		}
	}
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
