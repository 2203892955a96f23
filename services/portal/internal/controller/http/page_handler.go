package http

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/authclient"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/middleware"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
)

const RefreshTokenCookie = "refresh_token"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templateFuncs = template.FuncMap{
	"date":    formatDate,
	"label":   label,
	"excerpt": excerpt,
}

// LoadTemplates parses the embedded page templates for gin's HTML renderer.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// StaticFiles serves the stylesheet and other assets under /static.
func StaticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Authenticator signs visitors in against the auth service.
// authclient.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*authclient.Tokens, error)
	Register(ctx context.Context, email, password, fullName string) (*authclient.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

type PageOptions struct {
	SecureCookie bool
	RefreshTTL   time.Duration
	// ClientKey is handed to admin pages for their API calls.
	ClientKey string
}

// PageData is the root value of every template.
type PageData struct {
	Title     string
	Path      string
	Session   access.Session
	Data      interface{}
	Flash     string
	Errors    map[string]string
	Form      map[string]string
	ClientKey string
}

func (p PageData) SignedIn() bool {
	return p.Session.Authenticated()
}

func (p PageData) IsAdmin() bool {
	return p.Session.Authenticated() && p.Session.Role == access.RoleAdmin
}

func (p PageData) Approved() bool {
	return p.Session.Authenticated() && (access.IsExemptFromApproval(p.Session.Role) || p.Session.Status == access.StatusApproved)
}

type GalleryPage struct {
	Items      []content.Record
	Categories []string
	Selected   string
}

type AdminOverview struct {
	Users         *entity.UserGroups
	Registrations []*entity.Registration
	Inquiries     []*entity.ContactInquiry
	Progress      []*entity.MemberProgress
	Types         []content.Type
}

type PageHandler struct {
	content       usecase.ContentUseCase
	members       usecase.MemberUseCase
	profiles      usecase.ProfileUseCase
	registrations usecase.RegistrationUseCase
	auth          Authenticator
	options       PageOptions
	logger        *logger.Logger
}

func NewPageHandler(
	contentUseCase usecase.ContentUseCase,
	memberUseCase usecase.MemberUseCase,
	profileUseCase usecase.ProfileUseCase,
	registrationUseCase usecase.RegistrationUseCase,
	auth Authenticator,
	options PageOptions,
	logger *logger.Logger,
) *PageHandler {
	return &PageHandler{
		content:       contentUseCase,
		members:       memberUseCase,
		profiles:      profileUseCase,
		registrations: registrationUseCase,
		auth:          auth,
		options:       options,
		logger:        logger,
	}
}

func (h *PageHandler) render(c *gin.Context, status int, name, title string, page PageData) {
	page.Title = title
	page.Path = c.Request.URL.Path
	page.Session = middleware.CurrentSession(c)
	if page.Flash == "" {
		page.Flash = c.Query("flash")
	}
	c.HTML(status, name, page)
}

// fail renders the error page for anything the usecases could not serve.
func (h *PageHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrNotFound) {
		h.NotFound(c)
		return
	}
	h.logger.Error("Page %s failed: %v", c.Request.URL.Path, err)
	h.render(c, http.StatusInternalServerError, "error.html", "Something went wrong", PageData{})
}

func (h *PageHandler) list(c *gin.Context, t content.Type, name, title string) {
	records, err := h.content.List(c.Request.Context(), string(t), content.Filter{PublishedOnly: true})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, name, title, PageData{Data: records})
}

func (h *PageHandler) Home(c *gin.Context) {
	feed, err := h.content.HomeFeed(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "home.html", "Premier Open Group", PageData{Data: feed})
}

func (h *PageHandler) About(c *gin.Context) {
	groups, err := h.content.AboutGroups(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "about.html", "About Us", PageData{Data: groups})
}

func (h *PageHandler) Programs(c *gin.Context) {
	h.list(c, content.Programs, "programs.html", "Programs")
}

func (h *PageHandler) Awards(c *gin.Context) {
	h.list(c, content.Awards, "awards.html", "Awards")
}

func (h *PageHandler) News(c *gin.Context) {
	h.list(c, content.Posts, "news.html", "News")
}

func (h *PageHandler) Post(c *gin.Context) {
	post, err := h.content.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "post.html", post.String("title"), PageData{Data: post})
}

// Gallery lists published images. The category tabs are derived from every
// published item so switching category keeps all tabs visible.
func (h *PageHandler) Gallery(c *gin.Context) {
	ctx := c.Request.Context()
	all, err := h.content.List(ctx, string(content.Gallery), content.Filter{PublishedOnly: true})
	if err != nil {
		h.fail(c, err)
		return
	}

	page := GalleryPage{Items: all, Categories: categoriesOf(all)}
	if selected := strings.TrimSpace(c.Query("category")); selected != "" {
		page.Selected = selected
		page.Items, err = h.content.List(ctx, string(content.Gallery), content.Filter{PublishedOnly: true, Category: selected})
		if err != nil {
			h.fail(c, err)
			return
		}
	}
	h.render(c, http.StatusOK, "gallery.html", "Gallery", PageData{Data: page})
}

func (h *PageHandler) Contact(c *gin.Context) {
	page := PageData{}
	if c.Query("sent") == "1" {
		page.Flash = "Thank you, we will get back to you soon."
	}
	h.render(c, http.StatusOK, "contact.html", "Contact Us", page)
}

func (h *PageHandler) SubmitContact(c *gin.Context) {
	inquiry := entity.ContactInquiry{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Phone:   c.PostForm("phone"),
		Message: c.PostForm("message"),
	}
	if err := h.registrations.SubmitInquiry(c.Request.Context(), &inquiry); err != nil {
		h.formError(c, err, "contact.html", "Contact Us")
		return
	}
	c.Redirect(http.StatusSeeOther, "/contact?sent=1")
}

func (h *PageHandler) Register(c *gin.Context) {
	page := PageData{Data: registrationOptions}
	if c.Query("sent") == "1" {
		page.Flash = "Your registration has been received."
	}
	h.render(c, http.StatusOK, "register.html", "Register", page)
}

func (h *PageHandler) SubmitRegistration(c *gin.Context) {
	registration := entity.Registration{
		RegistrationNumber:   c.PostForm("registration_number"),
		Section:              c.PostForm("section"),
		Name:                 c.PostForm("name"),
		FatherName:           c.PostForm("father_name"),
		MotherName:           c.PostForm("mother_name"),
		DateOfBirth:          c.PostForm("date_of_birth"),
		BloodGroup:           c.PostForm("blood_group"),
		MobileNo:             c.PostForm("mobile_no"),
		Email:                c.PostForm("email"),
		CommunicationAddress: c.PostForm("communication_address"),
		PermanentAddress:     c.PostForm("permanent_address"),
		AlternateContact:     c.PostForm("alternate_contact"),
		SchoolCollege:        c.PostForm("school_college"),
	}
	if c.PostForm("same_address") == "on" {
		registration.PermanentAddress = registration.CommunicationAddress
	}
	if err := h.registrations.Submit(c.Request.Context(), &registration); err != nil {
		h.formError(c, err, "register.html", "Register")
		return
	}
	c.Redirect(http.StatusSeeOther, "/register?sent=1")
}

// formError re-renders a form with the submitted values and per-field messages.
func (h *PageHandler) formError(c *gin.Context, err error, name, title string) {
	var verr *usecase.ValidationError
	if !errors.As(err, &verr) {
		h.fail(c, err)
		return
	}
	page := PageData{Errors: verr.Fields, Form: postedForm(c), Flash: "Please correct the highlighted fields."}
	if name == "register.html" {
		page.Data = registrationOptions
	}
	h.render(c, http.StatusBadRequest, name, title, page)
}

func (h *PageHandler) Login(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess.Authenticated() {
		// A rejected session lands back here, so it sees the form instead.
		if target := landingFor(sess); !strings.HasPrefix(target, access.PathLogin) {
			c.Redirect(http.StatusFound, target)
			return
		}
	}
	h.render(c, http.StatusOK, "login.html", "Sign In", PageData{Form: map[string]string{"mode": c.DefaultQuery("mode", "signin")}})
}

// SubmitLogin signs in, or signs up when mode=signup, and lands the visitor
// where the access gate would send them next.
func (h *PageHandler) SubmitLogin(c *gin.Context) {
	ctx := c.Request.Context()
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	mode := c.DefaultPostForm("mode", "signin")
	form := map[string]string{"email": email, "mode": mode, "full_name": c.PostForm("full_name")}

	if email == "" || password == "" {
		h.render(c, http.StatusBadRequest, "login.html", "Sign In", PageData{Form: form, Flash: "Email and password are required."})
		return
	}

	var (
		tokens *authclient.Tokens
		err    error
	)
	if mode == "signup" {
		tokens, err = h.auth.Register(ctx, email, password, strings.TrimSpace(c.PostForm("full_name")))
	} else {
		tokens, err = h.auth.Login(ctx, email, password)
	}
	if err != nil {
		status, message := loginFailure(err)
		if status == http.StatusBadGateway {
			h.logger.Error("Sign in for %s failed: %v", email, err)
		}
		h.render(c, status, "login.html", "Sign In", PageData{Form: form, Flash: message})
		return
	}

	h.setTokenCookies(c, tokens)
	c.Redirect(http.StatusSeeOther, landingFor(sessionFromTokens(tokens)))
}

func (h *PageHandler) Logout(c *gin.Context) {
	if refresh, err := c.Cookie(RefreshTokenCookie); err == nil && refresh != "" {
		if err := h.auth.Logout(c.Request.Context(), refresh); err != nil {
			h.logger.Warn("Failed to revoke refresh token: %v", err)
		}
	}
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.options.SecureCookie, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", h.options.SecureCookie, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) PendingApproval(c *gin.Context) {
	h.render(c, http.StatusOK, "pending.html", "Awaiting Approval", PageData{})
}

func (h *PageHandler) Member(c *gin.Context) {
	dashboard, err := h.members.Dashboard(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "member.html", "Member Home", PageData{Data: dashboard})
}

func (h *PageHandler) Admin(c *gin.Context) {
	ctx := c.Request.Context()
	overview := AdminOverview{Types: content.Types()}

	var err error
	if overview.Users, err = h.profiles.ListUsers(ctx); err != nil {
		h.fail(c, err)
		return
	}
	if overview.Registrations, err = h.registrations.List(ctx); err != nil {
		h.fail(c, err)
		return
	}
	if overview.Inquiries, err = h.registrations.ListInquiries(ctx); err != nil {
		h.fail(c, err)
		return
	}
	if overview.Progress, err = h.members.ListProgress(ctx); err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "admin.html", "Administration", PageData{Data: overview, ClientKey: h.options.ClientKey})
}

func (h *PageHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "not_found.html", "Page Not Found", PageData{})
}

func (h *PageHandler) setTokenCookies(c *gin.Context, tokens *authclient.Tokens) {
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken, int(tokens.ExpiresIn), "/", "", h.options.SecureCookie, true)
	if tokens.RefreshToken != "" {
		c.SetCookie(RefreshTokenCookie, tokens.RefreshToken, int(h.options.RefreshTTL.Seconds()), "/", "", h.options.SecureCookie, true)
	}
}

func sessionFromTokens(tokens *authclient.Tokens) access.Session {
	sess := access.Session{
		Identity: tokens.User.Identity(),
		Role:     access.RoleMember,
		Status:   access.StatusPending,
	}
	if tokens.Profile != nil {
		sess.Role = access.ParseRole(string(tokens.Profile.Role))
		sess.Status = access.ParseStatus(string(tokens.Profile.Status))
	}
	return sess
}

// landingFor is the member home when the gate lets the session in, and the
// gate's redirect otherwise. Rejected accounts are told so on the login page.
func landingFor(sess access.Session) string {
	decision := access.Decide(sess, access.Authenticated)
	if decision.Allowed() {
		return access.PathMemberHome
	}
	if decision.Target == access.PathLogin {
		return access.PathLogin + "?flash=" + url.QueryEscape("Your membership was not approved.")
	}
	return decision.Target
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, authclient.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, authclient.ErrConflict):
		return http.StatusConflict, "An account with this email already exists."
	}
	var apiErr *authclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		return http.StatusBadRequest, apiErr.Message
	}
	return http.StatusBadGateway, "Sign in is unavailable right now. Please try again later."
}

func postedForm(c *gin.Context) map[string]string {
	out := map[string]string{}
	if err := c.Request.ParseForm(); err != nil {
		return out
	}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func categoriesOf(records []content.Record) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		category := strings.TrimSpace(r.String("category"))
		if category == "" || seen[strings.ToLower(category)] {
			continue
		}
		seen[strings.ToLower(category)] = true
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

type RegistrationOptions struct {
	Sections    []string
	BloodGroups []string
}

var registrationOptions = RegistrationOptions{
	Sections:    []string{"bunny", "cub", "bulbul", "scout", "guide", "rover", "ranger", "unit-leader"},
	BloodGroups: []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
}

// formatDate accepts both stored times and the RFC 3339 strings cached
// records carry.
func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.Format("January 2, 2006")
		}
		return t
	}
	return ""
}

// label turns identifiers like founding_members into "Founding Members".
func label(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || unicode.IsSpace(r) })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func excerpt(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
