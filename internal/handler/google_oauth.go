package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"

	"automarket/config"
	"automarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo?id_token="
	oauthStateCookie   = "oauth_state"
)

type GoogleOAuthHandler struct {
	cfg     *config.Config
	authSvc *service.AuthService
}

func NewGoogleOAuthHandler(cfg *config.Config, authSvc *service.AuthService) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{cfg: cfg, authSvc: authSvc}
}

func (h *GoogleOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.OAuth.GoogleClientID,
		ClientSecret: h.cfg.OAuth.GoogleClientSecret,
		RedirectURL:  h.cfg.OAuth.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *GoogleOAuthHandler) configured(c *gin.Context) bool {
	if h.cfg.OAuth.GoogleClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth not configured"})
		return false
	}
	return true
}

// Redirect sends the user to the Google consent screen. The state is echoed
// back through a short-lived cookie and checked in Callback.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.cfg.Server.Env == "production", true)
	c.Redirect(http.StatusFound, h.OAuth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline))
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Callback exchanges the code, fetches the Google profile and signs the user in.
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		log.Printf("[oauth] google exchange failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "exchange failed"})
		return
	}
	resp, err := conf.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" || info.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid user info"})
		return
	}
	h.signIn(c, info.ID, info.Email, info.Name, info.Picture)
}

type tokeninfoResponse struct {
	Sub     string `json:"sub"` // Google ID
	Aud     string `json:"aud"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Token accepts an ID token obtained by a mobile client and returns our JWT pair.
func (h *GoogleOAuthHandler) Token(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token required"})
		return
	}
	resp, err := http.Get(googleTokenInfoURL + url.QueryEscape(req.IDToken))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "token verification failed"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id_token", "detail": string(body)})
		return
	}
	var info tokeninfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid token response"})
		return
	}
	if info.Sub == "" || info.Email == "" || info.Aud != h.cfg.OAuth.GoogleClientID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token payload"})
		return
	}
	h.signIn(c, info.Sub, info.Email, info.Name, info.Picture)
}

func (h *GoogleOAuthHandler) signIn(c *gin.Context, googleID, email, name, picture string) {
	u, tokens, isNew, err := h.authSvc.LoginWithGoogle(googleID, email, name, picture)
	if err != nil {
		respondError(c, "oauth", err)
		return
	}
	if isNew {
		log.Printf("[oauth] created user_id=%d from google account", u.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"is_new":        isNew,
	})
}
