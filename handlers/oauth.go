package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/LinkMeOrg/LinkMe-api/auth"
	"github.com/LinkMeOrg/LinkMe-api/config"
	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth_state"

// OAuthHandler runs the authorization-code flow for Google and Facebook
// and hands a JWT back to the frontend via redirect.
type OAuthHandler struct {
	Google      *oauth2.Config
	Facebook    *oauth2.Config
	FrontendURL string
	Log         *logrus.Logger
}

func NewOAuthHandler(cfg *config.Config, log *logrus.Logger) *OAuthHandler {
	return &OAuthHandler{
		Google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		Facebook: &oauth2.Config{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/facebook/callback",
			Scopes:       []string{"email"},
			Endpoint:     facebook.Endpoint,
		},
		FrontendURL: cfg.FrontendURL,
		Log:         log,
	}
}

func (h *OAuthHandler) GoogleAuth(c *gin.Context) {
	h.redirectToProvider(c, h.Google)
}

func (h *OAuthHandler) FacebookAuth(c *gin.Context) {
	h.redirectToProvider(c, h.Facebook)
}

func (h *OAuthHandler) redirectToProvider(c *gin.Context, conf *oauth2.Config) {
	state, err := randomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start OAuth flow"})
		return
	}
	c.SetCookie(oauthStateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, conf.AuthCodeURL(state))
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	body, ok := h.exchange(c, h.Google, "https://www.googleapis.com/oauth2/v2/userinfo")
	if !ok {
		return
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil || info.ID == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return
	}

	user, err := findOrCreateOAuthUser("google_id", info.ID, info.Name, info.Email)
	if err != nil {
		h.Log.WithError(err).Error("Google OAuth user lookup failed")
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return
	}

	h.redirectWithToken(c, user)
}

type facebookUserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *OAuthHandler) FacebookCallback(c *gin.Context) {
	body, ok := h.exchange(c, h.Facebook, "https://graph.facebook.com/me?fields=id,name,email")
	if !ok {
		return
	}

	var info facebookUserInfo
	if err := json.Unmarshal(body, &info); err != nil || info.ID == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return
	}

	email := info.Email
	if email == "" {
		// Facebook may withhold the email; fall back to a stable synthetic one.
		email = fmt.Sprintf("%s@facebook.com", info.ID)
	}

	user, err := findOrCreateOAuthUser("facebook_id", info.ID, info.Name, email)
	if err != nil {
		h.Log.WithError(err).Error("Facebook OAuth user lookup failed")
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return
	}

	h.redirectWithToken(c, user)
}

// exchange validates the state cookie, swaps the code for a token and
// fetches the provider's userinfo document.
func (h *OAuthHandler) exchange(c *gin.Context, conf *oauth2.Config, userInfoURL string) ([]byte, bool) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return nil, false
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return nil, false
	}

	token, err := conf.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Log.WithError(err).Warn("OAuth code exchange failed")
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return nil, false
	}

	resp, err := conf.Client(c.Request.Context(), token).Get(userInfoURL)
	if err != nil {
		h.Log.WithError(err).Warn("OAuth userinfo fetch failed")
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return nil, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return nil, false
	}
	return body, true
}

func findOrCreateOAuthUser(providerColumn, providerID, name, email string) (*models.User, error) {
	var user models.User
	err := database.DB.Where(providerColumn+" = ?", providerID).First(&user).Error
	if err == nil {
		return &user, nil
	}

	user = models.User{
		Name:            name,
		Email:           email,
		Role:            "user",
		IsEmailVerified: true,
	}
	switch providerColumn {
	case "google_id":
		user.GoogleID = &providerID
	case "facebook_id":
		user.FacebookID = &providerID
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (h *OAuthHandler) redirectWithToken(c *gin.Context, user *models.User) {
	token, err := auth.GenerateToken(user)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/login")
		return
	}

	payload, _ := json.Marshal(gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})

	c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf(
		"%s/oauth-success?token=%s&user=%s",
		h.FrontendURL, url.QueryEscape(token), url.QueryEscape(string(payload)),
	))
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
