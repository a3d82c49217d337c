package entity

import (
	"net/url"
	"strconv"
	"strings"
)

// ChatID identifies one conversation; all per-chat state is partitioned by it.
type ChatID string

// ChatIDFromInt converts a numeric transport chat id.
func ChatIDFromInt(id int64) ChatID {
	return ChatID(strconv.FormatInt(id, 10))
}

// Int64 returns the numeric form of the chat id, or 0 if it is not numeric.
func (c ChatID) Int64() int64 {
	id, err := strconv.ParseInt(string(c), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (c ChatID) String() string {
	return string(c)
}

// SiteConfig is the admin panel address registered for a chat
type SiteConfig struct {
	ChatID  ChatID `json:"chat_id"`
	BaseURL string `json:"base_url"`
}

// Origin returns the base URL without a trailing slash.
func (s SiteConfig) Origin() string {
	return trimSlash(s.BaseURL)
}

// APICredential is a static panel API key registered for a chat
type APICredential struct {
	ChatID ChatID `json:"chat_id"`
	Token  string `json:"-"`
}

// LoginCredentials are the username/password pair used by the session login flow
type LoginCredentials struct {
	Username string
	Password string
}

// CredentialMode selects which credential variant the workflow asks for.
type CredentialMode string

const (
	CredentialModeAPIKey  CredentialMode = "api_key"
	CredentialModeSession CredentialMode = "session"
)

func (m CredentialMode) Valid() bool {
	switch m {
	case CredentialModeAPIKey, CredentialModeSession:
		return true
	default:
		return false
	}
}

// Category is one entry of the panel's category listing
type Category struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *uint64 `json:"parent,omitempty"`
	Available bool    `json:"available"`
}

// FindCategory looks up a category by id.
func FindCategory(categories []Category, id uint64) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// ProductDraft holds the required product fields collected by the workflow
type ProductDraft struct {
	Name       string `json:"name"`
	Price      uint64 `json:"price"`
	CategoryID uint64 `json:"main_category"`
}

// ImageFile is an image ready to be uploaded to the panel
type ImageFile struct {
	Filename string
	Content  []byte
}

// JoinURL resolves ref against base. Absolute refs are returned unchanged,
// anything else is appended to base.
func JoinURL(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if r.IsAbs() {
		return ref, nil
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return trimSlash(base) + ref, nil
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}
