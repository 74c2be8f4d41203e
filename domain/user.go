package domain

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	UserStatusActive = "active"
	RoleMember       = "member"
)

// User represents an authenticated identity owning a board.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	Theme        string    `json:"theme"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// Palette is the set of colors a theme exposes to the client.
type Palette struct {
	Mode             string `json:"mode"`
	Background       string `json:"background"`
	Color            string `json:"color"`
	ButtonBackground string `json:"button_background"`
	ButtonText       string `json:"button_text"`
}

// ThemePalette returns the palette for theme, falling back to light.
func ThemePalette(theme string) Palette {
	if theme == ThemeDark {
		return Palette{Mode: ThemeDark, Background: "#333", Color: "#fff", ButtonBackground: "#333", ButtonText: "#fff"}
	}
	return Palette{Mode: ThemeLight, Background: "#fff", Color: "#333", ButtonBackground: "#007bff", ButtonText: "#fff"}
}

func ValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}
