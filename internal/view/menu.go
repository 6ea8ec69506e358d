package view

import "github.com/daikitazaki/foodswho/internal/model"

type MenuItem struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// Menu is the account menu shown in the page header.
type Menu struct {
	LoggedIn bool       `json:"logged_in"`
	Email    string     `json:"email,omitempty"`
	Items    []MenuItem `json:"items"`
}

// AccountMenu derives the header menu from the current session user.
func AccountMenu(u *model.User) Menu {
	if u == nil {
		return Menu{Items: []MenuItem{
			{Label: "Log in", Href: "/login"},
			{Label: "Sign up", Href: "/register"},
		}}
	}
	return Menu{LoggedIn: true, Email: u.Email, Items: []MenuItem{
		{Label: "Write a review", Href: "/create-review"},
		{Label: "Register a restaurant", Href: "/register-restaurant"},
		{Label: "Log out", Href: "/v1/auth/logout", Method: "POST"},
	}}
}
