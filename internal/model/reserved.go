package model

// reservedUsernames collide with frontend routes, auth pages or system roles.
var reservedUsernames = map[string]struct{}{}

func init() {
	for _, name := range []string{
		// app routes
		"home", "settings", "profile", "account", "notifications", "messages",
		"explore", "feed", "discover", "search", "trending", "bookmarks", "saved",
		"foryou", "mentions", "replies", "media", "compose", "post", "posts",
		// auth
		"auth", "login", "logar", "logout", "sair", "register", "cadastro",
		"signup", "password", "forgot", "reset", "verify",
		// roles
		"user", "users", "admin", "root", "moderator", "staff", "team", "official",
		"ceo", "support", "help", "developer", "dev",
		// management
		"dashboard", "panel", "console", "manage", "management", "config", "system",
		"security", "backup", "logs", "metrics", "status", "api", "v1", "v2", "v3",
		// info pages
		"blog", "about", "contact", "terms", "privacy", "faq", "report", "abuse",
		"feedback", "service",
		// misc
		"null", "undefined", "test", "example", "bot", "spam", "banned",
	} {
		reservedUsernames[name] = struct{}{}
	}
}

func IsReservedUsername(username string) bool {
	_, ok := reservedUsernames[NormalizeUsername(username)]
	return ok
}
