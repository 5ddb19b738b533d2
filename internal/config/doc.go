// Package config provides configuration management for the bot.
//
// Configuration is loaded from environment variables and validated on startup.
// Everything except WIKI_API_URL has a default suitable for development.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
